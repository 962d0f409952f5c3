package models

// NewTag returns a tag with a derived slug and an empty post collection.
func NewTag(name string) *Tag {
	return &Tag{
		Name:  name,
		Slug:  Slugify(name),
		Posts: []*Post{},
	}
}

func (t *Tag) String() string {
	return t.Name
}

// HasPost reports whether post is on the tag's reverse collection.
func (t *Tag) HasPost(post *Post) bool {
	return indexOfPost(t.Posts, post) >= 0
}

// AddPost registers post on the tag and mirrors the link on the post side.
func (t *Tag) AddPost(post *Post) *Tag {
	if post == nil || t.HasPost(post) {
		return t
	}
	t.Posts = append(t.Posts, post)
	post.AddTag(t)
	return t
}

// RemovePost unregisters post from the tag and from the post's tags.
func (t *Tag) RemovePost(post *Post) *Tag {
	if post == nil {
		return t
	}
	i := indexOfPost(t.Posts, post)
	if i < 0 {
		return t
	}
	removed := t.Posts[i]
	t.Posts = append(t.Posts[:i], t.Posts[i+1:]...)
	removed.RemoveTag(t)
	if removed != post {
		post.RemoveTag(t)
	}
	return t
}

func indexOfPost(posts []*Post, post *Post) int {
	for i, p := range posts {
		if p != nil && samePost(p, post) {
			return i
		}
	}
	return -1
}
