package models

import (
	"time"
)

// NewPost returns a post with empty tag and comment collections.
func NewPost() *Post {
	return &Post{
		Tags:     []*Tag{},
		Comments: []*Comment{},
	}
}

func (p *Post) String() string {
	return p.Title
}

func (p *Post) GetID() int { return p.ID }

func (p *Post) GetTitle() string { return p.Title }

// SetTitle sets the title and re-derives the slug when the title changed.
func (p *Post) SetTitle(title string) *Post {
	if title != p.Title || p.Slug == "" {
		p.Slug = Slugify(title)
	}
	p.Title = title
	return p
}

func (p *Post) GetDescription() string { return p.Description }

func (p *Post) SetDescription(description string) *Post {
	p.Description = description
	return p
}

func (p *Post) GetBody() string { return p.Body }

func (p *Post) SetBody(body string) *Post {
	p.Body = body
	return p
}

func (p *Post) GetStatus() Status { return p.Status }

func (p *Post) SetStatus(status Status) *Post {
	p.Status = status
	return p
}

func (p *Post) GetCategory() *Category { return p.Category }

func (p *Post) SetCategory(category *Category) *Post {
	p.Category = category
	return p
}

func (p *Post) GetAuthor() *Author { return p.Author }

// SetAuthor sets the author; nil detaches it.
func (p *Post) SetAuthor(author *Author) *Post {
	p.Author = author
	return p
}

func (p *Post) GetSlug() string { return p.Slug }

func (p *Post) SetSlug(slug string) *Post {
	p.Slug = slug
	return p
}

func (p *Post) GetCreatedAt() time.Time { return p.CreatedAt }

func (p *Post) SetCreatedAt(t time.Time) *Post {
	p.CreatedAt = t
	return p
}

func (p *Post) GetModifiedAt() time.Time { return p.ModifiedAt }

func (p *Post) SetModifiedAt(t time.Time) *Post {
	p.ModifiedAt = t
	return p
}

func (p *Post) GetComments() []*Comment { return p.Comments }

func (p *Post) GetTags() []*Tag { return p.Tags }

// BeforeCreate stamps both timestamps and derives a missing slug.
func (p *Post) BeforeCreate() {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.ModifiedAt = p.CreatedAt
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
}

// BeforeUpdate refreshes the modification time.
func (p *Post) BeforeUpdate() {
	now := time.Now().UTC()
	if now.Before(p.CreatedAt) {
		now = p.CreatedAt
	}
	p.ModifiedAt = now
}

// HasTag reports whether tag is already attached.
func (p *Post) HasTag(tag *Tag) bool {
	return indexOfTag(p.Tags, tag) >= 0
}

// AddTag attaches tag and registers the post on the tag's reverse collection.
// Adding a tag that is already attached has no effect.
func (p *Post) AddTag(tag *Tag) *Post {
	if tag == nil || p.HasTag(tag) {
		return p
	}
	p.Tags = append(p.Tags, tag)
	tag.AddPost(p)
	return p
}

// RemoveTag detaches tag from both sides. Unknown tags are ignored.
func (p *Post) RemoveTag(tag *Tag) *Post {
	if tag == nil {
		return p
	}
	i := indexOfTag(p.Tags, tag)
	if i < 0 {
		return p
	}
	removed := p.Tags[i]
	p.Tags = append(p.Tags[:i], p.Tags[i+1:]...)
	removed.RemovePost(p)
	if removed != tag {
		tag.RemovePost(p)
	}
	return p
}

// HasComment reports whether comment belongs to the post's collection.
func (p *Post) HasComment(comment *Comment) bool {
	return indexOfComment(p.Comments, comment) >= 0
}

// AddComment appends comment and points its back-reference at the post.
func (p *Post) AddComment(comment *Comment) *Post {
	if comment == nil || p.HasComment(comment) {
		return p
	}
	p.Comments = append(p.Comments, comment)
	comment.SetPost(p)
	return p
}

// RemoveComment drops comment from the collection. The back-reference is
// cleared only while it still points at this post.
func (p *Post) RemoveComment(comment *Comment) *Post {
	if comment == nil {
		return p
	}
	i := indexOfComment(p.Comments, comment)
	if i < 0 {
		return p
	}
	removed := p.Comments[i]
	p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
	for _, c := range []*Comment{removed, comment} {
		if c.Post != nil && samePost(c.Post, p) {
			c.SetPost(nil)
		}
	}
	return p
}

// TagIDs returns the persisted IDs of attached tags in insertion order.
func (p *Post) TagIDs() []int {
	ids := make([]int, 0, len(p.Tags))
	for _, t := range p.Tags {
		if t != nil && t.ID != 0 {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func (p *Post) duplicateTag() *Tag {
	for i, t := range p.Tags {
		if t != nil && indexOfTag(p.Tags[:i], t) >= 0 {
			return t
		}
	}
	return nil
}

func samePost(a, b *Post) bool {
	if a == b {
		return true
	}
	return a != nil && b != nil && a.ID != 0 && a.ID == b.ID
}

func indexOfTag(tags []*Tag, tag *Tag) int {
	for i, t := range tags {
		if t == nil {
			continue
		}
		if t == tag || (t.ID != 0 && t.ID == tag.ID) {
			return i
		}
	}
	return -1
}

func indexOfComment(comments []*Comment, comment *Comment) int {
	for i, c := range comments {
		if c == nil {
			continue
		}
		if c == comment || (c.ID != 0 && c.ID == comment.ID) {
			return i
		}
	}
	return -1
}
