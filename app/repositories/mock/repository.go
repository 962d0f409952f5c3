package mock

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"quill/app/models"
	"quill/app/repositories"
)

// state is shared by every repository of a Store so that cross-entity rules
// (comments need a post, categories in use cannot go) hold like they do in Badger.
type state struct {
	mutex      sync.RWMutex
	posts      map[int]models.Post
	comments   map[int]models.Comment
	tags       map[int]models.Tag
	categories map[int]models.Category
	authors    map[int]models.Author
	nextID     map[string]int
}

func (s *state) next(kind string) int {
	s.nextID[kind]++
	return s.nextID[kind]
}

// Store holds in-memory repositories for tests.
type Store struct {
	state *state

	Posts      *PostRepository
	Comments   *CommentRepository
	Tags       *TagRepository
	Categories *CategoryRepository
	Authors    *AuthorRepository
}

type PostRepository struct{ *state }

type CommentRepository struct{ *state }

type TagRepository struct{ *state }

type CategoryRepository struct{ *state }

type AuthorRepository struct{ *state }

func NewStore() *Store {
	s := &state{}
	st := &Store{
		state:      s,
		Posts:      &PostRepository{s},
		Comments:   &CommentRepository{s},
		Tags:       &TagRepository{s},
		Categories: &CategoryRepository{s},
		Authors:    &AuthorRepository{s},
	}
	st.Clear()
	return st
}

func (m *Store) Clear() {
	m.state.mutex.Lock()
	defer m.state.mutex.Unlock()
	m.state.posts = make(map[int]models.Post)
	m.state.comments = make(map[int]models.Comment)
	m.state.tags = make(map[int]models.Tag)
	m.state.categories = make(map[int]models.Category)
	m.state.authors = make(map[int]models.Author)
	m.state.nextID = make(map[string]int)
}

// stored strips a post down to what a repository persists.
func stored(p *models.Post) models.Post {
	cp := *p
	cp.Comments = nil
	if p.Category != nil {
		cp.Category = &models.Category{ID: p.Category.ID}
	}
	if p.Author != nil {
		cp.Author = &models.Author{ID: p.Author.ID}
	}
	cp.Tags = make([]*models.Tag, 0, len(p.Tags))
	for _, id := range p.TagIDs() {
		cp.Tags = append(cp.Tags, &models.Tag{ID: id})
	}
	return cp
}

func loaded(p models.Post) *models.Post {
	tags := make([]*models.Tag, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, &models.Tag{ID: t.ID})
	}
	p.Tags = tags
	if p.Category != nil {
		p.Category = &models.Category{ID: p.Category.ID}
	}
	if p.Author != nil {
		p.Author = &models.Author{ID: p.Author.ID}
	}
	p.Comments = []*models.Comment{}
	return &p
}

func (m *PostRepository) slugTaken(slug string, selfID int) bool {
	for id, p := range m.posts {
		if id != selfID && p.Slug == slug {
			return true
		}
	}
	return false
}

func (m *PostRepository) sorted(keep func(p models.Post) bool, limit, offset int) []*models.Post {
	ids := make([]int, 0, len(m.posts))
	for id, p := range m.posts {
		if keep(p) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	posts := []*models.Post{}
	for i, id := range ids {
		if i < offset {
			continue
		}
		if limit > 0 && len(posts) >= limit {
			break
		}
		posts = append(posts, loaded(m.posts[id]))
	}
	return posts
}

// PostRepository implementation
func (m *PostRepository) Create(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.slugTaken(post.Slug, 0) {
		return fmt.Errorf("slug %q: %w", post.Slug, repositories.ErrConflict)
	}
	post.ID = m.next("post")
	m.posts[post.ID] = stored(post)
	return nil
}

func (m *PostRepository) GetByID(id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return loaded(post), nil
}

func (m *PostRepository) GetBySlug(slug string) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, post := range m.posts {
		if post.Slug == slug {
			return loaded(post), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *PostRepository) List(limit, offset int) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.sorted(func(models.Post) bool { return true }, limit, offset), nil
}

func (m *PostRepository) ListByTag(tagID, limit, offset int) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.sorted(func(p models.Post) bool {
		return p.HasTag(&models.Tag{ID: tagID})
	}, limit, offset), nil
}

func (m *PostRepository) Update(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	if m.slugTaken(post.Slug, post.ID) {
		return fmt.Errorf("slug %q: %w", post.Slug, repositories.ErrConflict)
	}
	m.posts[post.ID] = stored(post)
	return nil
}

// Delete removes the post and its comments.
func (m *PostRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	for cid, c := range m.comments {
		if c.PostID == id {
			delete(m.comments, cid)
		}
	}
	return nil
}

// CommentRepository implementation
func (m *CommentRepository) Create(comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[comment.PostID]; !exists {
		return fmt.Errorf("post %d: %w", comment.PostID, repositories.ErrNotFound)
	}
	comment.ID = m.next("comment")
	cp := *comment
	cp.Post = nil
	m.comments[comment.ID] = cp
	return nil
}

func (m *CommentRepository) GetByID(id int) (*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &comment, nil
}

func (m *CommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	ids := []int{}
	for id, c := range m.comments {
		if c.PostID == postID {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	comments := make([]*models.Comment, 0, len(ids))
	for _, id := range ids {
		c := m.comments[id]
		comments = append(comments, &c)
	}
	return comments, nil
}

func (m *CommentRepository) Update(comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.comments[comment.ID]; !exists {
		return repositories.ErrNotFound
	}
	if _, exists := m.posts[comment.PostID]; !exists {
		return fmt.Errorf("post %d: %w", comment.PostID, repositories.ErrNotFound)
	}
	cp := *comment
	cp.Post = nil
	m.comments[comment.ID] = cp
	return nil
}

func (m *CommentRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.comments[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *CommentRepository) DeleteByPost(postID int) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	n := 0
	for id, c := range m.comments {
		if c.PostID == postID {
			delete(m.comments, id)
			n++
		}
	}
	return n, nil
}

// TagRepository implementation
func (m *TagRepository) Create(tag *models.Tag) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, t := range m.tags {
		if strings.EqualFold(t.Name, tag.Name) {
			return fmt.Errorf("tag %q: %w", tag.Name, repositories.ErrConflict)
		}
	}
	tag.ID = m.next("tag")
	if tag.Slug == "" {
		tag.Slug = models.Slugify(tag.Name)
	}
	m.tags[tag.ID] = models.Tag{ID: tag.ID, Name: tag.Name, Slug: tag.Slug}
	return nil
}

func (m *TagRepository) GetByID(id int) (*models.Tag, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	tag, exists := m.tags[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	tag.Posts = []*models.Post{}
	return &tag, nil
}

func (m *TagRepository) GetByName(name string) (*models.Tag, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, tag := range m.tags {
		if strings.EqualFold(tag.Name, strings.TrimSpace(name)) {
			tag.Posts = []*models.Post{}
			return &tag, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *TagRepository) List() ([]*models.Tag, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	ids := make([]int, 0, len(m.tags))
	for id := range m.tags {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	tags := make([]*models.Tag, 0, len(ids))
	for _, id := range ids {
		t := m.tags[id]
		t.Posts = []*models.Post{}
		tags = append(tags, &t)
	}
	return tags, nil
}

// Delete removes the tag and detaches it from every post.
func (m *TagRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.tags[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.tags, id)
	for pid, p := range m.posts {
		kept := make([]*models.Tag, 0, len(p.Tags))
		for _, t := range p.Tags {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		p.Tags = kept
		m.posts[pid] = p
	}
	return nil
}

// CategoryRepository implementation
func (m *CategoryRepository) Create(category *models.Category) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	category.ID = m.next("category")
	m.categories[category.ID] = *category
	return nil
}

func (m *CategoryRepository) GetByID(id int) (*models.Category, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	category, exists := m.categories[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &category, nil
}

func (m *CategoryRepository) List() ([]*models.Category, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	ids := make([]int, 0, len(m.categories))
	for id := range m.categories {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	categories := make([]*models.Category, 0, len(ids))
	for _, id := range ids {
		c := m.categories[id]
		categories = append(categories, &c)
	}
	return categories, nil
}

// Delete refuses to remove a category that posts still use.
func (m *CategoryRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.categories[id]; !exists {
		return repositories.ErrNotFound
	}
	for _, p := range m.posts {
		if p.Category != nil && p.Category.ID == id {
			return fmt.Errorf("category %d is in use: %w", id, repositories.ErrConflict)
		}
	}
	delete(m.categories, id)
	return nil
}

// AuthorRepository implementation
func (m *AuthorRepository) Create(author *models.Author) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	author.ID = m.next("author")
	m.authors[author.ID] = *author
	return nil
}

func (m *AuthorRepository) GetByID(id int) (*models.Author, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	author, exists := m.authors[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &author, nil
}

func (m *AuthorRepository) List() ([]*models.Author, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	ids := make([]int, 0, len(m.authors))
	for id := range m.authors {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	authors := make([]*models.Author, 0, len(ids))
	for _, id := range ids {
		a := m.authors[id]
		authors = append(authors, &a)
	}
	return authors, nil
}

// Delete refuses to remove an author that posts still use.
func (m *AuthorRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.authors[id]; !exists {
		return repositories.ErrNotFound
	}
	for _, p := range m.posts {
		if p.Author != nil && p.Author.ID == id {
			return fmt.Errorf("author %d is in use: %w", id, repositories.ErrConflict)
		}
	}
	delete(m.authors, id)
	return nil
}

var (
	_ repositories.PostRepository     = (*PostRepository)(nil)
	_ repositories.CommentRepository  = (*CommentRepository)(nil)
	_ repositories.TagRepository      = (*TagRepository)(nil)
	_ repositories.CategoryRepository = (*CategoryRepository)(nil)
	_ repositories.AuthorRepository   = (*AuthorRepository)(nil)
)
