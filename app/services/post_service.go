package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"quill/app/metrics"
	"quill/app/models"
	"quill/app/repositories"

	"github.com/rs/zerolog"
)

// PostService handles business logic for blog posts
type PostService struct {
	repos  Repositories
	logger zerolog.Logger
}

// NewPostService creates a new PostService
func NewPostService(repos Repositories) *PostService {
	return &PostService{
		repos:  repos,
		logger: zerolog.Nop(),
	}
}

// WithLogger sets the logger used for mutation events.
func (s *PostService) WithLogger(logger zerolog.Logger) *PostService {
	s.logger = logger.With().Str("service", "posts").Logger()
	return s
}

// CreatePost validates and stores a new post. The category must exist, the
// author is optional, and tags unknown by name are created on the way.
func (s *PostService) CreatePost(post *models.Post) (err error) {
	m := metrics.StartMutation("post", "create")
	defer func() { m.Done(err) }()

	if post.Status == 0 {
		post.Status = models.StatusDraft
	}
	post.ID = 0
	post.BeforeCreate()

	if err := s.resolveReferences(post); err != nil {
		return err
	}
	if err := post.Validate(); err != nil {
		return invalidErr(err)
	}
	if err := s.persistNewTags(post); err != nil {
		return err
	}

	post.Slug, err = s.uniqueSlug(post.Slug, post.Title, 0)
	if err != nil {
		return err
	}

	if err := s.repos.Posts.Create(post); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	s.logger.Info().Int("post_id", post.ID).Str("slug", post.Slug).Msg("post created")
	return nil
}

// GetPost retrieves a post by ID with its category, author, tags and comments
func (s *PostService) GetPost(id int) (*models.Post, error) {
	post, err := s.repos.Posts.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(post, newLookup()); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPostBySlug retrieves a post through its slug
func (s *PostService) GetPostBySlug(slug string) (*models.Post, error) {
	post, err := s.repos.Posts.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(post, newLookup()); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts retrieves a paginated list of posts
func (s *PostService) ListPosts(page, perPage int) ([]*models.Post, error) {
	limit, offset := pageBounds(page, perPage)
	posts, err := s.repos.Posts.List(limit, offset)
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(posts)
}

// ListPostsByTag retrieves a page of posts carrying tagID
func (s *PostService) ListPostsByTag(tagID, page, perPage int) ([]*models.Post, error) {
	if _, err := s.repos.Tags.GetByID(tagID); err != nil {
		return nil, err
	}
	limit, offset := pageBounds(page, perPage)
	posts, err := s.repos.Posts.ListByTag(tagID, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(posts)
}

// UpdatePost updates an existing post with validation. The creation time is
// preserved and the slug follows the title only when the title changed.
func (s *PostService) UpdatePost(post *models.Post) (err error) {
	m := metrics.StartMutation("post", "update")
	defer func() { m.Done(err) }()

	existing, err := s.repos.Posts.GetByID(post.ID)
	if err != nil {
		return err
	}

	post.CreatedAt = existing.CreatedAt
	if post.Status == 0 {
		post.Status = existing.Status
	}
	// An explicit new slug wins; otherwise the slug follows a changed title.
	switch {
	case post.Slug != "" && post.Slug != existing.Slug:
		post.Slug, err = s.uniqueSlug(post.Slug, post.Title, post.ID)
	case post.Title != existing.Title:
		post.Slug, err = s.uniqueSlug("", post.Title, post.ID)
	default:
		post.Slug = existing.Slug
	}
	if err != nil {
		return err
	}
	post.BeforeUpdate()

	if err := s.resolveReferences(post); err != nil {
		return err
	}
	if err := post.Validate(); err != nil {
		return invalidErr(err)
	}
	if err := s.persistNewTags(post); err != nil {
		return err
	}

	if err := s.repos.Posts.Update(post); err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if existing.Status != post.Status {
		metrics.ObserveStatusChange(existing.Status.String(), post.Status.String())
	}
	s.logger.Info().Int("post_id", post.ID).Msg("post updated")
	return nil
}

// SetStatus moves a post to another status
func (s *PostService) SetStatus(id int, status models.Status) (*models.Post, error) {
	if !status.Valid() {
		return nil, invalid("unknown status %d", int(status))
	}
	post, err := s.GetPost(id)
	if err != nil {
		return nil, err
	}
	if post.Status == status {
		return post, nil
	}
	post.SetStatus(status)
	if err := s.UpdatePost(post); err != nil {
		return nil, err
	}
	return post, nil
}

// AddTag attaches a tag to a post, creating the tag when its name is new.
// Attaching a tag the post already carries changes nothing.
func (s *PostService) AddTag(postID int, tag *models.Tag) (*models.Post, error) {
	if tag == nil {
		return nil, invalid("tag is required")
	}
	post, err := s.GetPost(postID)
	if err != nil {
		return nil, err
	}
	resolved, err := s.resolveTag(tag)
	if err != nil {
		return nil, err
	}
	if post.HasTag(resolved) && resolved.ID != 0 {
		return post, nil
	}
	post.AddTag(resolved)
	if err := s.UpdatePost(post); err != nil {
		return nil, err
	}
	return post, nil
}

// RemoveTag detaches a tag from a post. Tags the post does not carry are ignored.
func (s *PostService) RemoveTag(postID, tagID int) (*models.Post, error) {
	post, err := s.GetPost(postID)
	if err != nil {
		return nil, err
	}
	ref := &models.Tag{ID: tagID}
	if !post.HasTag(ref) {
		return post, nil
	}
	for _, t := range post.Tags {
		if t.ID == tagID {
			post.RemoveTag(t)
			break
		}
	}
	if err := s.UpdatePost(post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost deletes a post and all its comments. Tags, the category and
// the author survive.
func (s *PostService) DeletePost(id int) (err error) {
	m := metrics.StartMutation("post", "delete")
	defer func() { m.Done(err) }()

	if _, err := s.repos.Posts.GetByID(id); err != nil {
		return err
	}
	removed, err := s.repos.Comments.DeleteByPost(id)
	if err != nil {
		return fmt.Errorf("failed to remove comments: %w", err)
	}
	metrics.CascadedComments.Add(float64(removed))

	if err := s.repos.Posts.Delete(id); err != nil {
		return err
	}
	s.logger.Info().Int("post_id", id).Int("comments_removed", removed).Msg("post deleted")
	return nil
}

// resolveReferences replaces the category, author and tag references on post
// with stored records. New tags (no ID, unknown name) are kept unsaved.
func (s *PostService) resolveReferences(post *models.Post) error {
	if post.Category == nil || (post.Category.ID == 0 && post.Category.Name == "") {
		return invalid("category is required")
	}
	category, err := s.repos.Categories.GetByID(post.Category.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		return invalid("unknown category %d", post.Category.ID)
	}
	if err != nil {
		return err
	}
	post.Category = category

	if post.Author != nil {
		author, err := s.repos.Authors.GetByID(post.Author.ID)
		if errors.Is(err, repositories.ErrNotFound) {
			return invalid("unknown author %d", post.Author.ID)
		}
		if err != nil {
			return err
		}
		post.Author = author
	}

	refs := post.Tags
	post.Tags = []*models.Tag{}
	staged := map[string]*models.Tag{}
	for _, ref := range refs {
		tag, err := s.resolveTag(ref)
		if err != nil {
			return err
		}
		if tag.ID == 0 {
			key := strings.ToLower(tag.Name)
			if prev, ok := staged[key]; ok {
				tag = prev
			}
			staged[key] = tag
		}
		post.AddTag(tag)
	}
	return nil
}

// resolveTag loads a tag by ID or by name. A name nobody uses yet yields an
// unsaved tag.
func (s *PostService) resolveTag(ref *models.Tag) (*models.Tag, error) {
	if ref.ID != 0 {
		tag, err := s.repos.Tags.GetByID(ref.ID)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, invalid("unknown tag %d", ref.ID)
		}
		return tag, err
	}
	if ref.Name == "" {
		return nil, invalid("tag needs an id or a name")
	}
	tag, err := s.repos.Tags.GetByName(ref.Name)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.NewTag(ref.Name), nil
	}
	return tag, err
}

// persistNewTags stores tags that were attached by name only.
func (s *PostService) persistNewTags(post *models.Post) error {
	for _, tag := range post.Tags {
		if tag.ID != 0 {
			continue
		}
		if err := tag.Validate(); err != nil {
			return invalidErr(err)
		}
		m := metrics.StartMutation("tag", "create")
		err := s.repos.Tags.Create(tag)
		m.Done(err)
		if err != nil {
			return fmt.Errorf("failed to create tag %q: %w", tag.Name, err)
		}
		s.logger.Debug().Int("tag_id", tag.ID).Str("tag", tag.Name).Msg("tag created with post")
	}
	return nil
}

// uniqueSlug derives a slug from wanted (or the title) and appends -2, -3, ...
// until no other post owns it.
func (s *PostService) uniqueSlug(wanted, title string, selfID int) (string, error) {
	base := models.Slugify(wanted)
	if base == "" {
		base = models.Slugify(title)
	}
	if base == "" {
		base = "post"
	}
	candidate := base
	for n := 2; ; n++ {
		owner, err := s.repos.Posts.GetBySlug(candidate)
		if errors.Is(err, repositories.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		if owner.ID == selfID {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}

// lookup caches related records while hydrating several posts.
type lookup struct {
	categories map[int]*models.Category
	authors    map[int]*models.Author
	tags       map[int]*models.Tag
}

func newLookup() *lookup {
	return &lookup{
		categories: map[int]*models.Category{},
		authors:    map[int]*models.Author{},
		tags:       map[int]*models.Tag{},
	}
}

func (s *PostService) hydrateAll(posts []*models.Post) ([]*models.Post, error) {
	l := newLookup()
	for _, post := range posts {
		if err := s.hydrate(post, l); err != nil {
			return nil, fmt.Errorf("failed to load post %d: %w", post.ID, err)
		}
	}
	return posts, nil
}

// hydrate swaps ID-only references for full records and wires both sides of
// the tag and comment relationships.
func (s *PostService) hydrate(post *models.Post, l *lookup) error {
	if post.Category != nil {
		category, ok := l.categories[post.Category.ID]
		if !ok {
			var err error
			category, err = s.repos.Categories.GetByID(post.Category.ID)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return err
			}
			l.categories[post.Category.ID] = category
		}
		if category != nil {
			post.Category = category
		}
	}

	if post.Author != nil {
		author, ok := l.authors[post.Author.ID]
		if !ok {
			var err error
			author, err = s.repos.Authors.GetByID(post.Author.ID)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return err
			}
			l.authors[post.Author.ID] = author
		}
		if author != nil {
			post.Author = author
		}
	}

	refs := post.Tags
	post.Tags = []*models.Tag{}
	for _, ref := range refs {
		tag, ok := l.tags[ref.ID]
		if !ok {
			var err error
			tag, err = s.repos.Tags.GetByID(ref.ID)
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			l.tags[ref.ID] = tag
		}
		post.AddTag(tag)
	}

	comments, err := s.repos.Comments.ListByPost(post.ID)
	if err != nil {
		return fmt.Errorf("failed to get comments: %w", err)
	}
	post.Comments = []*models.Comment{}
	for _, c := range comments {
		post.AddComment(c)
	}
	return nil
}
