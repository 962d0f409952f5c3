package services

import (
	"fmt"

	"quill/app/metrics"
	"quill/app/models"
	"quill/app/repositories"

	"github.com/rs/zerolog"
)

// TaxonomyService manages tags, categories and authors.
type TaxonomyService struct {
	tags       repositories.TagRepository
	categories repositories.CategoryRepository
	authors    repositories.AuthorRepository
	logger     zerolog.Logger
}

func NewTaxonomyService(repos Repositories) *TaxonomyService {
	return &TaxonomyService{
		tags:       repos.Tags,
		categories: repos.Categories,
		authors:    repos.Authors,
		logger:     zerolog.Nop(),
	}
}

// WithLogger sets the logger used for mutation events.
func (s *TaxonomyService) WithLogger(logger zerolog.Logger) *TaxonomyService {
	s.logger = logger.With().Str("service", "taxonomy").Logger()
	return s
}

func (s *TaxonomyService) CreateCategory(category *models.Category) (err error) {
	m := metrics.StartMutation("category", "create")
	defer func() { m.Done(err) }()

	category.ID = 0
	if category.Slug == "" {
		category.Slug = models.Slugify(category.Name)
	}
	if err := category.Validate(); err != nil {
		return invalidErr(err)
	}
	if err := s.categories.Create(category); err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	s.logger.Info().Int("category_id", category.ID).Str("name", category.Name).Msg("category created")
	return nil
}

func (s *TaxonomyService) GetCategory(id int) (*models.Category, error) {
	return s.categories.GetByID(id)
}

func (s *TaxonomyService) ListCategories() ([]*models.Category, error) {
	return s.categories.List()
}

// DeleteCategory fails with repositories.ErrConflict while posts use the category.
func (s *TaxonomyService) DeleteCategory(id int) (err error) {
	m := metrics.StartMutation("category", "delete")
	defer func() { m.Done(err) }()
	return s.categories.Delete(id)
}

func (s *TaxonomyService) CreateAuthor(author *models.Author) (err error) {
	m := metrics.StartMutation("author", "create")
	defer func() { m.Done(err) }()

	author.ID = 0
	if err := author.Validate(); err != nil {
		return invalidErr(err)
	}
	if err := s.authors.Create(author); err != nil {
		return fmt.Errorf("failed to create author: %w", err)
	}
	s.logger.Info().Int("author_id", author.ID).Msg("author created")
	return nil
}

func (s *TaxonomyService) GetAuthor(id int) (*models.Author, error) {
	return s.authors.GetByID(id)
}

func (s *TaxonomyService) ListAuthors() ([]*models.Author, error) {
	return s.authors.List()
}

// DeleteAuthor fails with repositories.ErrConflict while posts use the author.
func (s *TaxonomyService) DeleteAuthor(id int) (err error) {
	m := metrics.StartMutation("author", "delete")
	defer func() { m.Done(err) }()
	return s.authors.Delete(id)
}

// CreateTag stores a tag. Names are unique ignoring case.
func (s *TaxonomyService) CreateTag(tag *models.Tag) (err error) {
	m := metrics.StartMutation("tag", "create")
	defer func() { m.Done(err) }()

	tag.ID = 0
	if tag.Slug == "" {
		tag.Slug = models.Slugify(tag.Name)
	}
	if err := tag.Validate(); err != nil {
		return invalidErr(err)
	}
	return s.tags.Create(tag)
}

func (s *TaxonomyService) GetTag(id int) (*models.Tag, error) {
	return s.tags.GetByID(id)
}

func (s *TaxonomyService) ListTags() ([]*models.Tag, error) {
	return s.tags.List()
}

// DeleteTag removes a tag and detaches it from every post carrying it.
// The posts themselves are kept.
func (s *TaxonomyService) DeleteTag(id int) (err error) {
	m := metrics.StartMutation("tag", "delete")
	defer func() { m.Done(err) }()

	if err := s.tags.Delete(id); err != nil {
		return err
	}
	s.logger.Info().Int("tag_id", id).Msg("tag deleted")
	return nil
}
