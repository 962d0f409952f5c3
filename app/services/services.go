package services

import (
	"errors"
	"fmt"

	"quill/app/repositories"
)

var (
	// ErrValidation marks input that failed validation or referenced unknown records.
	ErrValidation = errors.New("validation failed")
)

// Repositories bundles the data access the services need.
type Repositories struct {
	Posts      repositories.PostRepository
	Comments   repositories.CommentRepository
	Tags       repositories.TagRepository
	Categories repositories.CategoryRepository
	Authors    repositories.AuthorRepository
}

// FromStore wires services to a Badger store.
func FromStore(store *repositories.Store) Repositories {
	return Repositories{
		Posts:      store.Posts,
		Comments:   store.Comments,
		Tags:       store.Tags,
		Categories: store.Categories,
		Authors:    store.Authors,
	}
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func invalidErr(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

// pageBounds turns a 1-based page into limit and offset.
func pageBounds(page, perPage int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	return perPage, (page - 1) * perPage
}
