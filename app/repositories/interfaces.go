package repositories

import "quill/app/models"

// PostRepository defines the interface for post data access.
//
// Posts come back with their category, author and tags as ID-only
// references; the services layer hydrates them.
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	GetBySlug(slug string) (*models.Post, error)
	List(limit, offset int) ([]*models.Post, error)
	ListByTag(tagID, limit, offset int) ([]*models.Post, error)
	Update(post *models.Post) error
	Delete(id int) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id int) (*models.Comment, error)
	ListByPost(postID int) ([]*models.Comment, error)
	Update(comment *models.Comment) error
	Delete(id int) error
	DeleteByPost(postID int) (int, error)
}

// TagRepository defines the interface for tag data access
type TagRepository interface {
	Create(tag *models.Tag) error
	GetByID(id int) (*models.Tag, error)
	GetByName(name string) (*models.Tag, error)
	List() ([]*models.Tag, error)
	Delete(id int) error
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(category *models.Category) error
	GetByID(id int) (*models.Category, error)
	List() ([]*models.Category, error)
	Delete(id int) error
}

// AuthorRepository defines the interface for author data access
type AuthorRepository interface {
	Create(author *models.Author) error
	GetByID(id int) (*models.Author, error)
	List() ([]*models.Author, error)
	Delete(id int) error
}
