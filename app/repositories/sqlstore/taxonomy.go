package sqlstore

import (
	"strings"

	"quill/app/models"
	"quill/app/repositories"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// TagRepository implements repositories.TagRepository on SQLite
type TagRepository struct {
	db *sqlx.DB
}

// Create stores a tag; names are unique ignoring case.
func (r *TagRepository) Create(tag *models.Tag) error {
	if tag.Slug == "" {
		tag.Slug = models.Slugify(tag.Name)
	}
	id, err := insert(r.db, sq.Insert("tags").Columns("name", "slug").Values(tag.Name, tag.Slug))
	if err != nil {
		return translate(err, repositories.ErrNotFound)
	}
	tag.ID = id
	return nil
}

func (r *TagRepository) GetByID(id int) (*models.Tag, error) {
	return r.getOne(sq.Eq{"id": id})
}

func (r *TagRepository) GetByName(name string) (*models.Tag, error) {
	return r.getOne(sq.Eq{"name": strings.TrimSpace(name)})
}

func (r *TagRepository) getOne(where sq.Sqlizer) (*models.Tag, error) {
	tag := models.Tag{Posts: []*models.Post{}}
	if err := get(r.db, &tag, sq.Select("id", "name", "slug").From("tags").Where(where)); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *TagRepository) List() ([]*models.Tag, error) {
	tags := []*models.Tag{}
	if err := list(r.db, &tags, sq.Select("id", "name", "slug").From("tags").OrderBy("id")); err != nil {
		return nil, err
	}
	for _, t := range tags {
		t.Posts = []*models.Post{}
	}
	return tags, nil
}

// Delete removes the tag; post links are dropped by the cascade.
func (r *TagRepository) Delete(id int) error {
	return mustAffect(exec(r.db, sq.Delete("tags").Where(sq.Eq{"id": id})))
}

// CategoryRepository implements repositories.CategoryRepository on SQLite
type CategoryRepository struct {
	db *sqlx.DB
}

func (r *CategoryRepository) Create(category *models.Category) error {
	if category.Slug == "" {
		category.Slug = models.Slugify(category.Name)
	}
	id, err := insert(r.db, sq.Insert("categories").Columns("name", "slug").Values(category.Name, category.Slug))
	if err != nil {
		return err
	}
	category.ID = id
	return nil
}

func (r *CategoryRepository) GetByID(id int) (*models.Category, error) {
	var category models.Category
	if err := get(r.db, &category, sq.Select("id", "name", "slug").From("categories").Where(sq.Eq{"id": id})); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) List() ([]*models.Category, error) {
	categories := []*models.Category{}
	err := list(r.db, &categories, sq.Select("id", "name", "slug").From("categories").OrderBy("id"))
	return categories, err
}

// Delete refuses to remove a category that posts still use.
func (r *CategoryRepository) Delete(id int) error {
	res, err := exec(r.db, sq.Delete("categories").Where(sq.Eq{"id": id}))
	return mustAffect(res, translate(err, repositories.ErrConflict))
}

// AuthorRepository implements repositories.AuthorRepository on SQLite
type AuthorRepository struct {
	db *sqlx.DB
}

func (r *AuthorRepository) Create(author *models.Author) error {
	id, err := insert(r.db, sq.Insert("authors").Columns("name", "email").Values(author.Name, author.Email))
	if err != nil {
		return err
	}
	author.ID = id
	return nil
}

func (r *AuthorRepository) GetByID(id int) (*models.Author, error) {
	var author models.Author
	if err := get(r.db, &author, sq.Select("id", "name", "email").From("authors").Where(sq.Eq{"id": id})); err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *AuthorRepository) List() ([]*models.Author, error) {
	authors := []*models.Author{}
	err := list(r.db, &authors, sq.Select("id", "name", "email").From("authors").OrderBy("id"))
	return authors, err
}

// Delete refuses to remove an author that posts still use.
func (r *AuthorRepository) Delete(id int) error {
	res, err := exec(r.db, sq.Delete("authors").Where(sq.Eq{"id": id}))
	return mustAffect(res, translate(err, repositories.ErrConflict))
}

var (
	_ repositories.PostRepository     = (*PostRepository)(nil)
	_ repositories.CommentRepository  = (*CommentRepository)(nil)
	_ repositories.TagRepository      = (*TagRepository)(nil)
	_ repositories.CategoryRepository = (*CategoryRepository)(nil)
	_ repositories.AuthorRepository   = (*AuthorRepository)(nil)
)
