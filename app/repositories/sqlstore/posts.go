package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"quill/app/models"
	"quill/app/repositories"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var postColumns = []string{
	"id", "title", "description", "body", "status", "slug",
	"created_at", "modified_at", "category_id", "author_id",
}

type postRow struct {
	ID          int           `db:"id"`
	Title       string        `db:"title"`
	Description string        `db:"description"`
	Body        string        `db:"body"`
	Status      int           `db:"status"`
	Slug        string        `db:"slug"`
	CreatedAt   time.Time     `db:"created_at"`
	ModifiedAt  time.Time     `db:"modified_at"`
	CategoryID  int           `db:"category_id"`
	AuthorID    sql.NullInt64 `db:"author_id"`
}

type postTagRow struct {
	PostID int `db:"post_id"`
	TagID  int `db:"tag_id"`
}

func (r postRow) toModel() *models.Post {
	post := models.NewPost()
	post.ID = r.ID
	post.Title = r.Title
	post.Description = r.Description
	post.Body = r.Body
	post.Status = models.Status(r.Status)
	post.Slug = r.Slug
	post.CreatedAt = r.CreatedAt.UTC()
	post.ModifiedAt = r.ModifiedAt.UTC()
	post.Category = &models.Category{ID: r.CategoryID}
	if r.AuthorID.Valid {
		post.Author = &models.Author{ID: int(r.AuthorID.Int64)}
	}
	return post
}

func authorID(p *models.Post) sql.NullInt64 {
	if p.Author == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(p.Author.ID), Valid: true}
}

func categoryID(p *models.Post) int {
	if p.Category == nil {
		return 0
	}
	return p.Category.ID
}

// PostRepository implements repositories.PostRepository on SQLite
type PostRepository struct {
	db *sqlx.DB
}

func (r *PostRepository) Create(post *models.Post) error {
	return transaction(r.db, func(tx *sqlx.Tx) error {
		id, err := insert(tx, sq.Insert("posts").
			Columns(postColumns[1:]...).
			Values(post.Title, post.Description, post.Body, int(post.Status), post.Slug,
				post.CreatedAt, post.ModifiedAt, categoryID(post), authorID(post)))
		if err != nil {
			return translate(err, repositories.ErrNotFound)
		}
		post.ID = id
		return writeTags(tx, id, post.TagIDs())
	})
}

func (r *PostRepository) GetByID(id int) (*models.Post, error) {
	return r.getOne(sq.Eq{"id": id})
}

func (r *PostRepository) GetBySlug(slug string) (*models.Post, error) {
	return r.getOne(sq.Eq{"slug": slug})
}

func (r *PostRepository) getOne(where sq.Eq) (*models.Post, error) {
	var row postRow
	if err := get(r.db, &row, sq.Select(postColumns...).From("posts").Where(where)); err != nil {
		return nil, err
	}
	posts, err := withTags(r.db, []postRow{row})
	if err != nil {
		return nil, err
	}
	return posts[0], nil
}

// List retrieves a page of posts ordered by ID
func (r *PostRepository) List(limit, offset int) ([]*models.Post, error) {
	rows := []postRow{}
	q := sq.Select(postColumns...).From("posts").OrderBy("id").
		Limit(uint64(limit)).Offset(uint64(offset))
	if err := list(r.db, &rows, q); err != nil {
		return nil, err
	}
	return withTags(r.db, rows)
}

// ListByTag retrieves a page of the posts carrying tagID ordered by ID
func (r *PostRepository) ListByTag(tagID, limit, offset int) ([]*models.Post, error) {
	rows := []postRow{}
	cols := make([]string, len(postColumns))
	for i, c := range postColumns {
		cols[i] = "p." + c + " AS " + c
	}
	q := sq.Select(cols...).From("posts p").
		Join("post_tags pt ON pt.post_id = p.id").
		Where(sq.Eq{"pt.tag_id": tagID}).
		OrderBy("p.id").
		Limit(uint64(limit)).Offset(uint64(offset))
	if err := list(r.db, &rows, q); err != nil {
		return nil, err
	}
	return withTags(r.db, rows)
}

func (r *PostRepository) Update(post *models.Post) error {
	return transaction(r.db, func(tx *sqlx.Tx) error {
		res, err := exec(tx, sq.Update("posts").SetMap(map[string]interface{}{
			"title":       post.Title,
			"description": post.Description,
			"body":        post.Body,
			"status":      int(post.Status),
			"slug":        post.Slug,
			"modified_at": post.ModifiedAt,
			"category_id": categoryID(post),
			"author_id":   authorID(post),
		}).Where(sq.Eq{"id": post.ID}))
		if err := mustAffect(res, translate(err, repositories.ErrNotFound)); err != nil {
			return err
		}
		if _, err := exec(tx, sq.Delete("post_tags").Where(sq.Eq{"post_id": post.ID})); err != nil {
			return err
		}
		return writeTags(tx, post.ID, post.TagIDs())
	})
}

// Delete removes the post; its comments and tag links go with it.
func (r *PostRepository) Delete(id int) error {
	return mustAffect(exec(r.db, sq.Delete("posts").Where(sq.Eq{"id": id})))
}

func writeTags(tx *sqlx.Tx, postID int, tagIDs []int) error {
	if len(tagIDs) == 0 {
		return nil
	}
	q := sq.Insert("post_tags").Columns("post_id", "tag_id", "position")
	for i, tagID := range tagIDs {
		q = q.Values(postID, tagID, i)
	}
	if _, err := exec(tx, q); err != nil {
		return fmt.Errorf("failed to link tags: %w", translate(err, repositories.ErrNotFound))
	}
	return nil
}

// withTags converts rows and fills in ID-only tag references.
func withTags(q sqlx.Queryer, rows []postRow) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, len(rows))
	byID := make(map[int]*models.Post, len(rows))
	ids := make([]int, 0, len(rows))
	for _, row := range rows {
		p := row.toModel()
		posts = append(posts, p)
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}
	if len(ids) == 0 {
		return posts, nil
	}

	links := []postTagRow{}
	err := list(q, &links, sq.Select("post_id", "tag_id").From("post_tags").
		Where(sq.Eq{"post_id": ids}).
		OrderBy("post_id", "position"))
	if err != nil {
		return nil, err
	}
	for _, link := range links {
		p := byID[link.PostID]
		p.Tags = append(p.Tags, &models.Tag{ID: link.TagID})
	}
	return posts, nil
}
