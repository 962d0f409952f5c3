package sqlstore

import (
	"quill/app/models"
	"quill/app/repositories"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var commentColumns = []string{"id", "post_id", "author", "content", "created_at"}

// CommentRepository implements repositories.CommentRepository on SQLite
type CommentRepository struct {
	db *sqlx.DB
}

func (r *CommentRepository) Create(comment *models.Comment) error {
	id, err := insert(r.db, sq.Insert("comments").
		Columns(commentColumns[1:]...).
		Values(comment.PostID, comment.Author, comment.Content, comment.CreatedAt))
	if err != nil {
		return translate(err, repositories.ErrNotFound)
	}
	comment.ID = id
	return nil
}

func (r *CommentRepository) GetByID(id int) (*models.Comment, error) {
	var comment models.Comment
	q := sq.Select("id", "post_id AS postid", "author", "content", "created_at AS createdat").
		From("comments").Where(sq.Eq{"id": id})
	if err := get(r.db, &comment, q); err != nil {
		return nil, err
	}
	comment.CreatedAt = comment.CreatedAt.UTC()
	return &comment, nil
}

func (r *CommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	q := sq.Select("id", "post_id AS postid", "author", "content", "created_at AS createdat").
		From("comments").Where(sq.Eq{"post_id": postID}).OrderBy("id")
	if err := list(r.db, &comments, q); err != nil {
		return nil, err
	}
	for _, c := range comments {
		c.CreatedAt = c.CreatedAt.UTC()
	}
	return comments, nil
}

// Update rewrites the comment. Changing PostID moves it to another post.
func (r *CommentRepository) Update(comment *models.Comment) error {
	res, err := exec(r.db, sq.Update("comments").SetMap(map[string]interface{}{
		"post_id": comment.PostID,
		"author":  comment.Author,
		"content": comment.Content,
	}).Where(sq.Eq{"id": comment.ID}))
	return mustAffect(res, translate(err, repositories.ErrNotFound))
}

func (r *CommentRepository) Delete(id int) error {
	return mustAffect(exec(r.db, sq.Delete("comments").Where(sq.Eq{"id": id})))
}

func (r *CommentRepository) DeleteByPost(postID int) (int, error) {
	res, err := exec(r.db, sq.Delete("comments").Where(sq.Eq{"post_id": postID}))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
