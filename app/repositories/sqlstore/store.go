// Package sqlstore implements the repositories on SQLite through sqlx,
// with queries built by squirrel.
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"quill/app/repositories"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

const driverName = "sqlite3"

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	slug TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS authors (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	name  TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS tags (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE COLLATE NOCASE,
	slug TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS posts (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	description TEXT NOT NULL,
	body        TEXT NOT NULL,
	status      INTEGER NOT NULL CHECK (status BETWEEN 1 AND 5),
	slug        TEXT NOT NULL UNIQUE,
	created_at  DATETIME NOT NULL,
	modified_at DATETIME NOT NULL,
	category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
	author_id   INTEGER REFERENCES authors(id) ON DELETE RESTRICT
);
CREATE TABLE IF NOT EXISTS post_tags (
	post_id  INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	tag_id   INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	PRIMARY KEY (post_id, tag_id)
);
CREATE INDEX IF NOT EXISTS idx_post_tags_tag ON post_tags(tag_id, post_id);
CREATE TABLE IF NOT EXISTS comments (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id    INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	author     TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id, id);
`

// Store owns a SQLite database and the repositories built on it.
type Store struct {
	db *sqlx.DB

	Posts      *PostRepository
	Comments   *CommentRepository
	Tags       *TagRepository
	Categories *CategoryRepository
	Authors    *AuthorRepository
}

// Open connects to dsn, enables foreign keys and applies the schema.
func Open(dsn string) (*Store, error) {
	if !strings.Contains(dsn, "_foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_foreign_keys=on"
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if strings.Contains(dsn, ":memory:") {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:         db,
		Posts:      &PostRepository{db: db},
		Comments:   &CommentRepository{db: db},
		Tags:       &TagRepository{db: db},
		Categories: &CategoryRepository{db: db},
		Authors:    &AuthorRepository{db: db},
	}, nil
}

// Migrate creates missing tables and indexes.
func Migrate(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Clear deletes every row.
func (s *Store) Clear() error {
	return transaction(s.db, func(tx *sqlx.Tx) error {
		for _, table := range []string{"comments", "post_tags", "posts", "tags", "categories", "authors"} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return err
			}
		}
		_, err := tx.Exec("DELETE FROM sqlite_sequence")
		return err
	})
}

// transaction runs fn inside a transaction and rolls back on error or panic.
func transaction(db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func get(q sqlx.Queryer, dest interface{}, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	err = sqlx.Get(q, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return repositories.ErrNotFound
	}
	return err
}

func list(q sqlx.Queryer, dest interface{}, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	return sqlx.Select(q, dest, query, args...)
}

func exec(e sqlx.Execer, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return e.Exec(query, args...)
}

// insert runs b and returns the new row ID.
func insert(e sqlx.Execer, b sq.InsertBuilder) (int, error) {
	res, err := exec(e, b)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return int(id), err
}

// mustAffect turns a statement that touched no rows into ErrNotFound.
func mustAffect(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func isConstraint(err error, code sqlite3.ErrNoExtended) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == code
}

// translate maps SQLite constraint failures onto repository errors. A
// foreign key failure means a missing parent on insert and a live
// reference on delete, so callers pass the sentinel that fits.
func translate(err error, foreignKey error) error {
	switch {
	case err == nil:
		return nil
	case isConstraint(err, sqlite3.ErrConstraintUnique), isConstraint(err, sqlite3.ErrConstraintPrimaryKey):
		return fmt.Errorf("%v: %w", err, repositories.ErrConflict)
	case isConstraint(err, sqlite3.ErrConstraintForeignKey):
		return fmt.Errorf("%v: %w", err, foreignKey)
	default:
		return err
	}
}
