package repositories

import (
	"fmt"

	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCategoryRepository implements CategoryRepository using BadgerDB
type BadgerCategoryRepository struct {
	db *badger.DB
}

// NewBadgerCategoryRepository creates a new BadgerCategoryRepository
func NewBadgerCategoryRepository(db *badger.DB) *BadgerCategoryRepository {
	return &BadgerCategoryRepository{db: db}
}

func (r *BadgerCategoryRepository) Create(category *models.Category) error {
	return r.db.Update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, CategorySeqKey)
		if err != nil {
			return err
		}
		category.ID = id
		if category.Slug == "" {
			category.Slug = models.Slugify(category.Name)
		}
		return setEntity(txn, entityKey(CategoryKeyPrefix, id), category)
	})
}

func (r *BadgerCategoryRepository) GetByID(id int) (*models.Category, error) {
	category := &models.Category{}
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(CategoryKeyPrefix, id), category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (r *BadgerCategoryRepository) List() ([]*models.Category, error) {
	categories := []*models.Category{}
	err := r.db.View(func(txn *badger.Txn) error {
		return eachEntity(txn, CategoryKeyPrefix, func(val []byte) error {
			category := &models.Category{}
			if err := unmarshalEntity(val, category); err != nil {
				return err
			}
			categories = append(categories, category)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Delete removes a category. Categories still referenced by posts are kept.
func (r *BadgerCategoryRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := entityKey(CategoryKeyPrefix, id)
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return ErrNotFound
		} else if err != nil {
			return err
		}

		n, err := countPosts(txn, func(rec *postRecord) bool { return rec.CategoryID == id })
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("category %d is used by %d posts: %w", id, n, ErrConflict)
		}
		return txn.Delete(key)
	})
}

// BadgerAuthorRepository implements AuthorRepository using BadgerDB
type BadgerAuthorRepository struct {
	db *badger.DB
}

// NewBadgerAuthorRepository creates a new BadgerAuthorRepository
func NewBadgerAuthorRepository(db *badger.DB) *BadgerAuthorRepository {
	return &BadgerAuthorRepository{db: db}
}

func (r *BadgerAuthorRepository) Create(author *models.Author) error {
	return r.db.Update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, AuthorSeqKey)
		if err != nil {
			return err
		}
		author.ID = id
		return setEntity(txn, entityKey(AuthorKeyPrefix, id), author)
	})
}

func (r *BadgerAuthorRepository) GetByID(id int) (*models.Author, error) {
	author := &models.Author{}
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(AuthorKeyPrefix, id), author)
	})
	if err != nil {
		return nil, err
	}
	return author, nil
}

func (r *BadgerAuthorRepository) List() ([]*models.Author, error) {
	authors := []*models.Author{}
	err := r.db.View(func(txn *badger.Txn) error {
		return eachEntity(txn, AuthorKeyPrefix, func(val []byte) error {
			author := &models.Author{}
			if err := unmarshalEntity(val, author); err != nil {
				return err
			}
			authors = append(authors, author)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return authors, nil
}

// Delete removes an author. Authors still referenced by posts are kept.
func (r *BadgerAuthorRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := entityKey(AuthorKeyPrefix, id)
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return ErrNotFound
		} else if err != nil {
			return err
		}

		n, err := countPosts(txn, func(rec *postRecord) bool { return rec.AuthorID == id })
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("author %d is used by %d posts: %w", id, n, ErrConflict)
		}
		return txn.Delete(key)
	})
}

// eachEntity calls fn with the value of every key under "<prefix>:".
func eachEntity(txn *badger.Txn, prefix string, fn func(val []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	p := []byte(prefix + ":")
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}
