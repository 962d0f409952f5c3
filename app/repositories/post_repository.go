package repositories

import (
	"fmt"

	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create stores a new post, its slug index and its tag links in one transaction.
func (r *BadgerPostRepository) Create(post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := claimSlug(txn, post.Slug, 0); err != nil {
			return err
		}

		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		rec := newPostRecord(post)
		if err := setEntity(txn, entityKey(PostKeyPrefix, id), rec); err != nil {
			return err
		}
		if err := setIndex(txn, []byte(PostSlugIndex+rec.Slug), id); err != nil {
			return err
		}
		for _, tagID := range rec.TagIDs {
			if err := txn.Set(entityKey(TagPostIndex, tagID, id), []byte{}); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var rec postRecord
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(PostKeyPrefix, id), &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

// GetBySlug retrieves a post through the slug index
func (r *BadgerPostRepository) GetBySlug(slug string) (*models.Post, error) {
	var rec postRecord
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := getIndex(txn, []byte(PostSlugIndex+slug))
		if err != nil {
			return err
		}
		return getEntity(txn, entityKey(PostKeyPrefix, id), &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

// List retrieves a paginated list of posts ordered by ID
func (r *BadgerPostRepository) List(limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		// Skip offset items
		count := 0
		prefix := []byte(PostKeyPrefix + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if count < offset {
				count++
				continue
			}
			if count >= offset+limit {
				break
			}

			var rec postRecord
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal post: %w", err)
			}
			posts = append(posts, rec.toModel())
			count++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByTag walks the tag's reverse index and returns a page of its posts
func (r *BadgerPostRepository) ListByTag(tagID, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		keys := collectKeys(txn, prefixKey(TagPostIndex, tagID))
		for i, key := range keys {
			if i < offset {
				continue
			}
			if i >= offset+limit {
				break
			}
			postID, err := lastID(key)
			if err != nil {
				return fmt.Errorf("corrupt tag index key %q: %w", key, err)
			}
			var rec postRecord
			if err := getEntity(txn, entityKey(PostKeyPrefix, postID), &rec); err != nil {
				return err
			}
			posts = append(posts, rec.toModel())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Update rewrites an existing post and reconciles its slug index and tag links
func (r *BadgerPostRepository) Update(post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := entityKey(PostKeyPrefix, post.ID)

		// Verify post exists
		var old postRecord
		if err := getEntity(txn, key, &old); err != nil {
			return err
		}

		rec := newPostRecord(post)
		if rec.Slug != old.Slug {
			if err := claimSlug(txn, rec.Slug, post.ID); err != nil {
				return err
			}
			if err := txn.Delete([]byte(PostSlugIndex + old.Slug)); err != nil {
				return err
			}
			if err := setIndex(txn, []byte(PostSlugIndex+rec.Slug), post.ID); err != nil {
				return err
			}
		}

		removed, added := diffIDs(old.TagIDs, rec.TagIDs)
		for _, tagID := range removed {
			if err := txn.Delete(entityKey(TagPostIndex, tagID, post.ID)); err != nil {
				return err
			}
		}
		for _, tagID := range added {
			if err := txn.Set(entityKey(TagPostIndex, tagID, post.ID), []byte{}); err != nil {
				return err
			}
		}

		return setEntity(txn, key, rec)
	})
}

// Delete removes a post together with its comments, tag links and slug index.
// Tags, the category and the author are left untouched.
func (r *BadgerPostRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := entityKey(PostKeyPrefix, id)

		// Verify post exists
		var rec postRecord
		if err := getEntity(txn, key, &rec); err != nil {
			return err
		}

		if _, err := deleteCommentsOf(txn, id); err != nil {
			return err
		}
		for _, tagID := range rec.TagIDs {
			if err := txn.Delete(entityKey(TagPostIndex, tagID, id)); err != nil {
				return err
			}
		}
		if err := txn.Delete([]byte(PostSlugIndex + rec.Slug)); err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// claimSlug fails with ErrConflict when slug already belongs to another post.
func claimSlug(txn *badger.Txn, slug string, ownerID int) error {
	id, err := getIndex(txn, []byte(PostSlugIndex+slug))
	if err == ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	if id != ownerID {
		return fmt.Errorf("slug %q already used by post %d: %w", slug, id, ErrConflict)
	}
	return nil
}

// countPosts counts stored posts matching fn.
func countPosts(txn *badger.Txn, fn func(rec *postRecord) bool) (int, error) {
	opts := badger.DefaultIteratorOptions
	it := txn.NewIterator(opts)
	defer it.Close()

	n := 0
	prefix := []byte(PostKeyPrefix + ":")
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var rec postRecord
		if err := it.Item().Value(func(val []byte) error {
			return unmarshalEntity(val, &rec)
		}); err != nil {
			return 0, err
		}
		if fn(&rec) {
			n++
		}
	}
	return n, nil
}
