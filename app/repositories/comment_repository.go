package repositories

import (
	"fmt"

	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB.
// Comments are keyed by post so that a post's comments share a prefix.
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

// Create creates a new comment
func (r *BadgerCommentRepository) Create(comment *models.Comment) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(entityKey(PostKeyPrefix, comment.PostID)); err == badger.ErrKeyNotFound {
			return fmt.Errorf("post %d: %w", comment.PostID, ErrNotFound)
		} else if err != nil {
			return err
		}

		// Get next ID
		id, err := getNextID(txn, CommentSeqKey)
		if err != nil {
			return err
		}
		comment.ID = id

		// Save comment with post ID in key for efficient listing
		if err := setEntity(txn, entityKey(CommentKeyPrefix, comment.PostID, id), comment); err != nil {
			return err
		}
		return setIndex(txn, entityKey(CommentOwnerIndex, id), comment.PostID)
	})
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(id int) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		key, err := commentKey(txn, id)
		if err != nil {
			return err
		}
		return getEntity(txn, key, &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost retrieves all comments for a post
func (r *BadgerCommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := prefixKey(CommentKeyPrefix, postID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var comment models.Comment
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &comment)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal comment: %w", err)
			}
			comments = append(comments, &comment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Update updates an existing comment. A changed PostID moves the comment
// under its new owner.
func (r *BadgerCommentRepository) Update(comment *models.Comment) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key, err := commentKey(txn, comment.ID)
		if err != nil {
			return err
		}

		newKey := entityKey(CommentKeyPrefix, comment.PostID, comment.ID)
		if string(newKey) != string(key) {
			if _, err := txn.Get(entityKey(PostKeyPrefix, comment.PostID)); err == badger.ErrKeyNotFound {
				return fmt.Errorf("post %d: %w", comment.PostID, ErrNotFound)
			} else if err != nil {
				return err
			}
			if err := txn.Delete(key); err != nil {
				return err
			}
			if err := setIndex(txn, entityKey(CommentOwnerIndex, comment.ID), comment.PostID); err != nil {
				return err
			}
		}
		return setEntity(txn, newKey, comment)
	})
}

// Delete deletes a comment by ID
func (r *BadgerCommentRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key, err := commentKey(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(entityKey(CommentOwnerIndex, id))
	})
}

// DeleteByPost removes every comment owned by postID and reports how many went.
func (r *BadgerCommentRepository) DeleteByPost(postID int) (int, error) {
	var n int
	err := r.db.Update(func(txn *badger.Txn) error {
		var err error
		n, err = deleteCommentsOf(txn, postID)
		return err
	})
	return n, err
}

// commentKey resolves a comment ID to its storage key through the owner index.
func commentKey(txn *badger.Txn, id int) ([]byte, error) {
	postID, err := getIndex(txn, entityKey(CommentOwnerIndex, id))
	if err != nil {
		return nil, err
	}
	return entityKey(CommentKeyPrefix, postID, id), nil
}

func deleteCommentsOf(txn *badger.Txn, postID int) (int, error) {
	keys := collectKeys(txn, prefixKey(CommentKeyPrefix, postID))
	for _, key := range keys {
		id, err := lastID(key)
		if err != nil {
			return 0, fmt.Errorf("corrupt comment key %q: %w", key, err)
		}
		if err := txn.Delete(key); err != nil {
			return 0, err
		}
		if err := txn.Delete(entityKey(CommentOwnerIndex, id)); err != nil {
			return 0, err
		}
	}
	return len(keys), nil
}
