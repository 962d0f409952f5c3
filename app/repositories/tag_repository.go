package repositories

import (
	"fmt"
	"strings"

	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerTagRepository implements TagRepository using BadgerDB
type BadgerTagRepository struct {
	db *badger.DB
}

// NewBadgerTagRepository creates a new BadgerTagRepository
func NewBadgerTagRepository(db *badger.DB) *BadgerTagRepository {
	return &BadgerTagRepository{db: db}
}

func tagNameKey(name string) []byte {
	return []byte(TagNameIndex + strings.ToLower(strings.TrimSpace(name)))
}

// Create stores a tag; names are unique ignoring case.
func (r *BadgerTagRepository) Create(tag *models.Tag) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := getIndex(txn, tagNameKey(tag.Name)); err == nil {
			return fmt.Errorf("tag %q: %w", tag.Name, ErrConflict)
		} else if err != ErrNotFound {
			return err
		}

		id, err := getNextID(txn, TagSeqKey)
		if err != nil {
			return err
		}
		tag.ID = id
		if tag.Slug == "" {
			tag.Slug = models.Slugify(tag.Name)
		}

		if err := setEntity(txn, entityKey(TagKeyPrefix, id), tag); err != nil {
			return err
		}
		return setIndex(txn, tagNameKey(tag.Name), id)
	})
}

// GetByID retrieves a tag by ID
func (r *BadgerTagRepository) GetByID(id int) (*models.Tag, error) {
	tag := &models.Tag{}
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(TagKeyPrefix, id), tag)
	})
	if err != nil {
		return nil, err
	}
	tag.Posts = []*models.Post{}
	return tag, nil
}

// GetByName retrieves a tag by its case-insensitive name
func (r *BadgerTagRepository) GetByName(name string) (*models.Tag, error) {
	tag := &models.Tag{}
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := getIndex(txn, tagNameKey(name))
		if err != nil {
			return err
		}
		return getEntity(txn, entityKey(TagKeyPrefix, id), tag)
	})
	if err != nil {
		return nil, err
	}
	tag.Posts = []*models.Post{}
	return tag, nil
}

// List returns every tag ordered by ID
func (r *BadgerTagRepository) List() ([]*models.Tag, error) {
	tags := []*models.Tag{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(TagKeyPrefix + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			tag := &models.Tag{}
			if err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, tag)
			}); err != nil {
				return fmt.Errorf("failed to unmarshal tag: %w", err)
			}
			tag.Posts = []*models.Post{}
			tags = append(tags, tag)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// Delete removes a tag and detaches it from every post carrying it.
func (r *BadgerTagRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := entityKey(TagKeyPrefix, id)
		var tag models.Tag
		if err := getEntity(txn, key, &tag); err != nil {
			return err
		}

		for _, link := range collectKeys(txn, prefixKey(TagPostIndex, id)) {
			postID, err := lastID(link)
			if err != nil {
				return fmt.Errorf("corrupt tag index key %q: %w", link, err)
			}
			postKey := entityKey(PostKeyPrefix, postID)
			var rec postRecord
			if err := getEntity(txn, postKey, &rec); err != nil && err != ErrNotFound {
				return err
			} else if err == nil {
				kept := rec.TagIDs[:0]
				for _, tagID := range rec.TagIDs {
					if tagID != id {
						kept = append(kept, tagID)
					}
				}
				rec.TagIDs = kept
				if err := setEntity(txn, postKey, rec); err != nil {
					return err
				}
			}
			if err := txn.Delete(link); err != nil {
				return err
			}
		}

		if err := txn.Delete(tagNameKey(tag.Name)); err != nil {
			return err
		}
		return txn.Delete(key)
	})
}
