package repositories

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflict")
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix     = "post"
	CommentKeyPrefix  = "comment"
	TagKeyPrefix      = "tag"
	CategoryKeyPrefix = "category"
	AuthorKeyPrefix   = "author"

	// Secondary indexes
	PostSlugIndex     = "idx:post:slug:"
	TagNameIndex      = "idx:tag:name:"
	TagPostIndex      = "idx:tag:post"
	CommentOwnerIndex = "idx:comment"

	// Sequence keys for auto-incrementing IDs
	PostSeqKey     = "seq:post"
	CommentSeqKey  = "seq:comment"
	TagSeqKey      = "seq:tag"
	CategorySeqKey = "seq:category"
	AuthorSeqKey   = "seq:author"
)

// entityKey builds "<prefix>:<id>[:<id>...]" with zero-padded IDs so that
// badger's lexicographic iteration follows numeric order.
func entityKey(prefix string, ids ...int) []byte {
	var b strings.Builder
	b.WriteString(prefix)
	for _, id := range ids {
		fmt.Fprintf(&b, ":%010d", id)
	}
	return []byte(b.String())
}

// prefixKey is entityKey with a trailing separator, for prefix scans.
func prefixKey(prefix string, ids ...int) []byte {
	return append(entityKey(prefix, ids...), ':')
}

// lastID parses the trailing ID component of a key.
func lastID(key []byte) (int, error) {
	s := string(key)
	i := strings.LastIndexByte(s, ':')
	return strconv.Atoi(s[i+1:])
}

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	var id int
	item, err := txn.Get([]byte(seqKey))
	if err == badger.ErrKeyNotFound {
		id = 1
	} else if err != nil {
		return 0, err
	} else {
		err = item.Value(func(val []byte) error {
			if len(val) != 4 {
				return fmt.Errorf("corrupt sequence %s", seqKey)
			}
			id = int(binary.BigEndian.Uint32(val))
			return nil
		})
		if err != nil {
			return 0, err
		}
		id++
	}

	// Store new ID
	idBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(idBytes, uint32(id))
	if err := txn.Set([]byte(seqKey), idBytes); err != nil {
		return 0, err
	}

	return id, nil
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// getEntity loads and decodes the value at key, mapping a missing key to ErrNotFound.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

// setEntity encodes entity and stores it at key.
func setEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	data, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// getIndex reads an ID stored under an index key.
func getIndex(txn *badger.Txn, key []byte) (int, error) {
	var id int
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	err = item.Value(func(val []byte) error {
		id, err = strconv.Atoi(string(val))
		return err
	})
	return id, err
}

func setIndex(txn *badger.Txn, key []byte, id int) error {
	return txn.Set(key, []byte(strconv.Itoa(id)))
}

// collectKeys returns copies of every key under prefix.
func collectKeys(txn *badger.Txn, prefix []byte) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}

// postRecord is the stored form of a post; relationships are kept as IDs.
type postRecord struct {
	ID          int           `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Body        string        `json:"body"`
	Status      models.Status `json:"status"`
	Slug        string        `json:"slug"`
	CreatedAt   time.Time     `json:"createdAt"`
	ModifiedAt  time.Time     `json:"modifiedAt"`
	CategoryID  int           `json:"categoryId"`
	AuthorID    int           `json:"authorId,omitempty"`
	TagIDs      []int         `json:"tagIds"`
}

func newPostRecord(p *models.Post) postRecord {
	rec := postRecord{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Body:        p.Body,
		Status:      p.Status,
		Slug:        p.Slug,
		CreatedAt:   p.CreatedAt,
		ModifiedAt:  p.ModifiedAt,
		TagIDs:      p.TagIDs(),
	}
	if p.Category != nil {
		rec.CategoryID = p.Category.ID
	}
	if p.Author != nil {
		rec.AuthorID = p.Author.ID
	}
	return rec
}

// toModel returns the post with ID-only references for its relationships.
func (r postRecord) toModel() *models.Post {
	p := models.NewPost()
	p.ID = r.ID
	p.Title = r.Title
	p.Description = r.Description
	p.Body = r.Body
	p.Status = r.Status
	p.Slug = r.Slug
	p.CreatedAt = r.CreatedAt
	p.ModifiedAt = r.ModifiedAt
	if r.CategoryID != 0 {
		p.Category = &models.Category{ID: r.CategoryID}
	}
	if r.AuthorID != 0 {
		p.Author = &models.Author{ID: r.AuthorID}
	}
	for _, id := range r.TagIDs {
		p.Tags = append(p.Tags, &models.Tag{ID: id})
	}
	return p
}

// diffIDs returns the IDs only in a and the IDs only in b.
func diffIDs(a, b []int) (onlyA, onlyB []int) {
	inA := make(map[int]bool, len(a))
	for _, id := range a {
		inA[id] = true
	}
	inB := make(map[int]bool, len(b))
	for _, id := range b {
		inB[id] = true
		if !inA[id] {
			onlyB = append(onlyB, id)
		}
	}
	for _, id := range a {
		if !inB[id] {
			onlyA = append(onlyA, id)
		}
	}
	return onlyA, onlyB
}
