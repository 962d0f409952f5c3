package repositories

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// Store owns a Badger database and the repositories built on it.
type Store struct {
	db       *badger.DB
	mutex    sync.RWMutex
	dbPath   string
	isTestDB bool

	Posts      *BadgerPostRepository
	Comments   *BadgerCommentRepository
	Tags       *BadgerTagRepository
	Categories *BadgerCategoryRepository
	Authors    *BadgerAuthorRepository
}

// NewStore opens the Badger database at path. An empty path or "test_db"
// opens a throwaway database in a fresh temporary directory that Close removes.
// logger may be nil to silence Badger.
func NewStore(path string, logger badger.Logger) (*Store, error) {
	isTest := false
	if path == "" || path == "test_db" {
		tempPath, err := os.MkdirTemp("", "quill_test_db_")
		if err != nil {
			return nil, fmt.Errorf("error creating temp dir: %w", err)
		}
		path = tempPath
		isTest = true
	}
	opts := badger.DefaultOptions(path).
		WithLogger(logger).
		WithNumVersionsToKeep(1)
	if isTest {
		opts = opts.WithSyncWrites(false).WithNumGoroutines(1)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", path, err)
	}
	s := newStore(db)
	s.dbPath = path
	s.isTestDB = isTest
	return s, nil
}

// NewMemoryStore opens an in-memory Badger database.
func NewMemoryStore() (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return newStore(db), nil
}

func newStore(db *badger.DB) *Store {
	return &Store{
		db:         db,
		Posts:      NewBadgerPostRepository(db),
		Comments:   NewBadgerCommentRepository(db),
		Tags:       NewBadgerTagRepository(db),
		Categories: NewBadgerCategoryRepository(db),
		Authors:    NewBadgerAuthorRepository(db),
	}
}

func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	err := s.db.Close()
	if err != nil {
		return err
	}

	// Clean up test database
	if s.isTestDB {
		err = os.RemoveAll(s.dbPath)
		if err != nil {
			return fmt.Errorf("failed to cleanup test database: %w", err)
		}
	}
	return nil
}

// Clear drops every key, sequences included.
func (s *Store) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.DropAll()
}

// Backup writes a full backup to w and returns the version it covers.
func (s *Store) Backup(w io.Writer) (uint64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.db.Backup(w, 0)
}

// Load restores a backup produced by Backup.
func (s *Store) Load(r io.Reader) (err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic occurred during restore: %v", rec)
		}
	}()
	return s.db.Load(r, 4)
}
