package rowstore

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
)

// Store is a CSV table on disk.
type Store struct {
	path        string
	lockTimeout time.Duration
	lock        *TableLock
}

// Option configures a Store.
type Option func(*Store)

// WithLockTimeout sets how long Update waits for the table lock.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.lockTimeout = d
	}
}

// New returns a Store for the CSV file at path. The file need not exist.
func New(path string, opts ...Option) *Store {
	s := &Store{path: path}

	for _, opt := range opts {
		opt(s)
	}

	s.lock = NewTableLock(path, s.lockTimeout)

	return s
}

// Path returns the table file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the whole table. A missing file is an empty table, not an error.
func (s *Store) Load() (*Table, error) {
	file, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Table{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.path, err)
	}

	defer func() { _ = file.Close() }()

	table, err := ReadTable(file)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}

	return table, nil
}

// Update loads the table, passes it to handler and writes the result back,
// all under an exclusive lock. If handler returns an error nothing is
// written and the error is returned unchanged.
func (s *Store) Update(handler func(table *Table) error) error {
	err := os.MkdirAll(filepath.Dir(s.path), dirPerms)
	if err != nil {
		return fmt.Errorf("creating table dir: %w", err)
	}

	return s.lock.Do(func() error {
		table, loadErr := s.Load()
		if loadErr != nil {
			return loadErr
		}

		handleErr := handler(table)
		if handleErr != nil {
			return handleErr
		}

		return s.save(table)
	})
}

func (s *Store) save(table *Table) error {
	var buf bytes.Buffer

	err := WriteTable(&buf, table)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.path, err)
	}

	err = atomic.WriteFile(s.path, &buf)
	if err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}

	return nil
}
