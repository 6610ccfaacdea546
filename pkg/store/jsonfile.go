package store

import (
	"context"
	"os"

	errs "github.com/juruladenbam/bam-sub000/pkg/errors"
	"github.com/juruladenbam/bam-sub000/pkg/family"
)

// JSONStore reads a dataset file on every Snapshot, so edits to the file
// show up without a restart.
type JSONStore struct {
	path string
}

// NewJSONStore returns a store for the dataset file at path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the dataset file.
func (s *JSONStore) Path() string { return s.path }

// Snapshot reads and decodes the file.
func (s *JSONStore) Snapshot(ctx context.Context) (*family.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.path == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "no dataset file configured")
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "dataset file %s not found", s.path)
	}
	ds, err := family.ReadDatasetFile(s.path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "read dataset %s", s.path)
	}
	return ds, nil
}

// Close does nothing.
func (s *JSONStore) Close() error { return nil }

var _ Store = (*JSONStore)(nil)
