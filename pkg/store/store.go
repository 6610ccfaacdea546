// Package store reads family records from their system of record.
//
// The engines in family, kinship and treelayout work on an in-memory
// [family.Dataset]. A [Store] produces such a snapshot on demand from one of
// several backends:
//
//   - [JSONStore]: a dataset file in the format of [family.WriteDataset]
//   - [SQLiteStore]: the persons, marriages, parent_child_links and branches
//     tables of a SQLite database, through gorm
//   - [MongoStore]: the collections of the same names in a MongoDB database
//   - [MemoryStore]: a fixed dataset, for tests and embedding
//
// Stores are read-only from the engines' point of view; each Snapshot call
// reflects the backend at that moment.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/juruladenbam/bam-sub000/pkg/family"
)

// Store produces dataset snapshots.
type Store interface {
	Snapshot(ctx context.Context) (*family.Dataset, error)
	Close() error
}

// Driver names accepted by Open.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// ErrUnknownDriver is returned by Open for unsupported driver names.
var ErrUnknownDriver = errors.New("unknown store driver")

// Config selects and configures a backend.
type Config struct {
	Driver   string
	Path     string // json file or sqlite database
	URI      string // mongo connection string
	Database string // mongo database name
}

// Open returns the backend named by cfg.Driver. An empty driver means json.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverJSON:
		return NewJSONStore(cfg.Path), nil
	case DriverSQLite:
		return OpenSQLite(cfg.Path)
	case DriverMongo:
		return OpenMongo(ctx, cfg.URI, cfg.Database)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}

// MemoryStore serves a fixed dataset.
type MemoryStore struct {
	ds *family.Dataset
}

// NewMemoryStore wraps ds. Snapshots share its slices and must not be
// mutated.
func NewMemoryStore(ds *family.Dataset) *MemoryStore {
	if ds == nil {
		ds = &family.Dataset{}
	}
	return &MemoryStore{ds: ds}
}

// Snapshot returns the wrapped dataset.
func (s *MemoryStore) Snapshot(ctx context.Context) (*family.Dataset, error) {
	return s.ds, ctx.Err()
}

// Close does nothing.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
