package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	errs "github.com/juruladenbam/bam-sub000/pkg/errors"
	"github.com/juruladenbam/bam-sub000/pkg/family"
)

// =============================================================================
// Table Models
// =============================================================================

type personRow struct {
	ID         int64  `gorm:"primaryKey"`
	FullName   string `gorm:"not null"`
	Nickname   string
	Gender     string `gorm:"size:6;not null"`
	BirthDate  *time.Time
	DeathDate  *time.Time
	IsAlive    bool   `gorm:"not null"`
	BranchID   *int64 `gorm:"index"`
	Generation int    `gorm:"not null"`
	BirthOrder *int
}

func (personRow) TableName() string { return "persons" }

type marriageRow struct {
	ID         int64 `gorm:"primaryKey"`
	HusbandID  int64 `gorm:"index;not null"`
	WifeID     int64 `gorm:"index;not null"`
	IsActive   bool  `gorm:"not null"`
	IsInternal bool  `gorm:"not null"`
}

func (marriageRow) TableName() string { return "marriages" }

type linkRow struct {
	ID         int64 `gorm:"primaryKey"`
	ChildID    int64 `gorm:"uniqueIndex;not null"`
	MarriageID *int64
	FatherID   *int64
	MotherID   *int64
	BirthOrder *int
}

func (linkRow) TableName() string { return "parent_child_links" }

type branchRow struct {
	ID    int64  `gorm:"primaryKey"`
	Name  string `gorm:"not null"`
	Order int    `gorm:"column:order;not null"`
}

func (branchRow) TableName() string { return "branches" }

// =============================================================================
// Store
// =============================================================================

// SQLiteStore reads records from a SQLite database.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens the database at dsn and migrates the record tables.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "no sqlite database configured")
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStoreUnavailable, err, "open sqlite %s", dsn)
	}
	if err := db.AutoMigrate(&personRow{}, &marriageRow{}, &linkRow{}, &branchRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Snapshot loads all four tables ordered by id.
func (s *SQLiteStore) Snapshot(ctx context.Context) (*family.Dataset, error) {
	db := s.db.WithContext(ctx)
	var (
		persons   []personRow
		marriages []marriageRow
		links     []linkRow
		branches  []branchRow
	)
	for _, q := range []struct {
		table string
		dest  any
	}{
		{"persons", &persons},
		{"marriages", &marriages},
		{"parent_child_links", &links},
		{"branches", &branches},
	} {
		if err := db.Order("id").Find(q.dest).Error; err != nil {
			return nil, errs.Wrap(errs.ErrCodeStoreUnavailable, err, "load %s", q.table)
		}
	}

	ds := &family.Dataset{
		Persons:   make([]family.Person, len(persons)),
		Marriages: make([]family.Marriage, len(marriages)),
		Links:     make([]family.ParentChildLink, len(links)),
		Branches:  make([]family.Branch, len(branches)),
	}
	for i, r := range persons {
		ds.Persons[i] = family.Person{
			ID:         family.ID(r.ID),
			FullName:   r.FullName,
			Nickname:   r.Nickname,
			Gender:     family.Gender(r.Gender),
			BirthDate:  toDate(r.BirthDate),
			DeathDate:  toDate(r.DeathDate),
			IsAlive:    r.IsAlive,
			BranchID:   derefID(r.BranchID),
			Generation: r.Generation,
			BirthOrder: r.BirthOrder,
		}
	}
	for i, r := range marriages {
		ds.Marriages[i] = family.Marriage{
			ID:         family.ID(r.ID),
			HusbandID:  family.ID(r.HusbandID),
			WifeID:     family.ID(r.WifeID),
			IsActive:   r.IsActive,
			IsInternal: r.IsInternal,
		}
	}
	for i, r := range links {
		ds.Links[i] = family.ParentChildLink{
			ChildID:    family.ID(r.ChildID),
			MarriageID: toID(r.MarriageID),
			FatherID:   toID(r.FatherID),
			MotherID:   toID(r.MotherID),
			BirthOrder: r.BirthOrder,
		}
	}
	for i, r := range branches {
		ds.Branches[i] = family.Branch{ID: family.ID(r.ID), Name: r.Name, Order: r.Order}
	}
	return ds, nil
}

// Save replaces the contents of the record tables with ds in one
// transaction. Links get sequential ids.
func (s *SQLiteStore) Save(ctx context.Context, ds *family.Dataset) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&personRow{}, &marriageRow{}, &linkRow{}, &branchRow{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		for _, p := range ds.Persons {
			row := personRow{
				ID:         int64(p.ID),
				FullName:   p.FullName,
				Nickname:   p.Nickname,
				Gender:     string(p.Gender),
				BirthDate:  fromDate(p.BirthDate),
				DeathDate:  fromDate(p.DeathDate),
				IsAlive:    p.IsAlive,
				Generation: p.Generation,
				BirthOrder: p.BirthOrder,
			}
			if p.BranchID != family.NoID {
				row.BranchID = fromID(&p.BranchID)
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("insert person %d: %w", p.ID, err)
			}
		}
		for _, m := range ds.Marriages {
			row := marriageRow{
				ID:         int64(m.ID),
				HusbandID:  int64(m.HusbandID),
				WifeID:     int64(m.WifeID),
				IsActive:   m.IsActive,
				IsInternal: m.IsInternal,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("insert marriage %d: %w", m.ID, err)
			}
		}
		for i, l := range ds.Links {
			row := linkRow{
				ID:         int64(i + 1),
				ChildID:    int64(l.ChildID),
				MarriageID: fromID(l.MarriageID),
				FatherID:   fromID(l.FatherID),
				MotherID:   fromID(l.MotherID),
				BirthOrder: l.BirthOrder,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("insert link for child %d: %w", l.ChildID, err)
			}
		}
		for _, b := range ds.Branches {
			row := branchRow{ID: int64(b.ID), Name: b.Name, Order: b.Order}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("insert branch %d: %w", b.ID, err)
			}
		}
		return nil
	})
}

// Close closes the underlying connection pool.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ Store = (*SQLiteStore)(nil)

// =============================================================================
// Conversions
// =============================================================================

func toDate(t *time.Time) *family.Date {
	if t == nil || t.IsZero() {
		return nil
	}
	return family.Ptr(family.NewDate(t.UTC().Date()))
}

func fromDate(d *family.Date) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	return family.Ptr(d.Time)
}

func toID(v *int64) *family.ID {
	if v == nil || *v == 0 {
		return nil
	}
	return family.Ptr(family.ID(*v))
}

func fromID(id *family.ID) *int64 {
	if id == nil || *id == family.NoID {
		return nil
	}
	return family.Ptr(int64(*id))
}

func derefID(v *int64) family.ID {
	if v == nil {
		return family.NoID
	}
	return family.ID(*v)
}
