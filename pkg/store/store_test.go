package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	errs "github.com/juruladenbam/bam-sub000/pkg/errors"
	"github.com/juruladenbam/bam-sub000/pkg/family"
)

func sampleDataset() *family.Dataset {
	born := family.Ptr(family.NewDate(1950, time.March, 4))
	return &family.Dataset{
		Persons: []family.Person{
			{ID: 1, FullName: "Harjo", Gender: family.Male, BranchID: 1, IsAlive: false, DeathDate: family.Ptr(family.NewDate(1990, time.May, 1))},
			{ID: 2, FullName: "Sumi", Gender: family.Female, BranchID: 99, IsAlive: true},
			{ID: 3, FullName: "Budi Santoso", Nickname: "Budi", Gender: family.Male, BranchID: 1, Generation: 1, IsAlive: true, BirthDate: born, BirthOrder: family.Ptr(1)},
		},
		Marriages: []family.Marriage{
			{ID: 10, HusbandID: 1, WifeID: 2, IsActive: false},
		},
		Links: []family.ParentChildLink{
			{ChildID: 3, MarriageID: family.Ptr(family.ID(10)), FatherID: family.Ptr(family.ID(1)), MotherID: family.Ptr(family.ID(2))},
		},
		Branches: []family.Branch{
			{ID: 1, Name: "Bani Harjo", Order: 1},
			{ID: 99, Name: "Menantu", Order: 99},
		},
	}
}

func TestMemoryStore(t *testing.T) {
	ds := sampleDataset()
	s := NewMemoryStore(ds)
	got, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	require.Same(t, ds, got)
	require.NoError(t, s.Close())

	empty, err := NewMemoryStore(nil).Snapshot(context.Background())
	require.NoError(t, err)
	require.Empty(t, empty.Persons)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Snapshot(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestJSONStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "family.json")
	require.NoError(t, family.WriteDatasetFile(sampleDataset(), path))

	s := NewJSONStore(path)
	require.Equal(t, path, s.Path())
	ds, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Persons, 3)
	require.Equal(t, "Budi", ds.Persons[2].Nickname)
	require.False(t, ds.Marriages[0].IsActive)

	// Edits show up on the next snapshot.
	edited := sampleDataset()
	edited.Persons = edited.Persons[:2]
	require.NoError(t, family.WriteDatasetFile(edited, path))
	ds, err = s.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Persons, 2)
}

func TestJSONStoreErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewJSONStore("").Snapshot(ctx)
	require.True(t, errs.Is(err, errs.ErrCodeInvalidInput), "got %v", err)

	_, err = NewJSONStore(filepath.Join(t.TempDir(), "missing.json")).Snapshot(ctx)
	require.True(t, errs.Is(err, errs.ErrCodeFileNotFound), "got %v", err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err = NewJSONStore(bad).Snapshot(ctx)
	require.True(t, errs.Is(err, errs.ErrCodeInvalidFormat), "got %v", err)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "silsilah.db"))
	require.NoError(t, err)
	defer s.Close()

	empty, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Empty(t, empty.Persons)

	want := sampleDataset()
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, want.Persons, got.Persons)
	require.Equal(t, want.Marriages, got.Marriages)
	require.Equal(t, want.Links, got.Links)
	require.Equal(t, want.Branches, got.Branches)

	// Save replaces previous contents.
	smaller := sampleDataset()
	smaller.Persons = smaller.Persons[:1]
	smaller.Links = nil
	require.NoError(t, s.Save(ctx, smaller))
	got, err = s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, got.Persons, 1)
	require.Empty(t, got.Links)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Path: "family.json"})
	require.NoError(t, err)
	require.IsType(t, &JSONStore{}, s)

	s, err = Open(ctx, Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	require.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Config{Driver: "postgres"})
	require.ErrorIs(t, err, ErrUnknownDriver)

	_, err = Open(ctx, Config{Driver: DriverSQLite})
	require.True(t, errs.Is(err, errs.ErrCodeInvalidInput))

	_, err = Open(ctx, Config{Driver: DriverMongo})
	require.True(t, errs.Is(err, errs.ErrCodeInvalidInput))
}

func TestDatasetFromDocs(t *testing.T) {
	birth := time.Date(1950, time.March, 4, 7, 30, 0, 0, time.FixedZone("WIB", 7*3600))
	ds := datasetFromDocs(
		[]personDoc{
			{ID: 1, FullName: "Harjo", Gender: "male", BranchID: 1},
			{ID: 3, FullName: "Budi", Gender: "male", BirthDate: &birth, IsAlive: true, Generation: 1},
		},
		[]marriageDoc{
			{ID: 10, HusbandID: 1, WifeID: 2},
			{ID: 11, HusbandID: 1, WifeID: 4, IsActive: family.Ptr(false)},
		},
		[]linkDoc{{ChildID: 3, MarriageID: family.Ptr(int64(10)), FatherID: family.Ptr(int64(0))}},
		[]branchDoc{{ID: 1, Name: "Bani Harjo", Order: 1}},
	)

	require.Len(t, ds.Persons, 2)
	require.Equal(t, family.ID(1), ds.Persons[0].BranchID)
	require.Nil(t, ds.Persons[0].BirthDate)
	require.Equal(t, "1950-03-04", ds.Persons[1].BirthDate.String())

	require.True(t, ds.Marriages[0].IsActive, "missing is_active defaults to active")
	require.False(t, ds.Marriages[1].IsActive)

	require.Equal(t, family.ID(10), *ds.Links[0].MarriageID)
	require.Nil(t, ds.Links[0].FatherID, "zero ids are treated as absent")
	require.Equal(t, "Bani Harjo", ds.Branches[0].Name)
}
