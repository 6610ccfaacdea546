package family

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
)

// Dataset is a read snapshot of the record store.
type Dataset struct {
	Persons   []Person          `json:"persons"`
	Marriages []Marriage        `json:"marriages"`
	Links     []ParentChildLink `json:"parent_child_links"`
	Branches  []Branch          `json:"branches,omitempty"`
}

// Branch returns the branch with the given id.
func (d *Dataset) Branch(id ID) (Branch, bool) {
	for _, b := range d.Branches {
		if b.ID == id {
			return b, true
		}
	}
	return Branch{}, false
}

// ExternalBranches returns the ids of branches that group married-in spouses.
func (d *Dataset) ExternalBranches() map[ID]bool {
	out := make(map[ID]bool)
	for _, b := range d.Branches {
		if b.IsExternal() {
			out[b.ID] = true
		}
	}
	return out
}

// Canonical returns a copy with every record family sorted by id so equal
// snapshots serialize to equal bytes regardless of store ordering.
func (d *Dataset) Canonical() *Dataset {
	out := &Dataset{
		Persons:   slices.Clone(d.Persons),
		Marriages: slices.Clone(d.Marriages),
		Links:     slices.Clone(d.Links),
		Branches:  slices.Clone(d.Branches),
	}
	slices.SortStableFunc(out.Persons, func(a, b Person) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortStableFunc(out.Marriages, func(a, b Marriage) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortStableFunc(out.Links, func(a, b ParentChildLink) int { return cmp.Compare(a.ChildID, b.ChildID) })
	slices.SortStableFunc(out.Branches, func(a, b Branch) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// =============================================================================
// Dataset Serialization API
// =============================================================================

// MarshalDataset encodes the canonical form of d as JSON.
func MarshalDataset(d *Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDataset(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDataset writes the canonical form of d as indented JSON to w.
func WriteDataset(d *Dataset, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d.Canonical()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteDatasetFile writes d to a JSON file.
func WriteDatasetFile(d *Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDataset(d, f)
}

// ReadDataset decodes a JSON dataset from r. Records are not validated;
// dangling references are tolerated by every consumer.
func ReadDataset(r io.Reader) (*Dataset, error) {
	var d Dataset
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &d, nil
}

// ReadDatasetFile reads a JSON dataset file.
func ReadDatasetFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDataset(f)
}
