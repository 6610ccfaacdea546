package pipeline

import (
	"maps"
	"slices"

	errs "github.com/juruladenbam/bam-sub000/pkg/errors"
	"github.com/juruladenbam/bam-sub000/pkg/family"
)

// Selection is the part of a dataset drawn in one branch's tree.
type Selection struct {
	Branch    family.Branch
	Persons   []family.Person
	Marriages []family.Marriage
	Links     []family.ParentChildLink
	// Ghosts are spouses who belong to another clan branch. They appear
	// next to their partner but are drawn as references.
	Ghosts []family.ID
}

// SelectBranch returns the members of branchID and everyone married to a
// member. Spouses from an external branch, or without a branch, are in-laws
// and drawn normally; spouses from another clan branch become ghosts.
// Marriages and links are restricted to the selected persons.
func SelectBranch(ds *family.Dataset, branchID family.ID) (*Selection, error) {
	branch, known := ds.Branch(branchID)
	if !known {
		branch = family.Branch{ID: branchID}
	}
	if branch.IsExternal() {
		return nil, errs.New(errs.ErrCodeInvalidInput, "branch %d groups in-laws and has no tree", branchID)
	}

	byID := make(map[family.ID]family.Person, len(ds.Persons))
	members := make(map[family.ID]bool)
	for _, p := range ds.Persons {
		byID[p.ID] = p
		if p.BranchID == branchID {
			members[p.ID] = true
		}
	}
	if len(members) == 0 && !known {
		return nil, errs.New(errs.ErrCodeBranchNotFound, "branch %d not found", branchID)
	}

	external := ds.ExternalBranches()
	selected := maps.Clone(members)
	var ghosts []family.ID
	for _, m := range ds.Marriages {
		for _, pair := range [][2]family.ID{{m.HusbandID, m.WifeID}, {m.WifeID, m.HusbandID}} {
			member, partner := pair[0], pair[1]
			if !members[member] || selected[partner] {
				continue
			}
			p, ok := byID[partner]
			if !ok {
				continue
			}
			selected[partner] = true
			if p.BranchID != family.NoID && !external[p.BranchID] {
				ghosts = append(ghosts, partner)
			}
		}
	}

	sel := &Selection{Branch: branch, Ghosts: ghosts}
	for _, p := range ds.Persons {
		if selected[p.ID] {
			sel.Persons = append(sel.Persons, p)
		}
	}
	for _, m := range ds.Marriages {
		if selected[m.HusbandID] && selected[m.WifeID] {
			sel.Marriages = append(sel.Marriages, m)
		}
	}
	for _, l := range ds.Links {
		if selected[l.ChildID] {
			sel.Links = append(sel.Links, l)
		}
	}
	slices.Sort(sel.Ghosts)
	return sel, nil
}
