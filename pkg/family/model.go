package family

import (
	"cmp"
	"slices"

	"github.com/facette/natsort"
)

// Lookup is the read capability the kinship resolver needs. Implementations
// return false for ids they do not know; they never fail.
type Lookup interface {
	Person(id ID) (Person, bool)
	Marriage(id ID) (Marriage, bool)
	BirthLink(childID ID) (ParentChildLink, bool)
}

// Options controls how a Model is indexed.
type Options struct {
	// IncludeDivorced keeps inactive marriages between two living partners in
	// the spouse adjacency. They are excluded by default.
	IncludeDivorced bool
}

// Spouse is one entry of a person's spouse adjacency.
type Spouse struct {
	PersonID   ID
	MarriageID ID
}

// Model holds the derived indices over one snapshot of records.
//
// The zero value is not usable; use NewModel or FromDataset.
type Model struct {
	persons   map[ID]Person
	marriages map[ID]Marriage
	links     map[ID]ParentChildLink

	childrenByParent map[ID][]ID
	spouses          map[ID][]Spouse
	parentsByChild   map[ID]Parents

	personOrder   []ID
	marriageOrder []ID
}

// FromDataset indexes the records of ds.
func FromDataset(ds *Dataset, opts Options) *Model {
	if ds == nil {
		return NewModel(nil, nil, nil, opts)
	}
	return NewModel(ds.Persons, ds.Marriages, ds.Links, opts)
}

// NewModel indexes persons, marriages and parent-child links. Duplicate ids
// keep their first occurrence. References to unknown records are dropped.
func NewModel(persons []Person, marriages []Marriage, links []ParentChildLink, opts Options) *Model {
	m := &Model{
		persons:          make(map[ID]Person, len(persons)),
		marriages:        make(map[ID]Marriage, len(marriages)),
		links:            make(map[ID]ParentChildLink, len(links)),
		childrenByParent: make(map[ID][]ID),
		spouses:          make(map[ID][]Spouse),
		parentsByChild:   make(map[ID]Parents, len(links)),
	}

	for _, p := range persons {
		if _, dup := m.persons[p.ID]; dup || p.ID == NoID {
			continue
		}
		m.persons[p.ID] = p
		m.personOrder = append(m.personOrder, p.ID)
	}

	for _, mr := range marriages {
		if _, dup := m.marriages[mr.ID]; dup {
			continue
		}
		m.marriages[mr.ID] = mr
		m.marriageOrder = append(m.marriageOrder, mr.ID)
		if !m.coupled(mr, opts) {
			continue
		}
		m.spouses[mr.HusbandID] = append(m.spouses[mr.HusbandID], Spouse{PersonID: mr.WifeID, MarriageID: mr.ID})
		m.spouses[mr.WifeID] = append(m.spouses[mr.WifeID], Spouse{PersonID: mr.HusbandID, MarriageID: mr.ID})
	}

	for _, l := range links {
		if _, dup := m.links[l.ChildID]; dup {
			continue
		}
		if _, ok := m.persons[l.ChildID]; !ok {
			continue
		}
		m.links[l.ChildID] = l
	}

	// Parents resolve after every link is known so lookups through the
	// marriage see the full record set.
	resolved := make(map[ID]bool, len(m.links))
	for _, l := range links {
		if _, ok := m.links[l.ChildID]; !ok || resolved[l.ChildID] {
			continue
		}
		resolved[l.ChildID] = true
		parents := ResolveParents(m, l.ChildID)
		if len(parents.Known()) == 0 {
			continue
		}
		m.parentsByChild[l.ChildID] = parents
		for _, pid := range parents.Known() {
			m.childrenByParent[pid] = append(m.childrenByParent[pid], l.ChildID)
		}
	}

	return m
}

// coupled reports whether a marriage contributes to the spouse adjacency.
func (m *Model) coupled(mr Marriage, opts Options) bool {
	h, hok := m.persons[mr.HusbandID]
	w, wok := m.persons[mr.WifeID]
	if !hok || !wok || mr.HusbandID == mr.WifeID {
		return false
	}
	if IsDivorce(mr, h, w) && !opts.IncludeDivorced {
		return false
	}
	return true
}

// IsDivorce reports whether an inactive marriage ended while both partners
// were alive. Inactive marriages with a deceased partner remain visible.
func IsDivorce(mr Marriage, husband, wife Person) bool {
	return !mr.IsActive && husband.IsAlive && wife.IsAlive
}

// ResolveParents returns the known birth parents of child through l. The
// marriage named by the link wins; the denormalized father and mother ids fill
// whatever it leaves unknown. Parents that l does not know are dropped.
func ResolveParents(l Lookup, child ID) Parents {
	link, ok := l.BirthLink(child)
	if !ok {
		return Parents{}
	}
	var p Parents
	if link.MarriageID != nil {
		if mr, ok := l.Marriage(*link.MarriageID); ok {
			p.Father, p.Mother = mr.HusbandID, mr.WifeID
		}
	}
	if p.Father == NoID && link.FatherID != nil {
		p.Father = *link.FatherID
	}
	if p.Mother == NoID && link.MotherID != nil {
		p.Mother = *link.MotherID
	}
	if _, ok := l.Person(p.Father); !ok || p.Father == child {
		p.Father = NoID
	}
	if _, ok := l.Person(p.Mother); !ok || p.Mother == child || p.Mother == p.Father {
		p.Mother = NoID
	}
	return p
}

// Person returns the person with the given id.
func (m *Model) Person(id ID) (Person, bool) {
	p, ok := m.persons[id]
	return p, ok
}

// Marriage returns the marriage with the given id.
func (m *Model) Marriage(id ID) (Marriage, bool) {
	mr, ok := m.marriages[id]
	return mr, ok
}

// BirthLink returns the parent-child link of the given child.
func (m *Model) BirthLink(childID ID) (ParentChildLink, bool) {
	l, ok := m.links[childID]
	return l, ok
}

// Has reports whether the person is part of the snapshot.
func (m *Model) Has(id ID) bool {
	_, ok := m.persons[id]
	return ok
}

// Children returns the children of a parent in link order. The slice must not
// be modified.
func (m *Model) Children(parentID ID) []ID { return m.childrenByParent[parentID] }

// Spouses returns the spouse adjacency of a person in marriage order. The
// slice must not be modified.
func (m *Model) Spouses(id ID) []Spouse { return m.spouses[id] }

// Parents returns the resolved birth parents of a child.
func (m *Model) Parents(childID ID) Parents { return m.parentsByChild[childID] }

// Persons returns all persons in input order.
func (m *Model) Persons() []Person {
	out := make([]Person, 0, len(m.personOrder))
	for _, id := range m.personOrder {
		out = append(out, m.persons[id])
	}
	return out
}

// Marriages returns all marriages in input order, divorced ones included.
func (m *Model) Marriages() []Marriage {
	out := make([]Marriage, 0, len(m.marriageOrder))
	for _, id := range m.marriageOrder {
		out = append(out, m.marriages[id])
	}
	return out
}

// PersonCount returns the number of indexed persons.
func (m *Model) PersonCount() int { return len(m.persons) }

// SiblingOrder returns the effective birth order of a person: the link's
// birth order when recorded, otherwise the person's own.
func (m *Model) SiblingOrder(id ID) (int, bool) {
	if l, ok := m.links[id]; ok && l.BirthOrder != nil {
		return *l.BirthOrder, true
	}
	if p, ok := m.persons[id]; ok && p.BirthOrder != nil {
		return *p.BirthOrder, true
	}
	return 0, false
}

// CompareSiblings orders two persons by birth order, then by name in natural
// order, then by id. Persons without a birth order sort after those with one.
func (m *Model) CompareSiblings(a, b ID) int {
	oa, aok := m.SiblingOrder(a)
	ob, bok := m.SiblingOrder(b)
	switch {
	case aok && bok && oa != ob:
		return cmp.Compare(oa, ob)
	case aok && !bok:
		return -1
	case !aok && bok:
		return 1
	}
	na, nb := m.persons[a].FullName, m.persons[b].FullName
	if na != nb {
		if natsort.Compare(na, nb) {
			return -1
		}
		if natsort.Compare(nb, na) {
			return 1
		}
	}
	return cmp.Compare(a, b)
}

// SortSiblings sorts ids in place with CompareSiblings.
func (m *Model) SortSiblings(ids []ID) {
	slices.SortStableFunc(ids, m.CompareSiblings)
}
