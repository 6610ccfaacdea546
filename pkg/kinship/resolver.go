package kinship

import (
	"fmt"
	"strings"

	"github.com/juruladenbam/bam-sub000/pkg/family"
)

// Result describes how person A relates to person B.
type Result struct {
	Kind          Kind       `json:"relationship"`
	Label         string     `json:"label"`
	LabelJavanese string     `json:"label_javanese,omitempty"`
	Path          Path       `json:"path"`
	LCAID         *family.ID `json:"lca_id"`
	LCAName       string     `json:"lca_name,omitempty"`
	DistanceA     int        `json:"distance_a"`
	DistanceB     int        `json:"distance_b"`
	Sapaan        string     `json:"sapaan,omitempty"`
}

// Path is the narrative form of a relationship.
type Path struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Via         string `json:"via,omitempty"`
	Description string `json:"description"`
}

// Resolver computes relationships over a [family.Lookup].
type Resolver struct {
	lookup family.Lookup
}

// NewResolver returns a resolver reading records through l.
func NewResolver(l family.Lookup) *Resolver {
	return &Resolver{lookup: l}
}

// Calculate returns the relationship of person A to person B. It always
// returns a result; unknown persons and disconnected pairs yield KindUnknown.
func (r *Resolver) Calculate(a, b family.ID) Result {
	pa, aok := r.lookup.Person(a)
	pb, bok := r.lookup.Person(b)

	if a == b {
		return Result{
			Kind:  KindSelf,
			Label: Label(KindSelf, pa.Gender),
			Path: Path{
				From:        pa.FullName,
				To:          pb.FullName,
				Description: fmt.Sprintf("%s adalah orang yang sama", pa.FullName),
			},
		}
	}

	unknown := Result{
		Kind:      KindUnknown,
		Label:     Label(KindUnknown, pa.Gender),
		DistanceA: Unreachable,
		DistanceB: Unreachable,
		Path: Path{
			From:        pa.FullName,
			To:          pb.FullName,
			Description: fmt.Sprintf("Tidak ditemukan leluhur bersama antara %s dan %s", pa.FullName, pb.FullName),
		},
	}
	if !aok || !bok {
		return unknown
	}

	lca, ok := FindLCA(r.AncestorSet(a), r.AncestorSet(b))
	if !ok {
		return unknown
	}

	distA := r.DistanceTo(a, lca)
	distB := r.DistanceTo(b, lca)
	kind := Classify(distA, distB)
	if kind == KindUnknown {
		return unknown
	}

	anc, _ := r.lookup.Person(lca)
	lcaID := lca
	res := Result{
		Kind:      kind,
		Label:     DirectionalLabel(kind, pa.Gender, distA, distB),
		LCAID:     &lcaID,
		LCAName:   anc.FullName,
		DistanceA: distA,
		DistanceB: distB,
		Path: Path{
			From:        pa.FullName,
			To:          pb.FullName,
			Via:         anc.FullName,
			Description: describe(pa, distA, pb, distB, anc),
		},
	}

	rel := relation{a: pa, b: pb, lca: lca, distA: distA, distB: distB, kind: kind}
	if kind == KindUncleAunt {
		res.LabelJavanese = r.javaneseHonorific(rel)
	}
	res.Sapaan = r.sapaan(rel, res.LabelJavanese)
	return res
}

// relation carries the resolved facts shared by the label helpers.
type relation struct {
	a, b         family.Person
	lca          family.ID
	distA, distB int
	kind         Kind
}

// AncestorSet returns id followed by every ancestor reachable through birth
// links, in father-first depth-first order. Each id appears once even when
// the data contains cycles. Unknown persons yield an empty set.
func (r *Resolver) AncestorSet(id family.ID) []family.ID {
	if _, ok := r.lookup.Person(id); !ok {
		return nil
	}
	visited := map[family.ID]bool{id: true}
	out := []family.ID{id}
	r.walkAncestors(id, visited, &out)
	return out
}

func (r *Resolver) walkAncestors(id family.ID, visited map[family.ID]bool, out *[]family.ID) {
	for _, pid := range family.ResolveParents(r.lookup, id).Known() {
		if visited[pid] {
			continue
		}
		visited[pid] = true
		*out = append(*out, pid)
		r.walkAncestors(pid, visited, out)
	}
}

// FindLCA returns the first id of setA, in order, that also occurs in setB.
func FindLCA(setA, setB []family.ID) (family.ID, bool) {
	inB := make(map[family.ID]bool, len(setB))
	for _, id := range setB {
		inB[id] = true
	}
	for _, id := range setA {
		if inB[id] {
			return id, true
		}
	}
	return family.NoID, false
}

// DistanceTo returns the number of generations between a person and one of
// their ancestors, or Unreachable when no parent path leads there.
func (r *Resolver) DistanceTo(id, ancestor family.ID) int {
	if id == ancestor {
		return 0
	}
	visited := map[family.ID]bool{id: true}
	frontier := []family.ID{id}
	for depth := 1; len(frontier) > 0; depth++ {
		var next []family.ID
		for _, cur := range frontier {
			for _, pid := range family.ResolveParents(r.lookup, cur).Known() {
				if pid == ancestor {
					return depth
				}
				if visited[pid] {
					continue
				}
				visited[pid] = true
				next = append(next, pid)
			}
		}
		frontier = next
	}
	return Unreachable
}

// ancestorAt returns the first ancestor of id that sits exactly up
// generations above it and exactly below generations under lca.
func (r *Resolver) ancestorAt(id, lca family.ID, up, below int) (family.ID, bool) {
	visited := map[family.ID]bool{id: true}
	frontier := []family.ID{id}
	for depth := 0; depth < up; depth++ {
		var next []family.ID
		for _, cur := range frontier {
			for _, pid := range family.ResolveParents(r.lookup, cur).Known() {
				if visited[pid] {
					continue
				}
				visited[pid] = true
				next = append(next, pid)
			}
		}
		frontier = next
	}
	for _, cand := range frontier {
		if r.DistanceTo(cand, lca) == below {
			return cand, true
		}
	}
	return family.NoID, false
}

func describe(a family.Person, distA int, b family.Person, distB int, lca family.Person) string {
	part := func(p family.Person, dist int) string {
		if dist == 0 {
			return fmt.Sprintf("%s adalah leluhur bersama", p.FullName)
		}
		return fmt.Sprintf("%s adalah keturunan %s, %d generasi di bawahnya", p.FullName, lca.FullName, dist)
	}
	return strings.Join([]string{part(a, distA), part(b, distB)}, "; ")
}
