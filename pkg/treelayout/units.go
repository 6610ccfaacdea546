package treelayout

import (
	"slices"

	"github.com/juruladenbam/bam-sub000/pkg/family"
)

// unit is a person drawn together with the spouses claimed by them. All
// offsets are relative to the person's center.
type unit struct {
	id      family.ID
	male    bool
	pivot   cluster
	spouses []*spouseUnit

	left, right float64
}

// spouseUnit is one spouse placed beside a unit's person.
type spouseUnit struct {
	id       family.ID
	marriage family.ID
	side     float64 // -1 left, +1 right

	center float64 // spouse node center
	anchor float64 // marriage node center, the cluster anchor
	kids   cluster
}

// cluster is a row of sibling subtrees centered under an anchor.
type cluster struct {
	children []*unit
	offsets  []float64 // child centers relative to the anchor

	left, right float64
}

func (c *cluster) empty() bool { return len(c.children) == 0 }

// inner returns how far the cluster reaches back towards the person when
// drawn on side.
func (c *cluster) inner(side float64) float64 {
	if side > 0 {
		return -c.left
	}
	return c.right
}

// outer returns how far the cluster reaches away from the person on side.
func (c *cluster) outer(side float64) float64 {
	if side > 0 {
		return c.right
	}
	return -c.left
}

func (u *unit) spouseIndex(id family.ID) int {
	if id == family.NoID {
		return -1
	}
	return slices.IndexFunc(u.spouses, func(s *spouseUnit) bool { return s.id == id })
}

// builder turns the parent/spouse graph into a unit tree. visited is shared by
// every unit built by one builder, so each person is claimed once.
type builder struct {
	m       *family.Model
	opts    Options
	visited map[family.ID]bool
}

func newBuilder(m *family.Model, opts Options) *builder {
	return &builder{m: m, opts: opts, visited: make(map[family.ID]bool)}
}

func (b *builder) build(id family.ID) *unit {
	b.visited[id] = true
	p, _ := b.m.Person(id)
	u := &unit{id: id, male: p.IsMale()}

	for _, s := range b.m.Spouses(id) {
		if b.visited[s.PersonID] {
			continue
		}
		b.visited[s.PersonID] = true
		u.spouses = append(u.spouses, &spouseUnit{id: s.PersonID, marriage: s.MarriageID})
	}
	u.assignSides()

	seen := make(map[family.ID]bool)
	var pivot []family.ID
	groups := make([][]family.ID, len(u.spouses))
	for _, c := range b.m.Children(id) {
		if seen[c] {
			continue
		}
		seen[c] = true
		if i := u.spouseIndex(b.m.Parents(c).Other(id)); i >= 0 {
			groups[i] = append(groups[i], c)
		} else {
			pivot = append(pivot, c)
		}
	}
	// A spouse's children from other partners follow that spouse.
	for i, s := range u.spouses {
		for _, c := range b.m.Children(s.id) {
			if !seen[c] {
				seen[c] = true
				groups[i] = append(groups[i], c)
			}
		}
	}

	u.pivot.children = b.buildAll(pivot)
	for i, s := range u.spouses {
		s.kids.children = b.buildAll(groups[i])
	}
	return u
}

// buildAll builds units for the unclaimed ids in sibling order.
func (b *builder) buildAll(ids []family.ID) []*unit {
	ids = slices.Clone(ids)
	b.m.SortSiblings(ids)
	var out []*unit
	for _, id := range ids {
		if b.visited[id] {
			continue
		}
		out = append(out, b.build(id))
	}
	return out
}

// assignSides puts a single spouse right of a man and left of a woman, and
// alternates several spouses left and right in encounter order.
func (u *unit) assignSides() {
	if len(u.spouses) == 1 {
		u.spouses[0].side = -1
		if u.male {
			u.spouses[0].side = 1
		}
		return
	}
	for i, s := range u.spouses {
		s.side = -1
		if i%2 == 1 {
			s.side = 1
		}
	}
}

// =============================================================================
// Extents
// =============================================================================

// measure computes the extents of u and everything below it.
func (b *builder) measure(u *unit) {
	b.arrange(&u.pivot)
	for _, s := range u.spouses {
		b.arrange(&s.kids)
	}

	half := b.opts.NodeWidth / 2
	u.left, u.right = -half, half
	if !u.pivot.empty() {
		u.left = min(u.left, u.pivot.left)
		u.right = max(u.right, u.pivot.right)
	}

	monogamous := len(u.spouses) == 1 && u.pivot.empty()
	for _, side := range []float64{-1, 1} {
		nodeEdge := half
		clusterEdge := b.opts.SpouseBuffer / 2
		if !u.pivot.empty() {
			clusterEdge = u.pivot.outer(side) + b.opts.SpouseBuffer
		}
		for _, s := range u.spouses {
			if s.side != side {
				continue
			}
			gap := b.opts.SpouseGap
			if !monogamous && !s.kids.empty() {
				gap = max(gap, clusterEdge+s.kids.inner(side)-nodeEdge)
			}
			anchor := nodeEdge + gap
			center := anchor + gap + half
			s.anchor, s.center = side*anchor, side*center
			nodeEdge = center + half

			u.left = min(u.left, s.center-half)
			u.right = max(u.right, s.center+half)
			if !s.kids.empty() {
				clusterEdge = anchor + s.kids.outer(side) + b.opts.SpouseBuffer
				u.left = min(u.left, s.anchor+s.kids.left)
				u.right = max(u.right, s.anchor+s.kids.right)
			}
		}
	}
}

// arrange measures the children of c and spaces them as siblings, centering
// the row of child nodes on the anchor.
func (b *builder) arrange(c *cluster) {
	c.offsets = c.offsets[:0]
	if c.empty() {
		c.left, c.right = 0, 0
		return
	}
	for _, child := range c.children {
		b.measure(child)
	}
	x := 0.0
	for i, child := range c.children {
		if i > 0 {
			x += b.spacing(c.children[i-1], child)
		}
		c.offsets = append(c.offsets, x)
	}
	mid := x / 2
	c.left, c.right = 0, 0
	for i, child := range c.children {
		c.offsets[i] -= mid
		if i == 0 || c.offsets[i]+child.left < c.left {
			c.left = c.offsets[i] + child.left
		}
		if i == 0 || c.offsets[i]+child.right > c.right {
			c.right = c.offsets[i] + child.right
		}
	}
}

// spacing returns the center distance between adjacent sibling subtrees.
func (b *builder) spacing(left, right *unit) float64 {
	o := b.opts
	return max(o.NodeWidth+o.SiblingBuffer, left.right-right.left+o.SiblingBuffer-o.OverlapAllowance)
}
