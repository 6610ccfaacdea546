package treelayout

import (
	"slices"

	"github.com/juruladenbam/bam-sub000/pkg/family"
)

// Engine computes layouts with a fixed geometry. It holds no per-call state
// and is safe for concurrent use.
type Engine struct {
	opts Options
}

// New returns an engine using opts. Zero sizes fall back to the defaults.
func New(opts Options) *Engine {
	return &Engine{opts: opts.normalized()}
}

// Options returns the effective geometry.
func (e *Engine) Options() Options { return e.opts }

// Layout lays out the branch anchor using the default geometry.
func Layout(persons []family.Person, links []family.ParentChildLink, marriages []family.Marriage, anchor family.ID) *Result {
	return New(DefaultOptions()).Layout(persons, links, marriages, anchor)
}

// Layout indexes the records and lays out the branch anchor. Every person in
// persons receives exactly one node.
func (e *Engine) Layout(persons []family.Person, links []family.ParentChildLink, marriages []family.Marriage, anchor family.ID) *Result {
	m := family.NewModel(persons, marriages, links, family.Options{IncludeDivorced: e.opts.IncludeDivorced})
	return e.LayoutModel(m, anchor)
}

// LayoutModel lays out the branch anchor over an already indexed model.
func (e *Engine) LayoutModel(m *family.Model, anchor family.ID) *Result {
	b := newBuilder(m, e.opts)
	roots := cluster{}
	for _, id := range Roots(m, anchor) {
		if !b.visited[id] {
			roots.children = append(roots.children, b.build(id))
		}
	}
	b.arrange(&roots)

	p := &placer{
		m:       m,
		opts:    e.opts,
		res:     &Result{AnchorBranch: anchor},
		placed:  make(map[family.ID]Point),
		holder:  make(map[family.ID]family.ID),
		couples: make(map[string]int),
	}
	for i, u := range roots.children {
		p.place(u, roots.offsets[i]-roots.left, 0)
	}
	p.linkRemoteCouples()
	p.placeOrphans()
	p.synthesizeEdges()
	p.bounds()
	return p.res
}

// SubtreeWidth returns the horizontal footprint of id, their unclaimed
// spouses and all descendants, measured with a fresh visited set. It does not
// share state with any layout.
func (e *Engine) SubtreeWidth(m *family.Model, id family.ID) float64 {
	if !m.Has(id) {
		return 0
	}
	b := newBuilder(m, e.opts)
	u := b.build(id)
	b.measure(u)
	return u.right - u.left
}

// Roots returns the persons of branch at the lowest generation present among
// them, in sibling order.
func Roots(m *family.Model, branch family.ID) []family.ID {
	var roots []family.ID
	minGen := -1
	for _, p := range m.Persons() {
		if p.BranchID != branch {
			continue
		}
		switch {
		case minGen < 0 || p.Generation < minGen:
			minGen = p.Generation
			roots = append(roots[:0], p.ID)
		case p.Generation == minGen:
			roots = append(roots, p.ID)
		}
	}
	m.SortSiblings(roots)
	return roots
}

// =============================================================================
// Placement
// =============================================================================

type couple struct {
	a, b     family.ID
	marriage family.ID
}

// placer assigns absolute coordinates. It is created per call.
type placer struct {
	m    *family.Model
	opts Options
	res  *Result

	placed  map[family.ID]Point // person centers in the tree
	holder  map[family.ID]family.ID
	couples map[string]int // marriage node id -> node index
	order   []couple
	orphans map[family.ID]bool
}

func (p *placer) place(u *unit, x, y float64) {
	p.addPerson(u.id, x, y)
	for _, s := range u.spouses {
		p.addPerson(s.id, x+s.center, y)
		p.addMarriage(u.id, s.id, s.marriage, x+s.anchor, y+p.opts.NodeHeight/2)
	}

	childY := y + p.opts.NodeHeight + p.opts.VerticalGap
	p.placeCluster(&u.pivot, u.id, x, childY)
	for _, s := range u.spouses {
		p.placeCluster(&s.kids, s.id, x+s.anchor, childY)
	}
}

func (p *placer) placeCluster(c *cluster, parent family.ID, anchor, y float64) {
	for i, child := range c.children {
		p.holder[child.id] = parent
		p.place(child, anchor+c.offsets[i], y)
	}
}

func (p *placer) addPerson(id family.ID, cx, y float64) {
	person, _ := p.m.Person(id)
	w := p.opts.NodeWidth
	p.placed[id] = Point{X: cx, Y: y + p.opts.NodeHeight/2}
	p.appendNode(Node{
		ID:       PersonNodeID(id),
		Position: Point{X: cx - w/2, Y: y},
		Width:    w,
		Height:   p.opts.NodeHeight,
		Data:     PersonNode{Person: person},
	})
}

func (p *placer) addMarriage(a, b, marriage family.ID, cx, cy float64) {
	id := MarriageNodeID(a, b)
	if _, ok := p.couples[id]; ok {
		return
	}
	mr, _ := p.m.Marriage(marriage)
	size := p.opts.MarriageNodeSize
	spouses := [2]family.ID{min(a, b), max(a, b)}
	p.couples[id] = len(p.res.Nodes)
	p.order = append(p.order, couple{a: spouses[0], b: spouses[1], marriage: marriage})
	p.appendNode(Node{
		ID:       id,
		Position: Point{X: cx - size/2, Y: cy - size/2},
		Width:    size,
		Height:   size,
		Data:     MarriageNode{MarriageID: marriage, Spouses: spouses, Active: mr.IsActive},
	})
}

func (p *placer) appendNode(n Node) {
	p.res.Nodes = append(p.res.Nodes, n)
}

// linkRemoteCouples adds marriage nodes for couples whose spouses were both
// placed but in different units, such as marriages between cousins.
func (p *placer) linkRemoteCouples() {
	for _, person := range p.m.Persons() {
		a, ok := p.placed[person.ID]
		if !ok {
			continue
		}
		for _, s := range p.m.Spouses(person.ID) {
			b, ok := p.placed[s.PersonID]
			if !ok {
				continue
			}
			if _, exists := p.couples[MarriageNodeID(person.ID, s.PersonID)]; exists {
				continue
			}
			p.addMarriage(person.ID, s.PersonID, s.MarriageID, (a.X+b.X)/2, max(a.Y, b.Y))
		}
	}
}

// placeOrphans gives every unreached person a slot in a row below the tree.
func (p *placer) placeOrphans() {
	y := 0.0
	if len(p.res.Nodes) > 0 {
		for _, n := range p.res.Nodes {
			y = max(y, n.Position.Y+n.Height)
		}
		y += p.opts.VerticalGap
	}
	step := p.opts.NodeWidth + p.opts.SiblingBuffer
	p.orphans = make(map[family.ID]bool)
	i := 0
	for _, person := range p.m.Persons() {
		if _, ok := p.placed[person.ID]; ok {
			continue
		}
		p.orphans[person.ID] = true
		p.appendNode(Node{
			ID:       PersonNodeID(person.ID),
			Position: Point{X: float64(i) * step, Y: y},
			Width:    p.opts.NodeWidth,
			Height:   p.opts.NodeHeight,
			Data:     PersonNode{Person: person},
		})
		i++
	}
}

func (p *placer) bounds() {
	for _, n := range p.res.Nodes {
		p.res.Width = max(p.res.Width, n.Position.X+n.Width)
		p.res.Height = max(p.res.Height, n.Position.Y+n.Height)
	}
}

// =============================================================================
// Edges
// =============================================================================

func (p *placer) synthesizeEdges() {
	seen := make(map[[2]string]bool)
	add := func(e Edge) {
		key := [2]string{e.Source, e.Target}
		if seen[key] {
			return
		}
		seen[key] = true
		e.ID = "e-" + e.Source + "-" + e.Target
		p.res.Edges = append(p.res.Edges, e)
	}

	for _, c := range p.order {
		mid := MarriageNodeID(c.a, c.b)
		mx := p.res.Nodes[p.couples[mid]].Center().X
		mr, _ := p.m.Marriage(c.marriage)
		for _, id := range []family.ID{c.a, c.b} {
			src, dst := HandleLeft, HandleRight
			if p.placed[id].X < mx {
				src, dst = HandleRight, HandleLeft
			}
			add(Edge{
				Source:       PersonNodeID(id),
				Target:       mid,
				SourceHandle: src,
				TargetHandle: dst,
				Type:         EdgeStraight,
				Style:        EdgeStyle{Dashed: !mr.IsActive},
			})
		}
	}

	for _, n := range p.res.Nodes {
		pn, ok := n.Person()
		if !ok || p.orphans[pn.ID] {
			continue
		}
		src, ok := p.childSource(pn.ID)
		if !ok {
			continue
		}
		add(Edge{
			Source:       src,
			Target:       n.ID,
			SourceHandle: HandleBottom,
			TargetHandle: HandleTop,
			Type:         EdgeSmoothStep,
		})
	}
}

// childSource picks the node a child's edge starts from: the parents'
// marriage node when both are placed and coupled, else one placed parent.
func (p *placer) childSource(child family.ID) (string, bool) {
	var parents []family.ID
	for _, id := range p.m.Parents(child).Known() {
		if _, ok := p.placed[id]; ok {
			parents = append(parents, id)
		}
	}
	switch len(parents) {
	case 0:
		return "", false
	case 2:
		if id := MarriageNodeID(parents[0], parents[1]); p.hasNode(id) {
			return id, true
		}
	}
	if h, ok := p.holder[child]; ok && slices.Contains(parents, h) {
		return PersonNodeID(h), true
	}
	return PersonNodeID(parents[0]), true
}

func (p *placer) hasNode(id string) bool {
	_, ok := p.couples[id]
	return ok
}
