package treelayout

import (
	"encoding/json"
	"fmt"

	"github.com/juruladenbam/bam-sub000/pkg/family"
)

// =============================================================================
// Nodes
// =============================================================================

// NodeType discriminates the payload of a Node.
type NodeType string

const (
	TypePerson   NodeType = "person"
	TypeMarriage NodeType = "marriage"
)

// Point is a position in layout coordinates. Y grows downwards.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// NodeData is the payload of a node: a PersonNode or a MarriageNode.
type NodeData interface {
	NodeType() NodeType
}

// PersonNode carries the person record a node displays. Ghost marks a person
// shown outside their home branch.
type PersonNode struct {
	family.Person
	Ghost bool `json:"is_ghost,omitempty"`
}

// NodeType implements NodeData.
func (PersonNode) NodeType() NodeType { return TypePerson }

// MarriageNode is the routing anchor of a couple.
type MarriageNode struct {
	MarriageID family.ID    `json:"marriage_id"`
	Spouses    [2]family.ID `json:"spouses"`
	Active     bool         `json:"is_active"`
}

// NodeType implements NodeData.
func (MarriageNode) NodeType() NodeType { return TypeMarriage }

// Node is a positioned element of the layout. Position is the top-left corner.
type Node struct {
	ID       string
	Position Point
	Width    float64
	Height   float64
	Data     NodeData
}

// Type returns the node's discriminator.
func (n Node) Type() NodeType {
	if n.Data == nil {
		return ""
	}
	return n.Data.NodeType()
}

// Center returns the center point of the node.
func (n Node) Center() Point {
	return Point{X: n.Position.X + n.Width/2, Y: n.Position.Y + n.Height/2}
}

// Person returns the person payload, if this is a person node.
func (n Node) Person() (PersonNode, bool) {
	p, ok := n.Data.(PersonNode)
	return p, ok
}

// Marriage returns the marriage payload, if this is a marriage node.
func (n Node) Marriage() (MarriageNode, bool) {
	m, ok := n.Data.(MarriageNode)
	return m, ok
}

type nodeJSON struct {
	ID       string          `json:"id"`
	Type     NodeType        `json:"type"`
	Position Point           `json:"position"`
	Width    float64         `json:"width"`
	Height   float64         `json:"height"`
	Data     json.RawMessage `json:"data"`
}

// MarshalJSON encodes the node with an explicit "type" discriminator.
func (n Node) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(nodeJSON{
		ID:       n.ID,
		Type:     n.Type(),
		Position: n.Position,
		Width:    n.Width,
		Height:   n.Height,
		Data:     data,
	})
}

// UnmarshalJSON decodes a node, choosing the payload type from "type".
func (n *Node) UnmarshalJSON(b []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*n = Node{ID: raw.ID, Position: raw.Position, Width: raw.Width, Height: raw.Height}
	switch raw.Type {
	case TypePerson:
		var p PersonNode
		if err := json.Unmarshal(raw.Data, &p); err != nil {
			return fmt.Errorf("node %s: %w", raw.ID, err)
		}
		n.Data = p
	case TypeMarriage:
		var m MarriageNode
		if err := json.Unmarshal(raw.Data, &m); err != nil {
			return fmt.Errorf("node %s: %w", raw.ID, err)
		}
		n.Data = m
	default:
		return fmt.Errorf("node %s: unknown type %q", raw.ID, raw.Type)
	}
	return nil
}

// PersonNodeID returns the node id of a person.
func PersonNodeID(id family.ID) string { return "person-" + id.String() }

// MarriageNodeID returns the node id of the couple a and b, independent of
// argument order.
func MarriageNodeID(a, b family.ID) string {
	return fmt.Sprintf("marriage-%d-%d", min(a, b), max(a, b))
}

// =============================================================================
// Edges
// =============================================================================

// Handle names the side of a node an edge attaches to.
type Handle string

const (
	HandleTop    Handle = "top"
	HandleBottom Handle = "bottom"
	HandleLeft   Handle = "left"
	HandleRight  Handle = "right"
)

// Edge types understood by diagram renderers.
const (
	EdgeStraight   = "straight"
	EdgeSmoothStep = "smoothstep"
)

// EdgeStyle holds presentation hints for an edge.
type EdgeStyle struct {
	Dashed bool `json:"dashed,omitempty"`
}

// Edge connects two nodes by id.
type Edge struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	Target       string    `json:"target"`
	SourceHandle Handle    `json:"sourceHandle"`
	TargetHandle Handle    `json:"targetHandle"`
	Type         string    `json:"type"`
	Style        EdgeStyle `json:"style"`
}

// =============================================================================
// Result
// =============================================================================

// Result is a computed layout.
type Result struct {
	AnchorBranch family.ID `json:"anchor_branch_id"`
	Nodes        []Node    `json:"nodes"`
	Edges        []Edge    `json:"edges"`
	Width        float64   `json:"width"`
	Height       float64   `json:"height"`
}

// Node returns the node with the given id.
func (r *Result) Node(id string) (Node, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// PersonNode returns the node of a person.
func (r *Result) PersonNode(id family.ID) (Node, bool) {
	return r.Node(PersonNodeID(id))
}

// MarkGhosts flags the person nodes of ids as ghosts.
func (r *Result) MarkGhosts(ids []family.ID) {
	if len(ids) == 0 {
		return
	}
	ghost := make(map[family.ID]bool, len(ids))
	for _, id := range ids {
		ghost[id] = true
	}
	for i, n := range r.Nodes {
		if p, ok := n.Person(); ok && ghost[p.ID] {
			p.Ghost = true
			r.Nodes[i].Data = p
		}
	}
}

// PersonCount returns the number of person nodes.
func (r *Result) PersonCount() int {
	n := 0
	for _, node := range r.Nodes {
		if node.Type() == TypePerson {
			n++
		}
	}
	return n
}

// Encode returns the indented JSON document of the layout.
func (r *Result) Encode() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Decode parses a layout document produced by Encode.
func Decode(data []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	return &r, nil
}
