// Package treelayout computes a non-overlapping two-dimensional layout of a
// family branch for diagram rendering.
//
// # Overview
//
// [Engine.Layout] takes persons, parent-child links and marriages together
// with an anchor branch and returns person nodes, synthetic marriage nodes and
// the edges connecting them. The engine is pure: it indexes its input into a
// fresh [family.Model] on every call and keeps all traversal state local to
// that call, so concurrent layouts never interfere.
//
// # Algorithm
//
// Layout runs in four passes:
//
//  1. Roots. Persons of the anchor branch at the lowest generation present
//     become roots, ordered like siblings (birth order, then name).
//
//  2. Units. Starting at each root, a depth-first walk groups every person
//     with the spouses not yet claimed elsewhere and partitions their children
//     into one cluster per spouse plus a pivot cluster for children without
//     an identified co-parent here. An explicit visited set guarantees each
//     person joins exactly one unit, which also cuts cycles in bad data.
//
//  3. Extents. Bottom-up, each unit gets its exact horizontal extent relative
//     to its person's center. Sibling subtrees are spaced so their extents
//     never intersect:
//
//     distance = max(NodeWidth+SiblingBuffer, right(a)-left(b)+SiblingBuffer-OverlapAllowance)
//
//     Spouses sit beside the person (a single spouse to the right of a man and
//     to the left of a woman; several spouses alternate left and right). A
//     monogamous couple without pivot children keeps the fixed SpouseGap;
//     otherwise the gap widens until each spouse's child cluster clears the
//     pivot cluster and the previous spouse's cluster by SpouseBuffer.
//
//  4. Placement. Top-down, units receive absolute coordinates. Each couple
//     gets a marriage node midway between the adjoining node edges, half a
//     node height below the row top. Pivot children are centered under the
//     person and every other cluster under its marriage node, one row lower.
//
// Persons never reached from a root are placed in a fallback row below the
// tree and receive no edges, so every input person has exactly one node.
//
// # Edges
//
// Each visible marriage with both spouses placed yields two edges from the
// spouses to the marriage node, with handle sides taken from the final x
// positions. Each child gets one edge from its parents' marriage node, or
// from a single placed parent when no such node exists. Duplicates are
// dropped. Inactive marriages that stay visible are dashed.
//
// # Output
//
// Node ids are person-<id> and marriage-<min>-<max>, so renderers can map
// elements back to records. Positions are top-left corners and every node
// carries its size. [Node.Data] is either a [PersonNode] or a [MarriageNode].
package treelayout
