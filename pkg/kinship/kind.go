package kinship

import (
	"fmt"
	"strconv"
	"strings"
)

// Unreachable is the distance reported when no parent path joins two persons.
const Unreachable = 999

// Kind names the relationship of person A to person B.
type Kind string

const (
	KindSelf             Kind = "self"
	KindChild            Kind = "child"
	KindParent           Kind = "parent"
	KindSibling          Kind = "sibling"
	KindNieceNephew      Kind = "niece_nephew"
	KindUncleAunt        Kind = "uncle_aunt"
	KindCousin           Kind = "cousin"
	KindGrandchild       Kind = "grandchild"
	KindGrandparent      Kind = "grandparent"
	KindGreatGrandchild  Kind = "great_grandchild"
	KindGreatGrandparent Kind = "great_grandparent"
	KindDescendant       Kind = "descendant"
	KindAncestor         Kind = "ancestor"
	KindUnknown          Kind = "unknown"
)

type distancePair struct{ a, b int }

var fixedKinds = map[distancePair]Kind{
	{0, 0}: KindSelf,
	{1, 0}: KindChild,
	{0, 1}: KindParent,
	{1, 1}: KindSibling,
	{2, 1}: KindNieceNephew,
	{1, 2}: KindUncleAunt,
	{2, 2}: KindCousin,
	{2, 0}: KindGrandchild,
	{0, 2}: KindGrandparent,
	{3, 0}: KindGreatGrandchild,
	{0, 3}: KindGreatGrandparent,
}

// CousinKind returns the generalized collateral kind
// "cousin_<degree>_removed_<removed>".
func CousinKind(degree, removed int) Kind {
	return Kind(fmt.Sprintf("cousin_%d_removed_%d", degree, removed))
}

// Cousin reports the degree and removal of a generalized collateral kind.
func (k Kind) Cousin() (degree, removed int, ok bool) {
	rest, ok := strings.CutPrefix(string(k), "cousin_")
	if !ok {
		return 0, 0, false
	}
	d, r, ok := strings.Cut(rest, "_removed_")
	if !ok {
		return 0, 0, false
	}
	var err1, err2 error
	degree, err1 = strconv.Atoi(d)
	removed, err2 = strconv.Atoi(r)
	if err1 != nil || err2 != nil || degree < 0 || removed < 0 {
		return 0, 0, false
	}
	return degree, removed, true
}

// Classify maps the generation distances of A and B from their common
// ancestor onto a relationship kind.
//
// Direct lines beyond great-grand become [KindDescendant] or [KindAncestor];
// other pairs outside the fixed table become a generalized cousin kind with
// degree min(distA, distB)-1 and removal |distA-distB|.
func Classify(distA, distB int) Kind {
	if distA < 0 || distB < 0 || distA >= Unreachable || distB >= Unreachable {
		return KindUnknown
	}
	if k, ok := fixedKinds[distancePair{distA, distB}]; ok {
		return k
	}
	switch {
	case distB == 0:
		return KindDescendant
	case distA == 0:
		return KindAncestor
	}
	removed := distA - distB
	if removed < 0 {
		removed = -removed
	}
	return CousinKind(min(distA, distB)-1, removed)
}
