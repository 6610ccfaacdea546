// Package kinship resolves the human-meaningful relationship between two
// persons of a family graph.
//
// # Algorithm
//
// [Resolver.Calculate] runs five steps:
//
//  1. Identical persons short-circuit to [KindSelf].
//  2. [Resolver.AncestorSet] walks each person's birth parents upward,
//     father first and depth first, guarded by a visited set. The starting
//     person leads the set so direct-line relationships resolve.
//  3. [FindLCA] picks the first id of the first set that also appears in the
//     second. The choice follows traversal order and is not guaranteed to be
//     the nearest common ancestor when disjoint chains tie.
//  4. [Resolver.DistanceTo] counts generations to the common ancestor with a
//     breadth-first search, returning [Unreachable] instead of failing.
//  5. [Classify] maps the distance pair onto a [Kind].
//
// The result reads "A is B's <kind>": labels and the recommended address
// (sapaan) are chosen by the gender of A. Labels are Indonesian; uncle and
// aunt relationships also get a Javanese honorific (Pakdhe, Budhe, Paklik,
// Bulik) from comparing A's age with the sibling through whom B descends.
//
// # Failure semantics
//
// Nothing here returns an error. Missing persons, marriages or links stop the
// walk along that edge; cycles in malformed data are cut by visited sets. An
// empty intersection of ancestor sets yields [KindUnknown].
//
// A Resolver holds no mutable state and is safe for concurrent use as long as
// its [family.Lookup] is.
package kinship
