// Package family defines the genealogy records consumed by the kinship and
// layout engines, and the derived lookup indices built from them.
//
// # Records
//
// Three record families describe a population:
//
//   - [Person]: an individual with a gender, optional birth/death dates, an
//     owning [Branch] (clan) and a generation depth from the founder.
//   - [Marriage]: a husband/wife pair. A person may appear in any number of
//     marriages, which covers both polygamy and remarriage.
//   - [ParentChildLink]: the birth record of a child, naming the parents'
//     marriage and/or the denormalized father and mother ids.
//
// A [Dataset] bundles all of them and is the unit of snapshotting, hashing
// and JSON exchange ([ReadDataset], [WriteDataset]).
//
// # Model
//
// [NewModel] indexes a snapshot in one linear pass:
//
//   - children by parent (a child is listed under both known parents)
//   - spouse adjacency, excluding divorces where both partners are alive
//   - parents by child, resolved through the marriage with a fallback to the
//     denormalized ids
//
// Missing references never raise errors; they are simply absent from the
// indices. A Model is immutable after construction and is rebuilt for every
// snapshot, so concurrent readers are safe.
//
// The [Lookup] interface is the read capability the kinship resolver depends
// on. [Model] implements it; callers holding records elsewhere can provide
// their own implementation.
package family
