// Package pkg provides the libraries behind silsilah, a kinship and family
// tree engine for extended Javanese-Indonesian families.
//
// # Overview
//
// A family is recorded as persons, marriages and parent-child links, grouped
// into clan branches (bani). The pkg directory is organized into three areas:
//
//  1. Core - pure, non-failing computation
//     - [family]: records and the indexed graph model
//     - [kinship]: relationship of one person to another, with labels
//     - [treelayout]: coordinates for the tree of a branch
//  2. Output - [render] and [render/nodelink] for DOT, SVG, PDF and PNG
//  3. Surfaces - [store], [cache], [config], [pipeline], [server], plus the
//     shared [errors], [observability] and [buildinfo] helpers
//
// # Architecture
//
// A request flows through the packages like this:
//
//	Record store (JSON file, SQLite, MongoDB)
//	         ↓
//	    [store] snapshot → [family] model
//	         ↓
//	    [pipeline] branch selection, caching
//	         ↓                     ↓
//	    [treelayout]          [kinship]
//	         ↓                     ↓
//	    [render]              relationship JSON
//	         ↓
//	    JSON / DOT / SVG / PDF / PNG
//
// # Quick Start
//
//	import (
//	    "github.com/juruladenbam/bam-sub000/pkg/family"
//	    "github.com/juruladenbam/bam-sub000/pkg/kinship"
//	    "github.com/juruladenbam/bam-sub000/pkg/treelayout"
//	)
//
//	ds, _ := family.ReadDatasetFile("family.json")
//	m := family.FromDataset(ds, family.Options{})
//
//	// How is person 12 related to person 40?
//	rel := kinship.NewResolver(m).Calculate(12, 40)
//	fmt.Println(rel.Label, rel.Sapaan)
//
//	// Lay out branch 1
//	res := treelayout.Layout(ds.Persons, ds.Links, ds.Marriages, 1)
//
// Most callers go through a [pipeline.Runner] instead, which adds branch
// selection, in-law ghosts and caching on top of the core packages.
//
// [family]: https://pkg.go.dev/github.com/juruladenbam/bam-sub000/pkg/family
// [kinship]: https://pkg.go.dev/github.com/juruladenbam/bam-sub000/pkg/kinship
// [treelayout]: https://pkg.go.dev/github.com/juruladenbam/bam-sub000/pkg/treelayout
// [render]: https://pkg.go.dev/github.com/juruladenbam/bam-sub000/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/juruladenbam/bam-sub000/pkg/render/nodelink
// [store]: https://pkg.go.dev/github.com/juruladenbam/bam-sub000/pkg/store
// [cache]: https://pkg.go.dev/github.com/juruladenbam/bam-sub000/pkg/cache
// [config]: https://pkg.go.dev/github.com/juruladenbam/bam-sub000/pkg/config
// [pipeline]: https://pkg.go.dev/github.com/juruladenbam/bam-sub000/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/juruladenbam/bam-sub000/pkg/pipeline#Runner
// [server]: https://pkg.go.dev/github.com/juruladenbam/bam-sub000/pkg/server
// [errors]: https://pkg.go.dev/github.com/juruladenbam/bam-sub000/pkg/errors
// [observability]: https://pkg.go.dev/github.com/juruladenbam/bam-sub000/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/juruladenbam/bam-sub000/pkg/buildinfo
package pkg
