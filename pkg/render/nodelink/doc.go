// Package nodelink renders computed family layouts as node-link diagrams.
//
// # Overview
//
// The tree layout engine already fixes every coordinate, so this package
// does not ask Graphviz to lay anything out. [ToDOT] writes each node with a
// pinned pos attribute and neato draws nodes and edges where the layout put
// them.
//
// # Usage
//
//	dot := nodelink.ToDOT(res, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)
//
// # DOT Format
//
// Layout y coordinates grow downwards and Graphviz y coordinates grow
// upwards, so rows are flipped against the layout height. Sizes are given in
// inches at 72 points per inch with fixedsize=true.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
