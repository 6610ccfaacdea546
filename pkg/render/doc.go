// Package render turns computed family layouts into files.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert SVG to other formats with the external
// rsvg-convert tool from librsvg:
//
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage writes layouts as Graphviz DOT with pinned node
// positions and renders them to SVG in-process.
package render
