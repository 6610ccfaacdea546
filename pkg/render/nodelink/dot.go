package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/juruladenbam/bam-sub000/pkg/family"
	"github.com/juruladenbam/bam-sub000/pkg/render"
	"github.com/juruladenbam/bam-sub000/pkg/treelayout"
)

// pointsPerInch converts layout pixels into Graphviz inches.
const pointsPerInch = 72.0

// Options configures family diagram rendering.
type Options struct {
	// Detailed adds nickname, life span and generation to person labels.
	// When false, only the display name is shown.
	Detailed bool
}

// ToDOT converts a computed layout to Graphviz DOT with every node pinned at
// its layout position. The result renders with neato, which keeps pinned
// positions, through [RenderSVG], [RenderPDF] or [RenderPNG].
//
// Ghost persons are drawn dashed and grey; marriage nodes are small filled
// squares. Edges of inactive but visible marriages are dashed.
func ToDOT(res *treelayout.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true, fontsize=14];\n")
	buf.WriteString("  edge [color=\"#555555\"];\n")
	buf.WriteString("\n")

	for _, n := range res.Nodes {
		attrs := []string{fmtPos(n, res.Height), fmtSize(n)}
		switch data := n.Data.(type) {
		case treelayout.PersonNode:
			attrs = append(attrs, personAttrs(data, opts.Detailed)...)
		case treelayout.MarriageNode:
			attrs = append(attrs, `shape=square`, `label=""`, `style=filled`, `fillcolor="#555555"`)
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range res.Edges {
		attrs := []string{}
		if e.Style.Dashed {
			attrs = append(attrs, "style=dashed")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -- %q;\n", e.Source, e.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// fmtPos pins the node center. Graphviz y grows upwards, so rows are flipped
// against the layout height.
func fmtPos(n treelayout.Node, height float64) string {
	c := n.Center()
	return fmt.Sprintf("pos=\"%.2f,%.2f!\"", c.X, height-c.Y)
}

func fmtSize(n treelayout.Node) string {
	return fmt.Sprintf("width=%.4f, height=%.4f", n.Width/pointsPerInch, n.Height/pointsPerInch)
}

func personAttrs(p treelayout.PersonNode, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(p.Person, detailed))}
	if p.Gender == family.Female {
		attrs = append(attrs, `fillcolor="#fdecef"`)
	} else {
		attrs = append(attrs, `fillcolor="#e8f1fb"`)
	}
	if p.Ghost {
		attrs = append(attrs, `style="rounded,filled,dashed"`, `fillcolor=lightgrey`, `fontcolor="#666666"`)
	}
	return attrs
}

func fmtLabel(p family.Person, detailed bool) string {
	name := p.FullName
	if !detailed {
		return name
	}
	lines := []string{name}
	if p.Nickname != "" {
		lines = append(lines, "("+p.Nickname+")")
	}
	if span := lifeSpan(p); span != "" {
		lines = append(lines, span)
	}
	lines = append(lines, fmt.Sprintf("gen %d", p.Generation))
	return strings.Join(lines, "\n")
}

func lifeSpan(p family.Person) string {
	var birth, death string
	if p.BirthDate != nil {
		birth = strconv.Itoa(p.BirthDate.Year())
	}
	if p.DeathDate != nil {
		death = strconv.Itoa(p.DeathDate.Year())
	}
	switch {
	case birth == "" && death == "":
		return ""
	case death == "" && p.IsAlive:
		return birth
	}
	return birth + " - " + death
}

// RenderSVG renders a DOT graph to SVG using Graphviz's neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion. A scale of 2.0
// doubles the resolution.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
