package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/juruladenbam/bam-sub000/pkg/family"
	"github.com/juruladenbam/bam-sub000/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // base path; the format is appended as extension
	formats  []string // json, dot, svg, pdf, png
	detailed bool     // life span and generation in person labels
	scale    float64  // png scale factor
	refresh  bool     // ignore cached layouts
}

// renderCommand creates the render command for drawing a branch tree.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: pipeline.DefaultPNGScale}

	cmd := &cobra.Command{
		Use:   "render <branch>",
		Short: "Draw the tree of a branch as SVG, PDF, PNG, DOT or JSON",
		Long: `Draw the tree of a branch.

Persons are boxes, marriages small squares joining the two spouses, and
children hang below the marriage of their parents. Spouses from other clan
branches are drawn dashed. PDF and PNG need rsvg-convert on the PATH.`,
		Example: `  silsilah render 1
  silsilah render 1 -f svg,dot,json -o out/harjo
  silsilah render 1 -f png --scale 3 --detailed`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeBranch,
		RunE: func(cmd *cobra.Command, args []string) error {
			branchID, err := parseID(args[0])
			if err != nil {
				return err
			}
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), branchID, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: branch-<id>)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, pdf, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show life span and generation in labels")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached layouts")

	return cmd
}

// runRender lays out the branch and writes one file per format.
func (c *CLI) runRender(ctx context.Context, branchID family.ID, opts renderOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out branch %d...", branchID))
	spinner.Start()

	lr, err := runner.Layout(ctx, pipeline.LayoutOptions{BranchID: branchID, Refresh: opts.refresh})
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.SetMessage(fmt.Sprintf("Drawing %s...", strings.Join(opts.formats, ", ")))
	artifacts, err := runner.Render(ctx, lr, pipeline.RenderOptions{
		Formats:  opts.formats,
		Detailed: opts.detailed,
		PNGScale: opts.scale,
	})
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := opts.output
	if base == "" {
		base = fmt.Sprintf("branch-%d", branchID)
	}
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	paths := outputPaths(base, opts.formats)
	for _, format := range opts.formats {
		if err := os.WriteFile(paths[format], artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[format], err)
		}
	}
	prog.done(fmt.Sprintf("Rendered %d file(s)", len(opts.formats)))

	printSuccess("Render complete")
	for _, format := range opts.formats {
		printFile(paths[format])
	}
	printStats(lr.Layout.PersonCount(), len(lr.Layout.Edges), lr.CacheHit)
	return nil
}

// outputPaths maps each format to its file path. An extension already
// present on base is replaced.
func outputPaths(base string, formats []string) map[string]string {
	if ext := filepath.Ext(base); ext != "" && pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		base = strings.TrimSuffix(base, ext)
	}
	paths := make(map[string]string, len(formats))
	for _, format := range formats {
		paths[format] = base + "." + format
	}
	return paths
}
