package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/juruladenbam/bam-sub000/pkg/pipeline"
)

// layoutCommand creates the layout command for computing branch tree layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "layout <branch>",
		Short: "Compute the tree layout of a branch",
		Long: `Compute the tree layout of a branch.

The output is the layout document served by the API: positioned person and
marriage nodes plus the edges between them. Use '-o -' to write it to stdout.

Results are cached per dataset snapshot, so unchanged records are not laid
out twice.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeBranch,
		RunE: func(cmd *cobra.Command, args []string) error {
			branchID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), pipeline.LayoutOptions{BranchID: branchID, Refresh: refresh}, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: branch-<id>.layout.json)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached layouts")

	return cmd
}

// runLayout computes the layout and writes it to output.
func (c *CLI) runLayout(ctx context.Context, stdout io.Writer, opts pipeline.LayoutOptions, output string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out branch %d...", opts.BranchID))
	spinner.Start()

	lr, err := runner.Layout(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	data, err := lr.Layout.Encode()
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if output == "-" {
		_, err := stdout.Write(append(data, '\n'))
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = fmt.Sprintf("branch-%d.layout.json", opts.BranchID)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(lr.Layout.PersonCount(), len(lr.Layout.Edges), lr.CacheHit)
	printNewline()
	printNextStep("Render", fmt.Sprintf("%s render %d -f svg", appName, opts.BranchID))

	return nil
}
