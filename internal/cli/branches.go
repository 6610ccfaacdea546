package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/juruladenbam/bam-sub000/pkg/pipeline"
)

// branchesCommand creates the branches command listing the clan branches.
func (c *CLI) branchesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "branches",
		Short: "List the clan branches and their member counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBranches(cmd.Context(), cmd.OutOrStdout(), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the branches as JSON")

	return cmd
}

func (c *CLI) runBranches(ctx context.Context, w io.Writer, asJSON bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	branches, err := runner.Branches(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(branches)
	}
	if len(branches) == 0 {
		fmt.Fprintln(w, StyleDim.Render("No branches recorded"))
		return nil
	}
	fmt.Fprintln(w, branchTable(branches))
	return nil
}

// branchTable renders branches in their configured order.
func branchTable(branches []pipeline.BranchSummary) string {
	rows := make([][]string, 0, len(branches))
	for _, b := range branches {
		kind := ""
		if b.External {
			kind = "in-laws"
		}
		rows = append(rows, []string{strconv.FormatInt(int64(b.ID), 10), b.Name, strconv.Itoa(b.Order), strconv.Itoa(b.Persons), kind})
	}

	return newTable(func(row, col int) lipgloss.Style {
		switch {
		case branches[row].External:
			return StyleDim
		case col == 1:
			return StyleHighlight
		}
		return lipgloss.NewStyle()
	}, "ID", "Branch", "Order", "Persons", "").Rows(rows...).Render()
}
