package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	errs "github.com/juruladenbam/bam-sub000/pkg/errors"
	"github.com/juruladenbam/bam-sub000/pkg/family"
	"github.com/juruladenbam/bam-sub000/pkg/kinship"
	"github.com/juruladenbam/bam-sub000/pkg/pipeline"
)

// relateCommand creates the relate command for resolving the kinship of two persons.
func (c *CLI) relateCommand() *cobra.Command {
	var (
		pick   bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "relate <a> <b>",
		Short: "Name the relationship of person A to person B",
		Long: `Name the relationship of person A to person B.

The answer reads "A is B's <relationship>": the Indonesian label, the
Javanese term and the form of address (sapaan) are all chosen by A's gender.
With --pick, both persons are chosen interactively instead.`,
		Example: `  silsilah relate 12 40
  silsilah relate --pick --data family.json
  silsilah relate 12 40 --json`,
		Args: func(cmd *cobra.Command, args []string) error {
			if pick {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		ValidArgsFunction: c.completePerson,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRelate(cmd.Context(), cmd.OutOrStdout(), args, pick, asJSON)
		},
	}

	cmd.Flags().BoolVarP(&pick, "pick", "p", false, "choose both persons interactively")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}

func (c *CLI) runRelate(ctx context.Context, w io.Writer, args []string, pick, asJSON bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	snap, err := runner.Snapshot(ctx)
	if err != nil {
		return err
	}

	var a, b family.ID
	if pick {
		if !isTTY() {
			return errs.New(errs.ErrCodeInvalidInput, "--pick needs an interactive terminal")
		}
		var ok bool
		if a, b, ok, err = pickPair(snap.Dataset); err != nil || !ok {
			return err
		}
	} else {
		if a, err = parseID(args[0]); err != nil {
			return err
		}
		if b, err = parseID(args[1]); err != nil {
			return err
		}
	}

	rel, err := runner.RelationshipSnapshot(ctx, snap, a, b)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rel)
	}
	fmt.Fprintln(w, relationshipTable(rel))
	if rel.Kind == kinship.KindUnknown {
		printWarning("No common ancestor recorded for %s and %s", rel.PersonA.FullName, rel.PersonB.FullName)
	}
	return nil
}

// pickPair asks for two persons. ok is false when the user quit.
func pickPair(ds *family.Dataset) (a, b family.ID, ok bool, err error) {
	branches := make(map[family.ID]string, len(ds.Branches))
	for _, br := range ds.Branches {
		branches[br.ID] = br.Name
	}
	pa, err := pickPerson("Select person A", ds.Persons, branches)
	if err != nil || pa == nil {
		return family.NoID, family.NoID, false, err
	}
	pb, err := pickPerson(fmt.Sprintf("%s is the ... of whom?", pa.FullName), ds.Persons, branches)
	if err != nil || pb == nil {
		return family.NoID, family.NoID, false, err
	}
	return pa.ID, pb.ID, true, nil
}

// relationshipTable renders rel as a two-column table.
func relationshipTable(rel *pipeline.Relationship) string {
	rows := [][]string{
		{"A", personCell(rel.PersonA)},
		{"B", personCell(rel.PersonB)},
		{"Relationship", string(rel.Kind)},
		{"Label", rel.Label},
	}
	if rel.LabelJavanese != "" {
		rows = append(rows, []string{"Javanese", rel.LabelJavanese})
	}
	if rel.Sapaan != "" {
		rows = append(rows, []string{"Sapaan", rel.Sapaan})
	}
	if rel.LCAID != nil {
		rows = append(rows, []string{"Common ancestor", fmt.Sprintf("%s (#%d)", rel.LCAName, *rel.LCAID)})
	}
	rows = append(rows,
		[]string{"Distance", strconv.Itoa(rel.DistanceA) + " / " + strconv.Itoa(rel.DistanceB)},
		[]string{"Path", rel.Path.Description},
	)

	return newTable(func(row, col int) lipgloss.Style {
		switch {
		case col == 0:
			return styleKey
		case row == 2 || row == 3:
			return styleKinship
		}
		return StyleValue
	}).Rows(rows...).Render()
}

func personCell(p pipeline.PersonRef) string {
	return fmt.Sprintf("%s (#%d)", p.FullName, p.ID)
}
