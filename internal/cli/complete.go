package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/juruladenbam/bam-sub000/pkg/family"
	"github.com/juruladenbam/bam-sub000/pkg/store"
)

// completionDataset reads the records for shell completion. Failures yield
// no suggestions rather than an error on the user's prompt.
func (c *CLI) completionDataset(cmd *cobra.Command) *family.Dataset {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return nil
	}
	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil
	}
	defer st.Close()
	ds, err := st.Snapshot(ctx)
	if err != nil {
		return nil
	}
	return ds
}

// completeBranch suggests clan branch ids, described by branch name.
func (c *CLI) completeBranch(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ds := c.completionDataset(cmd)
	if ds == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, b := range ds.Branches {
		if !b.IsExternal() && strings.HasPrefix(b.ID.String(), toComplete) {
			out = append(out, b.ID.String()+"\t"+b.Name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completePerson suggests person ids for the two relate arguments. The
// prefix matches the id or, case-insensitively, the start of the name.
func (c *CLI) completePerson(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) >= 2 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ds := c.completionDataset(cmd)
	if ds == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	prefix := strings.ToLower(toComplete)
	var out []string
	for _, p := range ds.Persons {
		id := p.ID.String()
		if len(args) == 1 && id == args[0] {
			continue
		}
		if strings.HasPrefix(id, toComplete) || strings.HasPrefix(strings.ToLower(p.FullName), prefix) {
			out = append(out, id+"\t"+p.DisplayName())
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
