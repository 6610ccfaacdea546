package cli

import (
	"github.com/spf13/cobra"

	"github.com/juruladenbam/bam-sub000/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Silsilah computes kinship and draws family trees",
		Long: `Silsilah reads the records of an extended family (persons, marriages and
parent-child links grouped into clan branches), names the relationship between
any two members in Indonesian and Javanese, and lays out the tree of a branch
for rendering as JSON, DOT, SVG, PDF or PNG.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "config file (default: ./silsilah.toml if present)")
	flags.StringVarP(&c.dataPath, "data", "d", "", "family records file, overrides store.path")

	root.AddCommand(c.relateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.branchesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
