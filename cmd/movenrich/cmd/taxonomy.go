package cmd

import (
	"fmt"
	"strconv"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/movenrich/internal/config"
	"github.com/dbsmedya/movenrich/internal/taxonomy"
)

var (
	taxonomyList   bool
	taxonomyLookup []int64
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy [tree.json]",
	Short: "Inspect the flattened movement taxonomy",
	Long: `Taxonomy flattens the CNJ movement tree and prints the resulting index:
leaf and group counts, ids that appear under more than one group, and
optionally every leaf with its group.

The tree path comes from the argument, --taxonomy or the config file.

Example:
  movenrich taxonomy cnj-movimentos-tree.json --list
  movenrich taxonomy --lookup 85 --lookup 970`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTaxonomy,
}

func init() {
	taxonomyCmd.Flags().BoolVar(&taxonomyList, "list", false,
		"Print every leaf id with its group")
	taxonomyCmd.Flags().Int64SliceVar(&taxonomyLookup, "lookup", nil,
		"Print the group of these movement ids (repeatable)")

	rootCmd.AddCommand(taxonomyCmd)
}

func runTaxonomy(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyOverrides(GetCLIOverrides())

	path := cfg.Taxonomy.Path
	if len(args) == 1 {
		path = args[0]
	}

	policy := taxonomy.DuplicatePolicy(cfg.Taxonomy.DuplicatePolicy)
	index, err := taxonomy.BuildFromFile(path, taxonomy.WithDuplicatePolicy(policy))
	if err != nil {
		return err
	}

	cmd.Printf("Taxonomy: %s\n", path)
	cmd.Printf("Leaves:     %d\n", index.Len())
	cmd.Printf("Groups:     %d\n", len(index.Groups()))
	cmd.Printf("Duplicates: %d (policy %s)\n", len(index.Duplicates()), policy)
	for _, d := range index.Duplicates() {
		cmd.Printf("   - %d: kept %q, dropped %q\n", d.ID, d.Kept, d.Dropped)
	}

	if len(taxonomyLookup) > 0 {
		cmd.Println()
		for _, id := range taxonomyLookup {
			group, ok := index.Lookup(id)
			if !ok {
				group = "(not found)"
			}
			cmd.Printf("%d -> %s\n", id, group)
		}
	}

	if taxonomyList {
		width := 0
		ids := index.IDs()
		for _, id := range ids {
			width = max(width, runewidth.StringWidth(strconv.FormatInt(id, 10)))
		}
		cmd.Println()
		for _, id := range ids {
			group, _ := index.Lookup(id)
			cmd.Printf("%s  %s\n", runewidth.FillLeft(strconv.FormatInt(id, 10), width), group)
		}
	}

	return nil
}
