package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/movenrich/internal/config"
	"github.com/dbsmedya/movenrich/internal/csvio"
	"github.com/dbsmedya/movenrich/internal/logger"
	"github.com/dbsmedya/movenrich/internal/store"
	"github.com/dbsmedya/movenrich/internal/taxonomy"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and inputs without enriching",
	Long: `Validate checks the configuration file and every input a run depends on.

Checks performed:
  - Configuration syntax and required fields
  - Taxonomy parse and leaf id flattening (duplicates are listed)
  - Dataset header and required columns
  - Store connectivity (when the store is enabled)

Example:
  movenrich validate --config movenrich.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	cfg, err := config.LoadOrDefault(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyOverrides(GetCLIOverrides())

	cmd.Printf("\n=== Configuration Validation ===\n")
	cmd.Printf("Config file: %s\n\n", configFile)

	if err := cfg.Validate(); err != nil {
		cmd.Printf("❌ %v\n", err)
		return fmt.Errorf("configuration is invalid")
	}
	cmd.Printf("✅ Configuration valid\n")

	hasErrors := false

	policy := taxonomy.DuplicatePolicy(cfg.Taxonomy.DuplicatePolicy)
	index, err := taxonomy.BuildFromFile(cfg.Taxonomy.Path, taxonomy.WithDuplicatePolicy(policy))
	if err != nil {
		cmd.Printf("❌ Taxonomy: %v\n", err)
		hasErrors = true
	} else {
		cmd.Printf("✅ Taxonomy: %d leaves in %d groups\n", index.Len(), len(index.Groups()))
		for _, d := range index.Duplicates() {
			cmd.Printf("   ⚠ id %d under %q and %q (kept %q)\n", d.ID, d.Kept, d.Dropped, d.Kept)
		}
	}

	ds, err := csvio.ReadFile(cfg.Input.Path, config.DelimiterRune(cfg.Input.Delimiter))
	if err != nil {
		cmd.Printf("❌ Dataset: %v\n", err)
		hasErrors = true
	} else {
		cmd.Printf("✅ Dataset: %d rows (fase column present: %v)\n", len(ds.Records), ds.HasPhase)
	}

	if cfg.Store.Enabled {
		if err := checkStore(cmd.Context(), cfg); err != nil {
			cmd.Printf("❌ Store: %v\n", err)
			hasErrors = true
		} else {
			cmd.Printf("✅ Store: %s reachable\n", cfg.Store.Driver)
		}
	}

	if hasErrors {
		return fmt.Errorf("validation failed")
	}

	cmd.Println("\n=== Validation Complete ===")
	return nil
}

func checkStore(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := store.Open(ctx, cfg.Store, logger.NewNop())
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Ping(ctx)
}
