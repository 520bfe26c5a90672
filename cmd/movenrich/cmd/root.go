package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/movenrich/internal/config"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile      string
	logLevel     string
	logFormat    string
	taxonomyPath string
	inputPath    string
	detailMode   string
	workers      int
)

var rootCmd = &cobra.Command{
	Use:   "movenrich",
	Short: "Judicial movement enrichment pipeline",
	Long: `Enriches judicial case movement logs with the CNJ movement taxonomy.

Each run:
  - Flattens the CNJ movement tree into a leaf id to group index
  - Cleans the movement log (timestamps, nulls, outliers, duplicates)
  - Classifies every movement by type, detail and complexity
  - Writes enriched CSV or a process-mining event log, optionally to MySQL or SQLite`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "movenrich.yaml",
		"Path to configuration file (defaults are used when it does not exist)")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Input overrides
	rootCmd.PersistentFlags().StringVarP(&taxonomyPath, "taxonomy", "t", "",
		"Override path to the CNJ movement tree JSON")
	rootCmd.PersistentFlags().StringVarP(&inputPath, "input", "i", "",
		"Override path to the movement log CSV")

	// Processing overrides
	rootCmd.PersistentFlags().StringVar(&detailMode, "detail-mode", "",
		"Override movement detail rules (simple, rich)")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0,
		"Override number of classification workers")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() config.Overrides {
	return config.Overrides{
		LogLevel:     logLevel,
		LogFormat:    logFormat,
		TaxonomyPath: taxonomyPath,
		InputPath:    inputPath,
		OutputPath:   runOutput,
		OutputFormat: runFormat,
		DetailMode:   detailMode,
		Workers:      workers,
		StoreEnabled: runStore,
	}
}
