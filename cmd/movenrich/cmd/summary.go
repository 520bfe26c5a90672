package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/movenrich/internal/logger"
	"github.com/dbsmedya/movenrich/internal/pipeline"
	"github.com/dbsmedya/movenrich/internal/report"
)

var (
	summaryTop     int
	summaryBins    int
	summaryNoColor bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Enrich a movement log and print summary statistics",
	Long: `Summary runs the enrichment and prints, instead of records:
  - Counts per movement type, detail, complexity and activity group
  - Duration statistics per activity group and per movement type
  - A histogram of durations

Filter flags narrow the records before they are summarized.

Example:
  movenrich summary -c movenrich.yaml --top 10
  movenrich summary -t tree.json -i movimentos.csv --type Sentença`,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().IntVar(&summaryTop, "top", 0,
		"Show only the N most frequent labels per table (0 shows all)")
	summaryCmd.Flags().IntVar(&summaryBins, "bins", 10,
		"Number of duration histogram buckets")
	summaryCmd.Flags().BoolVar(&summaryNoColor, "no-color", false,
		"Disable colored headers")

	addFilterFlags(summaryCmd)
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	criteria, err := filterCriteria()
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := setupSignalHandler(func(sig os.Signal) {
		log.Warnw("Received shutdown signal - aborting run", "signal", sig.String())
	})
	defer stop()

	result, _, err := enrich(ctx, cfg, log)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Run cancelled by user")
			return nil
		}
		return err
	}

	records := pipeline.Filter(result.Records, criteria)
	summary := report.Build(records, report.Options{TopN: summaryTop, Bins: summaryBins})
	return summary.Render(cmd.OutOrStdout(), !summaryNoColor)
}
