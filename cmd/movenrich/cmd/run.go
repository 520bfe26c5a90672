package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/movenrich/internal/config"
	"github.com/dbsmedya/movenrich/internal/csvio"
	"github.com/dbsmedya/movenrich/internal/logger"
	"github.com/dbsmedya/movenrich/internal/pipeline"
	"github.com/dbsmedya/movenrich/internal/store"
	"github.com/dbsmedya/movenrich/internal/types"
)

var (
	runOutput string
	runFormat string
	runStore  bool

	filterTypes        []string
	filterDetails      []string
	filterComplexities []string
	filterGroups       []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Enrich a movement log",
	Long: `Run loads the taxonomy and the movement log, enriches every movement
and writes the result.

The run follows these steps:
  1. Flatten the taxonomy into a leaf id to group index
  2. Preprocess: coerce timestamps, default nulls, resolve groups,
     drop insignificant groups, outlier durations and duplicates
  3. Classify type, detail and complexity
  4. Filter (optional) and write CSV or event log
  5. Store and verify (optional)

Example:
  movenrich run --taxonomy tree.json --input movimentos.csv --output enriched.csv
  movenrich run -c movenrich.yaml --format eventlog --complexity Complexo`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "",
		"Output file (default stdout)")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "",
		"Output format (csv, eventlog)")
	runCmd.Flags().BoolVar(&runStore, "store", false,
		"Also write enriched records to the configured store")

	addFilterFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addFilterFlags(c *cobra.Command) {
	c.Flags().StringSliceVar(&filterTypes, "type", nil,
		"Keep only these movement types (repeatable)")
	c.Flags().StringSliceVar(&filterDetails, "detail", nil,
		"Keep only these movement details (repeatable)")
	c.Flags().StringSliceVar(&filterComplexities, "complexity", nil,
		"Keep only these complexities: Simples, Médio, Complexo (repeatable)")
	c.Flags().StringSliceVar(&filterGroups, "group", nil,
		"Keep only these activity groups (repeatable)")
}

// filterCriteria builds pipeline criteria from the filter flags.
func filterCriteria() (pipeline.Criteria, error) {
	c := pipeline.Criteria{
		MovementTypes:   filterTypes,
		MovementDetails: filterDetails,
		Groups:          filterGroups,
	}
	for _, s := range filterComplexities {
		tier := types.Complexity(s)
		if !tier.Valid() {
			return c, fmt.Errorf("unknown complexity %q (must be one of %v)", s, types.Complexities)
		}
		c.Complexities = append(c.Complexities, tier)
	}
	return c, nil
}

func runRun(cmd *cobra.Command, args []string) error {
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

	result, ds, err := enrich(ctx, cfg, log)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Run cancelled by user")
			return nil
		}
		return err
	}

	records := pipeline.Filter(result.Records, criteria)
	if !criteria.Empty() {
		log.Infow("Filter applied", "before", len(result.Records), "after", len(records))
	}

	if err := writeOutput(cmd, cfg, records, ds.HasPhase); err != nil {
		return err
	}

	if cfg.Store.Enabled {
		if err := storeRecords(ctx, cfg, log, result.RunID, records); err != nil {
			return err
		}
	}

	printRunSummary(cmd.ErrOrStderr(), result, len(records))
	return nil
}

// writeOutput writes records in the configured format to the output path,
// or to the command's stdout when no path is set.
func writeOutput(cmd *cobra.Command, cfg *config.Config, records []types.EnrichedRecord, hasPhase bool) error {
	if cfg.Output.Path == "" {
		return writeRecords(cmd.OutOrStdout(), cfg, records, hasPhase)
	}

	f, err := os.Create(cfg.Output.Path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	return closeOutput(f, writeRecords(f, cfg, records, hasPhase))
}

// closeOutput closes c and reports the close error unless writeErr is
// already set. A failed close can mean buffered rows never reached disk.
func closeOutput(c io.Closer, writeErr error) error {
	if err := c.Close(); err != nil && writeErr == nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return writeErr
}

func writeRecords(w io.Writer, cfg *config.Config, records []types.EnrichedRecord, hasPhase bool) error {
	delim := config.DelimiterRune(cfg.Output.Delimiter)
	var err error
	switch cfg.Output.Format {
	case "eventlog":
		err = csvio.WriteEventLog(w, pipeline.EventLog(records), delim)
	default:
		err = csvio.WriteEnriched(w, records, csvio.WriteOptions{Delimiter: delim, IncludePhase: hasPhase})
	}
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func storeRecords(ctx context.Context, cfg *config.Config, log *logger.Logger, runID string, records []types.EnrichedRecord) error {
	s, err := store.Open(ctx, cfg.Store, log.WithRun(runID))
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}
	if _, err := s.Write(ctx, runID, records); err != nil {
		return fmt.Errorf("failed to store records: %w", err)
	}
	if _, err := s.Verify(ctx, runID, records); err != nil {
		return err
	}
	return nil
}

func printRunSummary(w io.Writer, result *pipeline.Result, written int) {
	st := result.Preprocess
	title := color.New(color.FgCyan, color.OpBold).Sprint
	ok := color.FgGreen.Sprint

	fmt.Fprintf(w, "\n%s\n", title("=== Run Complete ==="))
	fmt.Fprintf(w, "Run ID:           %s\n", result.RunID)
	fmt.Fprintf(w, "Duration:         %s\n", result.Elapsed)
	fmt.Fprintf(w, "Rows read:        %d\n", st.Input)
	fmt.Fprintf(w, "Invalid start:    %d\n", st.InvalidStart)
	fmt.Fprintf(w, "Invalid end:      %d\n", st.InvalidEnd)
	fmt.Fprintf(w, "Unresolved group: %d\n", st.UnresolvedGroups)
	fmt.Fprintf(w, "Dropped:          %d (insignificant %d, no duration %d, out of range %d, duplicate %d)\n",
		st.Dropped(), st.DroppedInsignificant, st.DroppedNullDuration, st.DroppedOutOfRange, st.DroppedDuplicates)
	fmt.Fprintf(w, "Enriched:         %d\n", st.Output)
	fmt.Fprintf(w, "Written:          %s\n", ok(written))
}
