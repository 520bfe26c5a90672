// Package pipeline runs raw movement records through preprocessing and
// classification. It is the single entry point used by the CLI.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dbsmedya/movenrich/internal/classifier"
	"github.com/dbsmedya/movenrich/internal/config"
	"github.com/dbsmedya/movenrich/internal/logger"
	"github.com/dbsmedya/movenrich/internal/preprocess"
	"github.com/dbsmedya/movenrich/internal/taxonomy"
	"github.com/dbsmedya/movenrich/internal/types"
)

// Result is the output of one Run.
type Result struct {
	RunID      string
	Records    []types.EnrichedRecord
	Preprocess preprocess.Stats
	Elapsed    time.Duration
}

// Pipeline wires a taxonomy index, a preprocessor and a classifier.
type Pipeline struct {
	index        *taxonomy.Index
	preprocessor *preprocess.Preprocessor
	classifier   *classifier.Classifier
	workers      int
	log          *logger.Logger
}

// New builds a Pipeline from configuration. The index is shared read-only by
// every stage. A nil log discards output.
func New(index *taxonomy.Index, cfg *config.Config, log *logger.Logger) (*Pipeline, error) {
	if index == nil {
		return nil, preprocess.ErrNilIndex
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration is nil")
	}
	if log == nil {
		log = logger.NewNop()
	}

	preOpts, err := preprocess.OptionsFromConfig(cfg.Input, cfg.Preprocess)
	if err != nil {
		return nil, fmt.Errorf("invalid preprocess options: %w", err)
	}
	pre, err := preprocess.New(index, preOpts, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create preprocessor: %w", err)
	}

	clsOpts, err := classifier.OptionsFromConfig(cfg.Classify)
	if err != nil {
		return nil, fmt.Errorf("invalid classify options: %w", err)
	}

	return &Pipeline{
		index:        index,
		preprocessor: pre,
		classifier:   classifier.New(clsOpts),
		workers:      cfg.Processing.Workers,
		log:          log,
	}, nil
}

// Run preprocesses and classifies records. The input slice is not modified.
// Given the same records, index and configuration the output is identical.
func (p *Pipeline) Run(ctx context.Context, records []types.MovementRecord) (*Result, error) {
	runID := uuid.NewString()
	log := p.log.WithRun(runID)
	start := time.Now()

	log.Infow("starting pipeline", "records", len(records), "taxonomy_ids", p.index.Len(), "workers", p.workers)

	enriched, stats, err := p.preprocessor.Process(records)
	if err != nil {
		return nil, fmt.Errorf("preprocess failed: %w", err)
	}
	log.WithStage("preprocess").Infow("preprocess complete",
		"input", stats.Input,
		"insignificant", stats.DroppedInsignificant,
		"null_duration", stats.DroppedNullDuration,
		"out_of_range", stats.DroppedOutOfRange,
		"duplicates", stats.DroppedDuplicates,
		"unresolved_groups", stats.UnresolvedGroups,
		"output", stats.Output,
	)

	if err := p.classifier.ClassifyAll(ctx, enriched, p.workers); err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	elapsed := time.Since(start)
	log.WithStage("classify").Infow("pipeline complete", "records", len(enriched), "elapsed", elapsed)

	return &Result{
		RunID:      runID,
		Records:    enriched,
		Preprocess: stats,
		Elapsed:    elapsed,
	}, nil
}
