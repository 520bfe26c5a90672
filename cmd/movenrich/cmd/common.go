package cmd

import (
	"context"
	"fmt"

	"github.com/dbsmedya/movenrich/internal/config"
	"github.com/dbsmedya/movenrich/internal/csvio"
	"github.com/dbsmedya/movenrich/internal/logger"
	"github.com/dbsmedya/movenrich/internal/pipeline"
	"github.com/dbsmedya/movenrich/internal/taxonomy"
)

// loadConfig reads the config file (or defaults), applies flag overrides
// and validates the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.ApplyOverrides(GetCLIOverrides())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildIndex flattens the configured taxonomy and warns about every
// ambiguous leaf id.
func buildIndex(cfg *config.Config, log *logger.Logger) (*taxonomy.Index, error) {
	policy := taxonomy.DuplicatePolicy(cfg.Taxonomy.DuplicatePolicy)
	index, err := taxonomy.BuildFromFile(cfg.Taxonomy.Path, taxonomy.WithDuplicatePolicy(policy))
	if err != nil {
		return nil, err
	}

	for _, d := range index.Duplicates() {
		log.Warnw("Movement id appears under more than one group",
			"movement_id", d.ID,
			"kept", d.Kept,
			"dropped", d.Dropped,
			"policy", policy,
		)
	}
	log.Infow("Taxonomy loaded",
		"path", cfg.Taxonomy.Path,
		"leaves", index.Len(),
		"groups", len(index.Groups()),
		"duplicates", len(index.Duplicates()),
	)
	return index, nil
}

// enrich runs the whole batch: taxonomy, dataset, pipeline.
func enrich(ctx context.Context, cfg *config.Config, log *logger.Logger) (*pipeline.Result, *csvio.Dataset, error) {
	index, err := buildIndex(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	ds, err := csvio.ReadFile(cfg.Input.Path, config.DelimiterRune(cfg.Input.Delimiter))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	log.Infow("Dataset loaded", "path", cfg.Input.Path, "rows", len(ds.Records), "has_phase", ds.HasPhase)

	p, err := pipeline.New(index, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	result, err := p.Run(ctx, ds.Records)
	if err != nil {
		return nil, nil, err
	}
	return result, ds, nil
}
