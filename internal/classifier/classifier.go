// Package classifier assigns movement type, movement detail and complexity
// to preprocessed records using ordered first-match-wins rule tables.
package classifier

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dbsmedya/movenrich/internal/config"
	"github.com/dbsmedya/movenrich/internal/textutil"
	"github.com/dbsmedya/movenrich/internal/types"
)

// DetailMode selects the movement_detail rule set.
type DetailMode string

const (
	// DetailSimple uses the complement rules only.
	DetailSimple DetailMode = "simple"
	// DetailRich adds id overrides, activity rules and optional phase/group decoration.
	DetailRich DetailMode = "rich"
)

// Options configures a Classifier.
type Options struct {
	DetailMode      DetailMode
	Overrides       map[int64]string // rich mode: movement id -> detail label
	PhaseSuffix     bool             // rich mode: append the process phase
	CompositeDetail bool             // rich mode: prefix the detail with the group
}

// OptionsFromConfig converts the classify config section.
func OptionsFromConfig(cfg config.ClassifyConfig) (Options, error) {
	opts := Options{
		DetailMode:      DetailMode(cfg.DetailMode),
		PhaseSuffix:     cfg.PhaseSuffix,
		CompositeDetail: cfg.CompositeDetail,
		Overrides:       make(map[int64]string, len(cfg.Overrides)),
	}
	if opts.DetailMode == "" {
		opts.DetailMode = DetailSimple
	}
	for key, label := range cfg.Overrides {
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			return Options{}, fmt.Errorf("invalid override movement id %q: %w", key, err)
		}
		opts.Overrides[id] = label
	}
	return opts, nil
}

// Result is the classification of one record.
type Result struct {
	MovementType   string
	MovementDetail string
	Complexity     types.Complexity
}

// Classifier is stateless after construction and safe for concurrent use.
type Classifier struct {
	opts Options
}

// New creates a Classifier. An unknown detail mode falls back to simple.
func New(opts Options) *Classifier {
	if opts.DetailMode != DetailRich {
		opts.DetailMode = DetailSimple
	}
	overrides := make(map[int64]string, len(opts.Overrides))
	for id, label := range opts.Overrides {
		overrides[id] = label
	}
	opts.Overrides = overrides
	return &Classifier{opts: opts}
}

// SignalsOf extracts the folded rule inputs from a record.
func SignalsOf(rec *types.EnrichedRecord) Signals {
	return Signals{
		Document:   textutil.Fold(rec.DocumentText()),
		Complement: textutil.Fold(rec.ComplementText()),
		Activity:   textutil.Fold(rec.Activity),
		Group:      textutil.Fold(rec.ActivityGroup),
		Phase:      textutil.Fold(rec.Phase),
		MovementID: rec.MovementID,
		ValidID:    rec.MovementIDValid,
	}
}

// Classify returns the labels for rec. Every field always has a value.
func (c *Classifier) Classify(rec *types.EnrichedRecord) Result {
	s := SignalsOf(rec)
	return Result{
		MovementType:   TypeRules.Apply(s),
		MovementDetail: c.detail(s, rec.ActivityGroup),
		Complexity:     types.Complexity(ComplexityRules.Apply(s)),
	}
}

func (c *Classifier) detail(s Signals, group string) string {
	if c.opts.DetailMode == DetailSimple {
		return DetailRules.Apply(s)
	}

	detail, ok := c.override(s)
	if !ok {
		detail, ok = RichDocumentRules.match(s)
	}
	if !ok {
		detail, ok = DetailRules.match(s)
	}
	if !ok {
		detail = ActivityRules.Apply(s)
	}

	if c.opts.PhaseSuffix {
		detail += PhaseRules.Apply(s)
	}
	if c.opts.CompositeDetail {
		detail = group + ": " + detail
	}
	return detail
}

func (c *Classifier) override(s Signals) (string, bool) {
	if !s.ValidID {
		return "", false
	}
	label, ok := c.opts.Overrides[s.MovementID]
	return label, ok
}

// Apply classifies rec in place.
func (c *Classifier) Apply(rec *types.EnrichedRecord) {
	res := c.Classify(rec)
	rec.MovementType = res.MovementType
	rec.MovementDetail = res.MovementDetail
	rec.Complexity = res.Complexity
}

// ClassifyAll classifies every record in place using up to workers
// goroutines. Each record is written only by the goroutine that owns its
// index, so the slice keeps its order. workers <= 1 runs sequentially.
func (c *Classifier) ClassifyAll(ctx context.Context, recs []types.EnrichedRecord, workers int) error {
	if workers <= 1 || len(recs) < 2 {
		for i := range recs {
			if err := ctx.Err(); err != nil {
				return err
			}
			c.Apply(&recs[i])
		}
		return nil
	}

	chunk := (len(recs) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(recs); start += chunk {
		part := recs[start:min(start+chunk, len(recs))]
		g.Go(func() error {
			for i := range part {
				if err := gctx.Err(); err != nil {
					return err
				}
				c.Apply(&part[i])
			}
			return nil
		})
	}
	return g.Wait()
}
