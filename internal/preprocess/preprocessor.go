// Package preprocess turns raw movement rows into enriched records ready for
// classification: timestamps are parsed, null text is defaulted, groups are
// resolved against the taxonomy, and insignificant, outlier and duplicate
// rows are removed.
package preprocess

import (
	"errors"
	"fmt"
	"time"

	"github.com/dbsmedya/movenrich/internal/config"
	"github.com/dbsmedya/movenrich/internal/logger"
	"github.com/dbsmedya/movenrich/internal/taxonomy"
	"github.com/dbsmedya/movenrich/internal/textutil"
	"github.com/dbsmedya/movenrich/internal/types"
)

var (
	// ErrNilIndex is returned when no taxonomy index is supplied.
	ErrNilIndex = errors.New("taxonomy index is nil")
	// ErrNilRecords is returned when the record sequence itself is absent.
	ErrNilRecords = errors.New("record sequence is nil")
)

// Options controls the preprocessing stages.
type Options struct {
	TimestampLayouts []string
	Location         *time.Location
	ExcludedGroups   []string
	MinDuration      float64 // seconds, exclusive
	MaxDuration      float64 // seconds, exclusive
}

// DefaultOptions returns the defaults of config.DefaultConfig.
func DefaultOptions() Options {
	return Options{
		TimestampLayouts: append([]string(nil), config.DefaultTimestampLayouts...),
		Location:         time.UTC,
		ExcludedGroups:   append([]string(nil), config.DefaultExcludedGroups...),
		MinDuration:      0,
		MaxDuration:      1e7,
	}
}

// OptionsFromConfig builds Options from the input and preprocess sections.
func OptionsFromConfig(in config.InputConfig, pre config.PreprocessConfig) (Options, error) {
	loc := time.UTC
	if in.Location != "" {
		l, err := time.LoadLocation(in.Location)
		if err != nil {
			return Options{}, fmt.Errorf("failed to load location %q: %w", in.Location, err)
		}
		loc = l
	}
	return Options{
		TimestampLayouts: in.TimestampLayouts,
		Location:         loc,
		ExcludedGroups:   pre.ExcludedGroups,
		MinDuration:      pre.MinDurationSeconds,
		MaxDuration:      pre.MaxDurationSeconds,
	}, nil
}

// Stats counts what happened to the rows of one Process call.
type Stats struct {
	Input                int
	InvalidStart         int // dataInicio present but unparsable
	InvalidEnd           int // dataFinal present but unparsable
	InvalidMovementIDs   int
	UnresolvedGroups     int
	DroppedInsignificant int
	DroppedNullDuration  int
	DroppedOutOfRange    int
	DroppedDuplicates    int
	Output               int
}

// Dropped returns the total number of rows removed.
func (s Stats) Dropped() int {
	return s.DroppedInsignificant + s.DroppedNullDuration + s.DroppedOutOfRange + s.DroppedDuplicates
}

// Preprocessor applies the preprocessing stages against one taxonomy index.
// It holds no per-call state and may be reused.
type Preprocessor struct {
	index    *taxonomy.Index
	times    *TimeParser
	excluded map[string]struct{}
	min      float64
	max      float64
	log      *logger.Logger
}

// New creates a Preprocessor. A nil log discards diagnostics.
func New(index *taxonomy.Index, opts Options, log *logger.Logger) (*Preprocessor, error) {
	if index == nil {
		return nil, ErrNilIndex
	}
	if opts.MaxDuration <= opts.MinDuration {
		return nil, fmt.Errorf("max duration %v must be greater than min duration %v", opts.MaxDuration, opts.MinDuration)
	}
	times, err := NewTimeParser(opts.TimestampLayouts, opts.Location)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Preprocessor{
		index:    index,
		times:    times,
		excluded: textutil.FoldSet(opts.ExcludedGroups),
		min:      opts.MinDuration,
		max:      opts.MaxDuration,
		log:      log.WithStage("preprocess"),
	}, nil
}

type dedupKey struct {
	processID string
	activity  string
}

// Process runs the stages in order: timestamp coercion, text defaulting,
// group resolution, insignificance filtering, duration, outlier filtering and
// deduplication. The result keeps input order. Malformed rows never cause an
// error; they degrade to nil or sentinel values and may then be filtered.
func (p *Preprocessor) Process(records []types.MovementRecord) ([]types.EnrichedRecord, Stats, error) {
	if records == nil {
		return nil, Stats{}, ErrNilRecords
	}

	stats := Stats{Input: len(records)}
	out := make([]types.EnrichedRecord, 0, len(records))
	seen := make(map[dedupKey]struct{}, len(records))

	for i := range records {
		rec := types.EnrichedRecord{MovementRecord: records[i]}

		p.coerceTimestamps(&rec, &stats)
		defaultText(&rec)
		p.resolveGroup(&rec, &stats)

		if p.insignificant(rec.ActivityGroup) {
			stats.DroppedInsignificant++
			continue
		}

		rec.Duration = duration(rec.Start, rec.End)
		if rec.Duration == nil {
			stats.DroppedNullDuration++
			continue
		}
		if !p.inRange(*rec.Duration) {
			stats.DroppedOutOfRange++
			continue
		}

		key := dedupKey{processID: rec.ProcessID, activity: rec.Activity}
		if _, dup := seen[key]; dup {
			stats.DroppedDuplicates++
			continue
		}
		seen[key] = struct{}{}

		out = append(out, rec)
	}

	stats.Output = len(out)
	return out, stats, nil
}

func (p *Preprocessor) coerceTimestamps(rec *types.EnrichedRecord, stats *Stats) {
	rec.Start = p.times.Parse(rec.StartRaw)
	if rec.Start == nil && !textutil.IsBlank(rec.StartRaw) {
		stats.InvalidStart++
		p.log.WithRecord(rec.Line, rec.ProcessID).Debugw("unparsable dataInicio", "value", rec.StartRaw)
	}

	rec.End = p.times.Parse(rec.EndRaw)
	if rec.End == nil && !textutil.IsBlank(rec.EndRaw) {
		stats.InvalidEnd++
		p.log.WithRecord(rec.Line, rec.ProcessID).Debugw("unparsable dataFinal", "value", rec.EndRaw)
	}
}

func defaultText(rec *types.EnrichedRecord) {
	if rec.Document == nil || textutil.IsBlank(*rec.Document) {
		rec.Document = types.StringPtr(types.NotAvailable)
	}
	if rec.Complement == nil || textutil.IsBlank(*rec.Complement) {
		rec.Complement = types.StringPtr(types.NotAvailable)
	}
}

func (p *Preprocessor) resolveGroup(rec *types.EnrichedRecord, stats *Stats) {
	if !rec.MovementIDValid {
		stats.InvalidMovementIDs++
		stats.UnresolvedGroups++
		rec.ActivityGroup = types.OtherGroup
		p.log.WithRecord(rec.Line, rec.ProcessID).Debugw("invalid movimentoID", "value", rec.MovementIDRaw)
		return
	}

	group, ok := p.index.Lookup(rec.MovementID)
	if !ok {
		stats.UnresolvedGroups++
		rec.ActivityGroup = types.OtherGroup
		return
	}
	rec.ActivityGroup = group
}

func (p *Preprocessor) insignificant(group string) bool {
	_, ok := p.excluded[textutil.Fold(group)]
	return ok
}

func (p *Preprocessor) inRange(seconds float64) bool {
	return seconds > p.min && seconds < p.max
}

// duration returns end - start in seconds, or nil if either is missing.
// Negative values are kept; the outlier stage removes them.
func duration(start, end *time.Time) *float64 {
	if start == nil || end == nil {
		return nil
	}
	d := end.Sub(*start).Seconds()
	return &d
}
