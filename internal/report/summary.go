// Package report summarizes enriched records: label counts, duration
// statistics and a duration histogram, rendered as aligned terminal tables.
package report

import (
	"math"
	"sort"

	"github.com/elliotchance/orderedmap/v2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/dbsmedya/movenrich/internal/types"
)

// Count is the number of records carrying one label.
type Count struct {
	Label   string
	Count   int
	Percent float64
}

// DurationStats describes the durations (seconds) of one label.
type DurationStats struct {
	Label  string
	Count  int
	Mean   float64
	Median float64
	P90    float64
	StdDev float64 // 0 when Count < 2
	Min    float64
	Max    float64
}

// Bin is one histogram bucket covering [Lower, Upper).
type Bin struct {
	Lower float64
	Upper float64
	Count int
}

// Options controls Build.
type Options struct {
	TopN int // limit label counts per table; 0 keeps all
	Bins int // histogram buckets; 0 means 10
}

// Summary is the aggregate view of a set of enriched records.
type Summary struct {
	Records          int
	Processes        int
	MovementTypes    []Count
	MovementDetails  []Count
	Complexities     []Count
	Groups           []Count
	DurationsByGroup []DurationStats
	DurationsByType  []DurationStats
	Histogram        []Bin
}

// Build aggregates records. Label counts are sorted by descending count with
// ties in order of first appearance; complexities follow tier order.
func Build(records []types.EnrichedRecord, opts Options) *Summary {
	if opts.Bins <= 0 {
		opts.Bins = 10
	}

	movementTypes := orderedmap.NewOrderedMap[string, int]()
	details := orderedmap.NewOrderedMap[string, int]()
	groups := orderedmap.NewOrderedMap[string, int]()
	complexities := orderedmap.NewOrderedMap[string, int]()
	for _, cx := range types.Complexities {
		complexities.Set(cx.String(), 0)
	}
	byGroup := orderedmap.NewOrderedMap[string, []float64]()
	byType := orderedmap.NewOrderedMap[string, []float64]()
	processes := make(map[string]struct{})
	var all []float64

	for i := range records {
		rec := &records[i]
		processes[rec.ProcessID] = struct{}{}
		increment(movementTypes, rec.MovementType)
		increment(details, rec.MovementDetail)
		increment(groups, rec.ActivityGroup)
		increment(complexities, rec.Complexity.String())

		if rec.Duration != nil {
			d := *rec.Duration
			all = append(all, d)
			byGroup.Set(rec.ActivityGroup, append(byGroup.GetOrDefault(rec.ActivityGroup, nil), d))
			byType.Set(rec.MovementType, append(byType.GetOrDefault(rec.MovementType, nil), d))
		}
	}

	total := len(records)
	return &Summary{
		Records:          total,
		Processes:        len(processes),
		MovementTypes:    counts(movementTypes, total, opts.TopN, true),
		MovementDetails:  counts(details, total, opts.TopN, true),
		Complexities:     counts(complexities, total, 0, false),
		Groups:           counts(groups, total, opts.TopN, true),
		DurationsByGroup: durations(byGroup),
		DurationsByType:  durations(byType),
		Histogram:        histogram(all, opts.Bins),
	}
}

func increment(m *orderedmap.OrderedMap[string, int], key string) {
	m.Set(key, m.GetOrDefault(key, 0)+1)
}

func counts(m *orderedmap.OrderedMap[string, int], total, topN int, byCount bool) []Count {
	out := make([]Count, 0, m.Len())
	for el := m.Front(); el != nil; el = el.Next() {
		c := Count{Label: el.Key, Count: el.Value}
		if total > 0 {
			c.Percent = float64(el.Value) / float64(total) * 100
		}
		out = append(out, c)
	}
	if byCount {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	}
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

func durations(m *orderedmap.OrderedMap[string, []float64]) []DurationStats {
	out := make([]DurationStats, 0, m.Len())
	for el := m.Front(); el != nil; el = el.Next() {
		out = append(out, describe(el.Key, el.Value))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// describe computes the statistics of one non-empty sample.
func describe(label string, values []float64) DurationStats {
	x := append([]float64(nil), values...)
	sort.Float64s(x)

	ds := DurationStats{
		Label:  label,
		Count:  len(x),
		Median: stat.Quantile(0.5, stat.Empirical, x, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, x, nil),
		Min:    x[0],
		Max:    x[len(x)-1],
	}
	if len(x) > 1 {
		ds.Mean, ds.StdDev = stat.MeanStdDev(x, nil)
	} else {
		ds.Mean = x[0]
	}
	return ds
}

// histogram buckets values into n equal-width bins over [min, max].
func histogram(values []float64, n int) []Bin {
	if len(values) == 0 {
		return nil
	}
	x := append([]float64(nil), values...)
	sort.Float64s(x)

	lo, hi := x[0], x[len(x)-1]
	if lo == hi {
		n = 1
	}
	dividers := floats.Span(make([]float64, n+1), lo, hi)
	// Histogram bins are half open; widen the last edge so hi is counted.
	dividers[n] = math.Nextafter(hi, math.Inf(1))

	raw := stat.Histogram(nil, dividers, x, nil)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{Lower: dividers[i], Upper: dividers[i+1], Count: int(raw[i])}
	}
	return bins
}
