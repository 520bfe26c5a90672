package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dbsmedya/movenrich/internal/types"
)

// Derived column names appended to the input columns.
const (
	ColActivityGroup  = "activity_group"
	ColDuration       = "duration_calculated"
	ColMovementType   = "movement_type"
	ColMovementDetail = "movement_detail"
	ColComplexity     = "complexity"
)

// Event log column names, as expected by pm4py style tooling.
const (
	ColCaseID    = "case:concept:name"
	ColEventName = "concept:name"
	ColTimestamp = "time:timestamp"
)

// WriteOptions controls enriched output.
type WriteOptions struct {
	Delimiter    rune
	IncludePhase bool
}

// EnrichedHeader returns the output header for the given options.
func EnrichedHeader(opts WriteOptions) []string {
	header := append([]string(nil), RequiredColumns...)
	if opts.IncludePhase {
		header = append(header, ColPhase)
	}
	return append(header, ColActivityGroup, ColDuration, ColMovementType, ColMovementDetail, ColComplexity)
}

// WriteEnriched writes a header and one row per record. Input columns keep
// their source text; a null duration is an empty cell.
func WriteEnriched(w io.Writer, records []types.EnrichedRecord, opts WriteOptions) error {
	cw := newWriter(w, opts.Delimiter)

	if err := cw.Write(EnrichedHeader(opts)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range records {
		rec := &records[i]
		row := []string{
			rec.ProcessID,
			movementIDText(&rec.MovementRecord),
			rec.Activity,
			rec.DocumentText(),
			rec.ComplementText(),
			rec.StartRaw,
			rec.EndRaw,
		}
		if opts.IncludePhase {
			row = append(row, rec.Phase)
		}
		row = append(row,
			rec.ActivityGroup,
			types.FormatSeconds(rec.Duration),
			rec.MovementType,
			rec.MovementDetail,
			rec.Complexity.String(),
		)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteEventLog writes case id, activity and RFC3339 timestamp columns.
func WriteEventLog(w io.Writer, events []types.Event, delimiter rune) error {
	cw := newWriter(w, delimiter)

	if err := cw.Write([]string{ColCaseID, ColEventName, ColTimestamp}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, ev := range events {
		if err := cw.Write([]string{ev.CaseID, ev.Activity, ev.Timestamp.Format(time.RFC3339)}); err != nil {
			return fmt.Errorf("failed to write event %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func newWriter(w io.Writer, delimiter rune) *csv.Writer {
	cw := csv.NewWriter(w)
	if delimiter != 0 {
		cw.Comma = delimiter
	}
	return cw
}

func movementIDText(rec *types.MovementRecord) string {
	if rec.MovementIDRaw != "" || !rec.MovementIDValid {
		return rec.MovementIDRaw
	}
	return strconv.FormatInt(rec.MovementID, 10)
}
