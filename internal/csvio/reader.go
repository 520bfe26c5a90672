// Package csvio reads the raw movement dataset and writes enriched records
// and event logs as delimited text.
package csvio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dbsmedya/movenrich/internal/types"
)

// Input column names. Matching is case sensitive.
const (
	ColProcessID  = "processoID"
	ColMovementID = "movimentoID"
	ColActivity   = "activity"
	ColDocument   = "documento"
	ColComplement = "complemento"
	ColStart      = "dataInicio"
	ColEnd        = "dataFinal"
	ColPhase      = "fase"
)

// RequiredColumns must all be present in the input header.
var RequiredColumns = []string{
	ColProcessID,
	ColMovementID,
	ColActivity,
	ColDocument,
	ColComplement,
	ColStart,
	ColEnd,
}

// ErrMissingColumns is wrapped by MissingColumnsError.
var ErrMissingColumns = errors.New("missing required columns")

// MissingColumnsError lists the required columns absent from the header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingColumns, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Unwrap() error {
	return ErrMissingColumns
}

// Dataset is the parsed input file.
type Dataset struct {
	Records  []types.MovementRecord
	HasPhase bool // the optional fase column was present
}

// ReadFile opens, fully reads and closes the dataset at path.
func ReadFile(path string, delimiter rune) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Read(bufio.NewReader(f), delimiter)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	return ds, nil
}

// Read parses a dataset with a header row. Empty documento and complemento
// cells become nil. Short rows are padded with empty cells; extra columns are
// ignored.
func Read(r io.Reader, delimiter rune) (*Dataset, error) {
	cr := csv.NewReader(r)
	if delimiter != 0 {
		cr.Comma = delimiter
	}
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dataset is empty: %w", ErrMissingColumns)
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		name = strings.TrimSpace(name)
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	phaseCol, hasPhase := cols[ColPhase]
	ds := &Dataset{Records: []types.MovementRecord{}, HasPhase: hasPhase}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		line, _ := cr.FieldPos(0)

		cell := func(name string) string {
			i := cols[name]
			if i >= len(row) {
				return ""
			}
			return row[i]
		}

		rawID := cell(ColMovementID)
		id, valid := types.ParseMovementID(rawID)

		rec := types.MovementRecord{
			ProcessID:       cell(ColProcessID),
			MovementID:      id,
			MovementIDValid: valid,
			MovementIDRaw:   rawID,
			Activity:        cell(ColActivity),
			Document:        nullable(cell(ColDocument)),
			Complement:      nullable(cell(ColComplement)),
			StartRaw:        cell(ColStart),
			EndRaw:          cell(ColEnd),
			Line:            line,
		}
		if hasPhase && phaseCol < len(row) {
			rec.Phase = row[phaseCol]
		}

		ds.Records = append(ds.Records, rec)
	}

	return ds, nil
}

func nullable(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
