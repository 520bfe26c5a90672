// Package types contains record types shared by the taxonomy, preprocessing,
// classification and I/O packages.
package types

import "time"

// Sentinel labels used when a source field carries no usable value.
const (
	NotAvailable  = "N/A"             // null document/complement text
	OtherGroup    = "Outros"          // movement id not found in the taxonomy
	OtherMovement = "Outro Movimento" // taxonomy leaf without a named ancestor
)

// MovementRecord is one raw row of the movement log, as read from the source.
// Nullable text columns are pointers; nil means the cell was empty or absent.
type MovementRecord struct {
	ProcessID       string
	MovementID      int64
	MovementIDValid bool   // false when movimentoID was blank or not an integer
	MovementIDRaw   string // source text of movimentoID
	Activity        string
	Document        *string
	Complement      *string
	StartRaw        string
	EndRaw          string
	Phase           string // optional "fase" column
	Line            int    // 1-based line in the source file, 0 when unknown
}

// EnrichedRecord is a movement that survived preprocessing, with derived fields.
// Document and Complement are always set ("N/A" when the source was null).
type EnrichedRecord struct {
	MovementRecord

	Start          *time.Time
	End            *time.Time
	ActivityGroup  string
	Duration       *float64 // seconds; nil when either timestamp was unparsable
	MovementType   string
	MovementDetail string
	Complexity     Complexity
}

// DocumentText returns the normalized document text.
func (r *EnrichedRecord) DocumentText() string {
	return deref(r.Document)
}

// ComplementText returns the normalized complement text.
func (r *EnrichedRecord) ComplementText() string {
	return deref(r.Complement)
}

func deref(s *string) string {
	if s == nil {
		return NotAvailable
	}
	return *s
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
