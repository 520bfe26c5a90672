package types

import (
	"math"
	"strconv"
	"strings"
)

// ParseMovementID converts the movimentoID cell to an integer.
// Integral floats ("85.0") are accepted because exporters that pass through a
// float column emit them that way. The second return value is false for blank
// or non-integral input.
func ParseMovementID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// FormatSeconds renders a duration in seconds with the shortest exact
// representation, or "" for nil.
func FormatSeconds(d *float64) string {
	if d == nil {
		return ""
	}
	return strconv.FormatFloat(*d, 'f', -1, 64)
}
