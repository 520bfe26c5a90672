package preprocess

import (
	"fmt"
	"strings"
	"time"
)

// TimeParser converts the free-form timestamp cells of the dataset. Layouts
// are tried in order; the first that parses wins.
type TimeParser struct {
	layouts  []string
	location *time.Location
}

// NewTimeParser creates a parser. Layouts without a zone offset are read in
// loc; a nil loc means UTC.
func NewTimeParser(layouts []string, loc *time.Location) (*TimeParser, error) {
	if len(layouts) == 0 {
		return nil, fmt.Errorf("at least one timestamp layout is required")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TimeParser{
		layouts:  append([]string(nil), layouts...),
		location: loc,
	}, nil
}

// Parse returns the parsed time, or nil when s is blank or matches no layout.
func (p *TimeParser) Parse(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range p.layouts {
		if t, err := time.ParseInLocation(layout, s, p.location); err == nil {
			return &t
		}
	}
	return nil
}
