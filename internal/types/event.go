package types

import "time"

// Event is the (case, activity, timestamp) triple consumed by process
// discovery tools.
type Event struct {
	CaseID    string
	Activity  string
	Timestamp time.Time
}
