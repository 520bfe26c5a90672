package pipeline

import (
	"sort"

	"github.com/dbsmedya/movenrich/internal/types"
)

// EventLog projects enriched records onto events keyed by dataInicio.
// Records without a start time are skipped. Events are ordered by case id
// and then by time; ties keep record order.
func EventLog(records []types.EnrichedRecord) []types.Event {
	events := make([]types.Event, 0, len(records))
	for _, rec := range records {
		if rec.Start == nil {
			continue
		}
		events = append(events, types.Event{
			CaseID:    rec.ProcessID,
			Activity:  rec.Activity,
			Timestamp: *rec.Start,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].CaseID != events[j].CaseID {
			return events[i].CaseID < events[j].CaseID
		}
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events
}
