package pipeline

import (
	"github.com/dbsmedya/movenrich/internal/types"
)

// Criteria selects enriched records by label. Each non-empty list is a
// multi-select: a record must match one of its values. Empty lists do not
// constrain. Values are compared exactly.
type Criteria struct {
	MovementTypes   []string
	MovementDetails []string
	Complexities    []types.Complexity
	Groups          []string
}

// Empty reports whether the criteria select every record.
func (c Criteria) Empty() bool {
	return len(c.MovementTypes) == 0 && len(c.MovementDetails) == 0 &&
		len(c.Complexities) == 0 && len(c.Groups) == 0
}

// Filter returns the records matching c, in their original order.
func Filter(records []types.EnrichedRecord, c Criteria) []types.EnrichedRecord {
	if c.Empty() {
		return append([]types.EnrichedRecord(nil), records...)
	}

	typeSet := set(c.MovementTypes)
	detailSet := set(c.MovementDetails)
	groupSet := set(c.Groups)
	complexitySet := make(map[types.Complexity]struct{}, len(c.Complexities))
	for _, cx := range c.Complexities {
		complexitySet[cx] = struct{}{}
	}

	var out []types.EnrichedRecord
	for _, rec := range records {
		if !allowed(typeSet, rec.MovementType) ||
			!allowed(detailSet, rec.MovementDetail) ||
			!allowed(groupSet, rec.ActivityGroup) {
			continue
		}
		if len(complexitySet) > 0 {
			if _, ok := complexitySet[rec.Complexity]; !ok {
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}

func set(values []string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

func allowed(s map[string]struct{}, v string) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[v]
	return ok
}
