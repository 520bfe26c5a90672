package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dbsmedya/movenrich/internal/types"
)

func labelled(activity, movementType, detail, group string, cx types.Complexity) types.EnrichedRecord {
	return types.EnrichedRecord{
		MovementRecord: types.MovementRecord{Activity: activity},
		MovementType:   movementType,
		MovementDetail: detail,
		ActivityGroup:  group,
		Complexity:     cx,
	}
}

func activities(recs []types.EnrichedRecord) []string {
	var out []string
	for _, r := range recs {
		out = append(out, r.Activity)
	}
	return out
}

func TestFilter(t *testing.T) {
	records := []types.EnrichedRecord{
		labelled("a", "Despacho", "Urgente", "Audiência", types.ComplexityMedium),
		labelled("b", "Sentença", "Padrão", "Magistrado", types.ComplexityComplex),
		labelled("c", "Despacho", "Padrão", "Início do Processo", types.ComplexitySimple),
		labelled("d", "Ofício", "Com Prazo", "Audiência", types.ComplexityMedium),
	}

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"empty selects all", Criteria{}, []string{"a", "b", "c", "d"}},
		{"single type", Criteria{MovementTypes: []string{"Despacho"}}, []string{"a", "c"}},
		{"multi select", Criteria{MovementTypes: []string{"Ofício", "Sentença"}}, []string{"b", "d"}},
		{"detail", Criteria{MovementDetails: []string{"Padrão"}}, []string{"b", "c"}},
		{"complexity", Criteria{Complexities: []types.Complexity{types.ComplexityMedium}}, []string{"a", "d"}},
		{"group", Criteria{Groups: []string{"Magistrado"}}, []string{"b"}},
		{
			"combined",
			Criteria{MovementTypes: []string{"Despacho"}, Complexities: []types.Complexity{types.ComplexitySimple}},
			[]string{"c"},
		},
		{"no match", Criteria{MovementDetails: []string{"Inexistente"}}, nil},
		{"exact comparison", Criteria{MovementTypes: []string{"despacho"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, activities(Filter(records, tt.criteria)))
		})
	}
}

func TestFilter_ReturnsCopy(t *testing.T) {
	records := []types.EnrichedRecord{labelled("a", "x", "y", "z", types.ComplexitySimple)}

	out := Filter(records, Criteria{})
	out[0].Activity = "changed"

	assert.Equal(t, "a", records[0].Activity)
}

func TestCriteriaEmpty(t *testing.T) {
	assert.True(t, Criteria{}.Empty())
	assert.False(t, Criteria{Groups: []string{"x"}}.Empty())
}
