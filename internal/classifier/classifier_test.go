package classifier

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/movenrich/internal/config"
	"github.com/dbsmedya/movenrich/internal/types"
)

func record(id int64, group, activity, document, complement string) *types.EnrichedRecord {
	return &types.EnrichedRecord{
		MovementRecord: types.MovementRecord{
			ProcessID:       "1",
			MovementID:      id,
			MovementIDValid: true,
			Activity:        activity,
			Document:        types.StringPtr(document),
			Complement:      types.StringPtr(complement),
		},
		ActivityGroup: group,
	}
}

func TestMovementType(t *testing.T) {
	c := New(Options{})

	tests := []struct {
		document string
		want     string
	}{
		{"Sentença de mérito", "Sentença"},
		{"SENTENÇA", "Sentença"},
		{"Despacho inicial", "Despacho"},
		{"decisão interlocutória", "Decisão"},
		{"Ofício ao INSS", "Ofício"},
		{"Despacho com decisão", "Despacho"},
		{"Sentença e despacho", "Sentença"},
		{"Petição", types.OtherMovement},
		{types.NotAvailable, types.OtherMovement},
		{"", types.OtherMovement},
	}

	for _, tt := range tests {
		t.Run(tt.document, func(t *testing.T) {
			got := c.Classify(record(1, "Outros", "x", tt.document, "N/A"))
			assert.Equal(t, tt.want, got.MovementType)
		})
	}
}

func TestMovementType_DecomposedAccent(t *testing.T) {
	c := New(Options{})
	got := c.Classify(record(1, "Outros", "x", "DECISA\u0303O", "N/A"))
	assert.Equal(t, "Decisão", got.MovementType)
}

func TestMovementDetail_Simple(t *testing.T) {
	c := New(Options{DetailMode: DetailSimple})

	tests := []struct {
		complement string
		want       string
	}{
		{"Cumprimento urgente", "Urgente"},
		{"Urgente - prazo de 5 dias", "Urgente"},
		{"Prazo de 15 dias", "Com Prazo"},
		{"Intimação da parte", "Intimação"},
		{"intimação com prazo", "Com Prazo"},
		{"qualquer coisa", "Padrão"},
		{types.NotAvailable, "Padrão"},
	}

	for _, tt := range tests {
		t.Run(tt.complement, func(t *testing.T) {
			got := c.Classify(record(85, "Início do Processo", "Distribuição", "Despacho", tt.complement))
			assert.Equal(t, tt.want, got.MovementDetail)
		})
	}
}

func TestMovementDetail_SimpleIgnoresOverridesAndActivity(t *testing.T) {
	c := New(Options{DetailMode: DetailSimple, Overrides: map[int64]string{85: "Petição Inicial"}})

	got := c.Classify(record(85, "Início do Processo", "Audiência de conciliação", "N/A", "N/A"))
	assert.Equal(t, "Padrão", got.MovementDetail)
}

func TestMovementDetail_Rich(t *testing.T) {
	opts, err := OptionsFromConfig(config.DefaultConfig().Classify)
	require.NoError(t, err)
	opts.DetailMode = DetailRich
	c := New(opts)

	tests := []struct {
		name       string
		id         int64
		activity   string
		document   string
		complement string
		want       string
	}{
		{"override wins over text", 970, "Distribuição", "Sentença", "urgente", "Audiência"},
		{"override initial petition", 85, "x", "N/A", "N/A", "Petição Inicial"},
		{"document before complement", 1, "Distribuição", "Sentença de mérito", "intimação com prazo", "Sentença"},
		{"document dispatch", 1, "Juntada", "DESPACHO", "urgente", "Despacho"},
		{"document decision", 1, "Juntada", "Decisão interlocutória", "N/A", "Decisão"},
		{"office letter falls through", 1, "Juntada", "Ofício", "urgente", "Urgente"},
		{"complement before activity", 1, "Distribuição", "N/A", "com prazo", "Com Prazo"},
		{"activity distribution", 1, "Distribuição por sorteio", "N/A", "N/A", "Distribuição"},
		{"activity hearing", 1, "Audiência realizada", "N/A", "N/A", "Audiência"},
		{"activity document issuance", 1, "Expedição de documento", "N/A", "N/A", "Expedição de Documento"},
		{"default", 1, "Juntada", "N/A", "N/A", "Padrão"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(record(tt.id, "Outros", tt.activity, tt.document, tt.complement))
			assert.Equal(t, tt.want, got.MovementDetail)
		})
	}
}

func TestMovementDetail_RichInvalidIDSkipsOverride(t *testing.T) {
	c := New(Options{DetailMode: DetailRich, Overrides: map[int64]string{0: "Zero"}})

	rec := record(0, "Outros", "Juntada", "N/A", "N/A")
	rec.MovementIDValid = false

	assert.Equal(t, "Padrão", c.Classify(rec).MovementDetail)
}

func TestMovementDetail_RichDecorations(t *testing.T) {
	c := New(Options{
		DetailMode:      DetailRich,
		PhaseSuffix:     true,
		CompositeDetail: true,
	})

	rec := record(1, "Magistrado", "Distribuição", "N/A", "N/A")
	rec.Phase = "Inicial"
	assert.Equal(t, "Magistrado: Distribuição - Fase Inicial", c.Classify(rec).MovementDetail)

	rec.Phase = "contestação"
	assert.Equal(t, "Magistrado: Distribuição - Fase de Contestação", c.Classify(rec).MovementDetail)

	rec.Phase = "recursal"
	assert.Equal(t, "Magistrado: Distribuição", c.Classify(rec).MovementDetail)
}

func TestComplexity(t *testing.T) {
	c := New(Options{})

	tests := []struct {
		group string
		want  types.Complexity
	}{
		{"Início do Processo", types.ComplexitySimple},
		{"  notificação ", types.ComplexitySimple},
		{"Audiência", types.ComplexityMedium},
		{"SENTENÇA", types.ComplexityMedium},
		{"Decisão", types.ComplexityMedium},
		{"Decisão Monocrática", types.ComplexityComplex},
		{"Magistrado", types.ComplexityComplex},
		{types.OtherGroup, types.ComplexityComplex},
		{"", types.ComplexityComplex},
	}

	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			got := c.Classify(record(1, tt.group, "x", "N/A", "N/A"))
			assert.Equal(t, tt.want, got.Complexity)
		})
	}
}

func TestClassify_Totality(t *testing.T) {
	garbage := []string{"", " ", "N/A", "\x00\x01", "日本語", "🙂🙂", "ＳＥＮＴＥＮÇＡ", "%s%d", "\n\t"}

	for _, mode := range []DetailMode{DetailSimple, DetailRich, "unknown"} {
		c := New(Options{DetailMode: mode, PhaseSuffix: true})
		for _, a := range garbage {
			for _, b := range garbage {
				rec := record(-1, a, b, a, b)
				rec.Document = nil
				rec.Phase = b
				got := c.Classify(rec)

				assert.NotEmpty(t, got.MovementType)
				assert.NotEmpty(t, got.MovementDetail)
				assert.True(t, got.Complexity.Valid(), "invalid complexity %q", got.Complexity)
			}
		}
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := New(Options{DetailMode: DetailRich, Overrides: map[int64]string{85: "Petição Inicial"}})
	rec := record(85, "Início do Processo", "Distribuição", "Despacho inicial", "urgente")

	first := c.Classify(rec)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify(rec))
	}
}

func TestNew_CopiesOverrides(t *testing.T) {
	overrides := map[int64]string{85: "Petição Inicial"}
	c := New(Options{DetailMode: DetailRich, Overrides: overrides})
	overrides[85] = "mutated"

	got := c.Classify(record(85, "Outros", "x", "N/A", "N/A"))
	assert.Equal(t, "Petição Inicial", got.MovementDetail)
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := OptionsFromConfig(config.ClassifyConfig{
		Overrides: map[string]string{" 42 ": "Quarenta e dois"},
	})
	require.NoError(t, err)
	assert.Equal(t, DetailSimple, opts.DetailMode)
	assert.Equal(t, "Quarenta e dois", opts.Overrides[42])

	_, err = OptionsFromConfig(config.ClassifyConfig{Overrides: map[string]string{"x": "y"}})
	assert.Error(t, err)
}

func TestClassifyAll_PreservesOrder(t *testing.T) {
	documents := []string{"Sentença", "Despacho", "Decisão", "Ofício", "Outro"}
	want := []string{"Sentença", "Despacho", "Decisão", "Ofício", types.OtherMovement}

	for _, workers := range []int{0, 1, 3, 8, 64} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			recs := make([]types.EnrichedRecord, 503)
			for i := range recs {
				recs[i] = *record(int64(i), "Audiência", "x", documents[i%len(documents)], "N/A")
			}

			require.NoError(t, New(Options{}).ClassifyAll(context.Background(), recs, workers))

			for i := range recs {
				assert.Equal(t, want[i%len(want)], recs[i].MovementType, "record %d", i)
				assert.Equal(t, int64(i), recs[i].MovementID)
				assert.Equal(t, types.ComplexityMedium, recs[i].Complexity)
			}
		})
	}
}

func TestClassifyAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recs := []types.EnrichedRecord{*record(1, "x", "x", "x", "x"), *record(2, "x", "x", "x", "x")}

	assert.ErrorIs(t, New(Options{}).ClassifyAll(ctx, recs, 1), context.Canceled)
	assert.ErrorIs(t, New(Options{}).ClassifyAll(ctx, recs, 4), context.Canceled)
}

func TestClassifyAll_Empty(t *testing.T) {
	assert.NoError(t, New(Options{}).ClassifyAll(context.Background(), nil, 4))
}
