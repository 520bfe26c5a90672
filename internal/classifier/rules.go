package classifier

import (
	"strings"

	"github.com/dbsmedya/movenrich/internal/types"
)

// Signals are the record fields the rules look at. Text fields are already
// folded with textutil.Fold.
type Signals struct {
	Document   string
	Complement string
	Activity   string
	Group      string
	Phase      string
	MovementID int64
	ValidID    bool
}

// Rule assigns Label when Match returns true.
type Rule struct {
	Label string
	Match func(Signals) bool
}

// RuleTable is an ordered rule list with a terminal default. The first
// matching rule wins.
type RuleTable struct {
	Name    string
	Rules   []Rule
	Default string
}

// Apply returns the label of the first matching rule, or the default.
func (t RuleTable) Apply(s Signals) string {
	label, _ := t.match(s)
	return label
}

// match is Apply that also reports whether a rule (not the default) matched.
func (t RuleTable) match(s Signals) (string, bool) {
	for _, r := range t.Rules {
		if r.Match(s) {
			return r.Label, true
		}
	}
	return t.Default, false
}

func documentContains(substr string) func(Signals) bool {
	return func(s Signals) bool { return strings.Contains(s.Document, substr) }
}

func complementContains(substr string) func(Signals) bool {
	return func(s Signals) bool { return strings.Contains(s.Complement, substr) }
}

func activityContains(substr string) func(Signals) bool {
	return func(s Signals) bool { return strings.Contains(s.Activity, substr) }
}

func groupIs(names ...string) func(Signals) bool {
	return func(s Signals) bool {
		for _, n := range names {
			if s.Group == n {
				return true
			}
		}
		return false
	}
}

func phaseIs(name string) func(Signals) bool {
	return func(s Signals) bool { return s.Phase == name }
}

// Patterns below are written folded so they compare directly against Signals.

// TypeRules derive movement_type from the document text.
var TypeRules = RuleTable{
	Name: "movement_type",
	Rules: []Rule{
		{Label: "Sentença", Match: documentContains("sentença")},
		{Label: "Despacho", Match: documentContains("despacho")},
		{Label: "Decisão", Match: documentContains("decisão")},
		{Label: "Ofício", Match: documentContains("ofício")},
	},
	Default: types.OtherMovement,
}

// RichDocumentRules are consulted by the rich detail mode before DetailRules.
// Unlike TypeRules they stop short of Ofício and have no default.
var RichDocumentRules = RuleTable{
	Name: "rich_document",
	Rules: []Rule{
		{Label: "Sentença", Match: documentContains("sentença")},
		{Label: "Despacho", Match: documentContains("despacho")},
		{Label: "Decisão", Match: documentContains("decisão")},
	},
}

// DetailRules derive movement_detail from the complement text.
var DetailRules = RuleTable{
	Name: "movement_detail",
	Rules: []Rule{
		{Label: "Urgente", Match: complementContains("urgente")},
		{Label: "Com Prazo", Match: complementContains("prazo")},
		{Label: "Intimação", Match: complementContains("intimação")},
	},
	Default: "Padrão",
}

// ActivityRules are consulted by the rich detail mode after DetailRules.
var ActivityRules = RuleTable{
	Name: "activity",
	Rules: []Rule{
		{Label: "Distribuição", Match: activityContains("distribuição")},
		{Label: "Audiência", Match: activityContains("audiência")},
		{Label: "Expedição de Documento", Match: activityContains("expedição de documento")},
	},
	Default: "Padrão",
}

// PhaseRules produce the suffix appended to rich details. The default is no
// suffix.
var PhaseRules = RuleTable{
	Name: "phase",
	Rules: []Rule{
		{Label: " - Fase Inicial", Match: phaseIs("inicial")},
		{Label: " - Fase de Contestação", Match: phaseIs("contestação")},
	},
	Default: "",
}

// ComplexityRules derive the complexity tier from the resolved group.
var ComplexityRules = RuleTable{
	Name: "complexity",
	Rules: []Rule{
		{Label: string(types.ComplexitySimple), Match: groupIs("início do processo", "notificação")},
		{Label: string(types.ComplexityMedium), Match: groupIs("audiência", "sentença", "decisão")},
	},
	Default: string(types.ComplexityComplex),
}
