package types

// Complexity is a coarse ordinal label summarizing a movement's procedural weight.
type Complexity string

// Complexity tiers, from lightest to heaviest.
const (
	ComplexitySimple  Complexity = "Simples"
	ComplexityMedium  Complexity = "Médio"
	ComplexityComplex Complexity = "Complexo"
)

// Complexities lists every tier in ascending order.
var Complexities = []Complexity{ComplexitySimple, ComplexityMedium, ComplexityComplex}

// Rank returns the position of c in the ordered tier set, or -1 if c is not a known tier.
func (c Complexity) Rank() int {
	for i, tier := range Complexities {
		if tier == c {
			return i
		}
	}
	return -1
}

// Valid reports whether c is one of the known tiers.
func (c Complexity) Valid() bool {
	return c.Rank() >= 0
}

func (c Complexity) String() string {
	return string(c)
}
