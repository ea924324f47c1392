package constraint

import (
	"math"

	"github.com/operator-framework/bnb/pkg/bnb"
)

// AtMost returns a Constraint that will permit only points where the
// variable is no greater than bound.
func AtMost(variable bnb.Identifier, bound float64) bnb.Constraint {
	return bnb.Constraint{Variable: variable, Operator: bnb.LessOrEqual, Bound: bound}
}

// AtLeast returns a Constraint that will permit only points where the
// variable is no smaller than bound.
func AtLeast(variable bnb.Identifier, bound float64) bnb.Constraint {
	return bnb.Constraint{Variable: variable, Operator: bnb.GreaterOrEqual, Bound: bound}
}

// Split returns the pair of constraints that bisect the integer points
// around the fractional value x: variable <= floor(x) and
// variable >= floor(x)+1. Every integer value satisfies exactly one of
// them.
func Split(variable bnb.Identifier, x float64) (down, up bnb.Constraint) {
	f := math.Floor(x)
	return AtMost(variable, f), AtLeast(variable, f+1)
}

// Satisfies reports whether value meets c when assigned to c.Variable.
func Satisfies(c bnb.Constraint, value float64) bool {
	switch c.Operator {
	case bnb.LessOrEqual:
		return value <= c.Bound
	case bnb.GreaterOrEqual:
		return value >= c.Bound
	}
	return false
}

// SatisfiesAll reports whether the integer point meets every constraint.
// Variables missing from point count as zero.
func SatisfiesAll(constraints []bnb.Constraint, point map[bnb.Identifier]int64) bool {
	for _, c := range constraints {
		if !Satisfies(c, float64(point[c.Variable])) {
			return false
		}
	}
	return true
}

// Append returns a new slice holding constraints followed by c. The
// result never shares a backing array with constraints.
func Append(constraints []bnb.Constraint, c bnb.Constraint) []bnb.Constraint {
	out := make([]bnb.Constraint, len(constraints), len(constraints)+1)
	copy(out, constraints)
	return append(out, c)
}
