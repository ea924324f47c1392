package search

import (
	"math"

	"github.com/operator-framework/bnb/pkg/bnb"
)

func fractionalPart(x float64) float64 {
	return x - math.Floor(x)
}

func integral(x, tol float64) bool {
	return math.Abs(x-math.Round(x)) <= tol
}

// isInteger reports whether every variable of the point is integral
// within tol.
func isInteger(order []bnb.Identifier, solution map[bnb.Identifier]float64, tol float64) bool {
	for _, id := range order {
		if !integral(solution[id], tol) {
			return false
		}
	}
	return true
}

// selectBranchingVariable returns the non-integral variable with the
// largest fractional part. Ties go to the variable declared first. ok is
// false when the point is integral.
func selectBranchingVariable(order []bnb.Identifier, solution map[bnb.Identifier]float64, tol float64) (id bnb.Identifier, x float64, ok bool) {
	best := -1.0
	for _, v := range order {
		value := solution[v]
		if integral(value, tol) {
			continue
		}
		// strict comparison keeps the earliest variable on ties
		if f := fractionalPart(value); f > best {
			best, id, x, ok = f, v, value, true
		}
	}
	return id, x, ok
}
