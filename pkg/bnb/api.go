package bnb

import (
	"context"
	"fmt"
	"strings"
)

// Identifier values uniquely identify particular decision variables
// within a single Problem.
type Identifier string

func (id Identifier) String() string {
	return string(id)
}

// IdentifierFromString returns an Identifier based on a provided
// string.
func IdentifierFromString(s string) Identifier {
	return Identifier(s)
}

// Operator is the comparison used by a linear constraint.
type Operator int

const (
	LessOrEqual Operator = iota
	GreaterOrEqual
)

func (o Operator) String() string {
	switch o {
	case LessOrEqual:
		return "<="
	case GreaterOrEqual:
		return ">="
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// ParseOperator returns the Operator spelled by s. The empty string
// is read as LessOrEqual.
func ParseOperator(s string) (Operator, error) {
	switch strings.TrimSpace(s) {
	case "", "<=", "≤":
		return LessOrEqual, nil
	case ">=", "≥":
		return GreaterOrEqual, nil
	}
	return 0, fmt.Errorf("unknown operator %q", s)
}

// Constraint is a branching constraint: a bound on a single variable
// added to a node's feasible region during the search.
type Constraint struct {
	Variable Identifier
	Operator Operator
	Bound    float64
}

// String implements fmt.Stringer and returns a human-readable message
// representing the receiver.
func (c Constraint) String() string {
	return fmt.Sprintf("%s %s %g", c.Variable, c.Operator, c.Bound)
}

// Relaxation is the outcome of solving the continuous LP relaxation of a
// Problem under a set of branching constraints.
type Relaxation struct {
	// Objective is the optimal value. It is meaningless when Feasible is false.
	Objective float64
	// Solution holds the optimal, possibly fractional, point.
	Solution map[Identifier]float64
	Feasible bool
}

// Oracle solves LP relaxations. Implementations must be deterministic and
// must only report Feasible == false when no non-negative point satisfies
// the base resources and the given constraints together. Any other
// failure is reported as an error.
type Oracle interface {
	Solve(ctx context.Context, problem *Problem, constraints []Constraint) (Relaxation, error)
}

// Infeasible is returned when the problem admits no integer-feasible
// point.
type Infeasible struct {
	// Relaxed is set when the LP relaxation of the whole problem is
	// already empty, as opposed to every integer refinement of it.
	Relaxed bool
}

func (e Infeasible) Error() string {
	if e.Relaxed {
		return "problem is infeasible: no non-negative point satisfies the resource constraints"
	}
	return "problem is infeasible: no integer point satisfies the resource constraints"
}
