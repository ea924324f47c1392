package bnb

import (
	"fmt"
	"math"
	"strings"
)

// Resource is a linear resource constraint of the base problem:
// sum(Coefficients[v] * v) Operator Capacity.
type Resource struct {
	Name         string
	Coefficients map[Identifier]float64
	Operator     Operator
	Capacity     float64
}

func (r Resource) String() string {
	terms := make([]string, 0, len(r.Coefficients))
	for _, id := range sortedIdentifiers(r.Coefficients) {
		terms = append(terms, fmt.Sprintf("%g*%s", r.Coefficients[id], id))
	}
	lhs := strings.Join(terms, " + ")
	if lhs == "" {
		lhs = "0"
	}
	if r.Name == "" {
		return fmt.Sprintf("%s %s %g", lhs, r.Operator, r.Capacity)
	}
	return fmt.Sprintf("%s: %s %s %g", r.Name, lhs, r.Operator, r.Capacity)
}

// Problem is a maximization MILP over non-negative integer variables. It
// must not be modified once a search has started.
type Problem struct {
	// Variables lists every decision variable in declaration order. The
	// order is used to break ties deterministically.
	Variables []Identifier
	Profit    map[Identifier]float64
	Resources []Resource
}

// DuplicateIdentifier is reported when a variable is declared twice.
type DuplicateIdentifier Identifier

func (e DuplicateIdentifier) Error() string {
	return fmt.Sprintf("duplicate identifier %q in input", Identifier(e))
}

// InvalidProblem collects every problem found by Validate.
type InvalidProblem []error

func (e InvalidProblem) Error() string {
	const msg = "invalid problem"
	if len(e) == 0 {
		return msg
	}
	s := make([]string, len(e))
	for i, err := range e {
		s[i] = err.Error()
	}
	return fmt.Sprintf("%s:\n%s", msg, strings.Join(s, "\n"))
}

// Validate checks that the problem is well formed.
func (p *Problem) Validate() error {
	var errs InvalidProblem
	if len(p.Variables) == 0 {
		errs = append(errs, fmt.Errorf("no variables declared"))
	}
	declared := make(map[Identifier]struct{}, len(p.Variables))
	for _, id := range p.Variables {
		if id == "" {
			errs = append(errs, fmt.Errorf("empty variable identifier"))
			continue
		}
		if _, ok := declared[id]; ok {
			errs = append(errs, DuplicateIdentifier(id))
			continue
		}
		declared[id] = struct{}{}
	}
	for _, id := range sortedIdentifiers(p.Profit) {
		if _, ok := declared[id]; !ok {
			errs = append(errs, fmt.Errorf("profit given for undeclared variable %q", id))
		}
		if !finite(p.Profit[id]) {
			errs = append(errs, fmt.Errorf("profit of %q is not finite", id))
		}
	}
	for i, r := range p.Resources {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		if r.Operator != LessOrEqual && r.Operator != GreaterOrEqual {
			errs = append(errs, fmt.Errorf("resource %s: unsupported operator %s", name, r.Operator))
		}
		if !finite(r.Capacity) {
			errs = append(errs, fmt.Errorf("resource %s: capacity is not finite", name))
		}
		for _, id := range sortedIdentifiers(r.Coefficients) {
			if _, ok := declared[id]; !ok {
				errs = append(errs, fmt.Errorf("resource %s: coefficient given for undeclared variable %q", name, id))
			}
			if !finite(r.Coefficients[id]) {
				errs = append(errs, fmt.Errorf("resource %s: coefficient of %q is not finite", name, id))
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Declares reports whether id is one of the problem's variables.
func (p *Problem) Declares(id Identifier) bool {
	for _, v := range p.Variables {
		if v == id {
			return true
		}
	}
	return false
}

// Value returns the objective value of an integer assignment. Missing
// variables count as zero.
func (p *Problem) Value(assignment map[Identifier]int64) float64 {
	var total float64
	for _, id := range p.Variables {
		total += p.Profit[id] * float64(assignment[id])
	}
	return total
}

// Satisfies reports whether the integer assignment is non-negative and
// meets every resource constraint within tol.
func (p *Problem) Satisfies(assignment map[Identifier]int64, tol float64) bool {
	for _, id := range p.Variables {
		if assignment[id] < 0 {
			return false
		}
	}
	for _, r := range p.Resources {
		var lhs float64
		for id, a := range r.Coefficients {
			lhs += a * float64(assignment[id])
		}
		switch r.Operator {
		case LessOrEqual:
			if lhs > r.Capacity+tol {
				return false
			}
		case GreaterOrEqual:
			if lhs < r.Capacity-tol {
				return false
			}
		}
	}
	return true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
