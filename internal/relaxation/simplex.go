package relaxation

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/operator-framework/bnb/pkg/bnb"
)

// ErrUnbounded is returned when the relaxation has no finite optimum.
// The search only supports bounded problems, so this is fatal.
var ErrUnbounded = errors.New("relaxation is unbounded")

const (
	// DefaultTolerance is the reduced cost tolerance handed to lp.Simplex
	// when none is given.
	DefaultTolerance = 1e-10
	// polishTolerance is how far below zero a basic value recomputed
	// against the exact right hand side may fall and still be clamped.
	polishTolerance = 1e-7
)

// relaxations lists the loosening applied to the right hand side on
// successive attempts. The last attempt solves the exact program.
var relaxations = []float64{1e-9, 1e-7, 1e-5, 0}

var _ bnb.Oracle = &Simplex{}

// Simplex solves LP relaxations with gonum's simplex implementation.
type Simplex struct {
	tol      float64
	optimize func(c []float64, A mat.Matrix, b []float64, tol float64, initialBasic []int) (float64, []float64, error)
}

// NewSimplex returns a Simplex oracle. tol is handed to lp.Simplex as its
// reduced cost tolerance; zero selects DefaultTolerance.
func NewSimplex(tol float64) *Simplex {
	if tol == 0 {
		tol = DefaultTolerance
	}
	return &Simplex{tol: tol, optimize: lp.Simplex}
}

type outcome struct {
	x   []float64
	err error
}

// Solve maximizes the problem's profit over its continuous relaxation
// restricted by the base resources and the given constraints. The call
// returns as soon as ctx is done; a simplex run still in flight finishes
// in the background and its result is discarded.
func (s *Simplex) Solve(ctx context.Context, p *bnb.Problem, constraints []bnb.Constraint) (bnb.Relaxation, error) {
	if err := ctx.Err(); err != nil {
		return bnb.Relaxation{}, err
	}

	m, err := newColumnMapping(p, constraints)
	if err != nil {
		return bnb.Relaxation{}, err
	}
	if m.infeasible {
		return bnb.Relaxation{Feasible: false}, nil
	}

	// every variable is settled by its bounds
	if len(m.rows) == 0 {
		solution := m.Solution(nil)
		return bnb.Relaxation{Objective: m.Objective(p, solution), Solution: solution, Feasible: true}, nil
	}

	c, A, b := m.StandardForm(p)
	done := make(chan outcome, 1)
	go func() {
		x, err := s.solve(m, c, A, b)
		done <- outcome{x: x, err: err}
	}()

	var o outcome
	select {
	case <-ctx.Done():
		return bnb.Relaxation{}, ctx.Err()
	case o = <-done:
	}
	switch {
	case errors.Is(o.err, lp.ErrInfeasible):
		return bnb.Relaxation{Feasible: false}, nil
	case errors.Is(o.err, lp.ErrUnbounded):
		return bnb.Relaxation{}, ErrUnbounded
	case o.err != nil:
		return bnb.Relaxation{}, fmt.Errorf("simplex failed: %w", o.err)
	}

	solution := m.Solution(o.x)
	return bnb.Relaxation{Objective: m.Objective(p, solution), Solution: solution, Feasible: true}, nil
}

// solve runs lp.Simplex on successively looser copies of the program.
// Loosened programs keep the simplex off degenerate vertices, where it
// can stall or give up. Since loosening only grows the feasible region,
// infeasibility and unboundedness are final on any attempt.
func (s *Simplex) solve(m *columnMapping, c []float64, A *mat.Dense, b []float64) ([]float64, error) {
	var last error
	for _, eps := range relaxations {
		_, x, err := s.optimize(c, A, m.Relax(b, eps), s.tol, nil)
		switch {
		case err == nil:
			if eps == 0 {
				return x, nil
			}
			return polish(A, b, x), nil
		case errors.Is(err, lp.ErrInfeasible), errors.Is(err, lp.ErrUnbounded):
			return nil, err
		}
		last = err
	}
	return nil, last
}

// polish recomputes the basic values of a loosened optimum against the
// exact right hand side b. The basis stays optimal because reduced costs
// do not depend on b. If the basis cannot be recovered, or is not
// feasible for b, the loosened point is returned unchanged.
func polish(A *mat.Dense, b, x []float64) []float64 {
	rows, _ := A.Dims()
	var basis []int
	for j, v := range x {
		if v != 0 {
			basis = append(basis, j)
		}
	}
	if len(basis) != rows {
		return x
	}

	ab := mat.NewDense(rows, rows, nil)
	col := make([]float64, rows)
	for k, j := range basis {
		mat.Col(col, j, A)
		ab.SetCol(k, col)
	}
	var xb mat.VecDense
	if err := xb.SolveVec(ab, mat.NewVecDense(rows, b)); err != nil {
		return x
	}

	scale := 1.0
	for _, v := range b {
		scale = math.Max(scale, math.Abs(v))
	}
	exact := make([]float64, len(x))
	for k, j := range basis {
		v := xb.AtVec(k)
		if v < -polishTolerance*scale {
			return x
		}
		exact[j] = math.Max(v, 0)
	}
	return exact
}
