package relaxation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/operator-framework/bnb/pkg/bnb"
)

// rowTolerance is the relative slack allowed when a resource row is
// checked directly because every variable in it is already settled.
const rowTolerance = 1e-9

// UnknownVariable is reported for a branching constraint on a variable
// the problem does not declare.
type UnknownVariable bnb.Identifier

func (e UnknownVariable) Error() string {
	return fmt.Sprintf("constraint on undeclared variable %q", bnb.Identifier(e))
}

// row is one inequality sum(coefficients * x) operator rhs, with
// coefficients indexed by column.
type row struct {
	coefficients map[int]float64
	operator     bnb.Operator
	rhs          float64
}

// interval is the range a variable is confined to by a node's branching
// constraints.
type interval struct {
	lo, hi float64
}

// columnMapping performs translation between problem variables and the
// columns of the standard form program
//
//	minimize  c^T x'
//	s.t.      A x' = b, x' >= 0
//
// Branching constraints are folded into one interval [lo, hi] per
// variable and every column is shifted by its lower bound, x = lo + x'.
// Only a finite upper bound costs a row. Every inequality gets its own
// slack (<=) or surplus (>=) column following the decision columns.
type columnMapping struct {
	inorder []bnb.Identifier
	columns map[bnb.Identifier]int
	offset  []float64
	width   []float64
	// settled variables need no column: their interval is a single
	// point, or they appear in no row and sit at whichever end of their
	// interval their profit prefers.
	settled map[bnb.Identifier]float64
	rows    []row
	// infeasible is set when the intervals or the settled rows already
	// rule out every point.
	infeasible bool
}

func newColumnMapping(p *bnb.Problem, constraints []bnb.Constraint) (*columnMapping, error) {
	intervals := make(map[bnb.Identifier]interval, len(p.Variables))
	for _, id := range p.Variables {
		intervals[id] = interval{lo: 0, hi: math.Inf(1)}
	}
	for _, c := range constraints {
		iv, ok := intervals[c.Variable]
		if !ok {
			return nil, UnknownVariable(c.Variable)
		}
		switch c.Operator {
		case bnb.LessOrEqual:
			iv.hi = math.Min(iv.hi, c.Bound)
		case bnb.GreaterOrEqual:
			iv.lo = math.Max(iv.lo, c.Bound)
		default:
			return nil, fmt.Errorf("constraint %s: unsupported operator", c)
		}
		intervals[c.Variable] = iv
	}

	inRow := make(map[bnb.Identifier]bool, len(p.Variables))
	for _, r := range p.Resources {
		for id, a := range r.Coefficients {
			if a != 0 {
				inRow[id] = true
			}
		}
	}

	m := columnMapping{
		columns: make(map[bnb.Identifier]int, len(p.Variables)),
		settled: make(map[bnb.Identifier]float64),
	}
	for _, id := range p.Variables {
		iv := intervals[id]
		switch {
		case iv.lo > iv.hi:
			m.infeasible = true
			return &m, nil
		case iv.lo == iv.hi:
			m.settled[id] = iv.lo
		case !inRow[id] && p.Profit[id] > 0:
			if math.IsInf(iv.hi, 1) {
				return nil, fmt.Errorf("%w: variable %q is unconstrained with positive profit", ErrUnbounded, id)
			}
			m.settled[id] = iv.hi
		case !inRow[id]:
			m.settled[id] = iv.lo
		default:
			m.columns[id] = len(m.inorder)
			m.inorder = append(m.inorder, id)
			m.offset = append(m.offset, iv.lo)
			m.width = append(m.width, iv.hi-iv.lo)
		}
	}

	for _, r := range p.Resources {
		coefficients := make(map[int]float64, len(r.Coefficients))
		rhs := r.Capacity
		for id, a := range r.Coefficients {
			if a == 0 {
				continue
			}
			if j, ok := m.columns[id]; ok {
				coefficients[j] = a
				rhs -= a * m.offset[j]
				continue
			}
			rhs -= a * m.settled[id]
		}
		if len(coefficients) == 0 {
			if !holds(r.Operator, rhs, rowTolerance*(1+math.Abs(r.Capacity))) {
				m.infeasible = true
				return &m, nil
			}
			continue
		}
		m.rows = append(m.rows, row{coefficients: coefficients, operator: r.Operator, rhs: rhs})
	}
	for j, w := range m.width {
		if math.IsInf(w, 1) {
			continue
		}
		m.rows = append(m.rows, row{
			coefficients: map[int]float64{j: 1},
			operator:     bnb.LessOrEqual,
			rhs:          w,
		})
	}
	return &m, nil
}

// holds reports whether 0 operator rhs is satisfied within tol.
func holds(op bnb.Operator, rhs, tol float64) bool {
	if op == bnb.GreaterOrEqual {
		return rhs <= tol
	}
	return rhs >= -tol
}

// StandardForm returns the objective, constraint matrix and right hand
// side of the minimization equivalent to maximizing the problem's
// profit over the shifted columns.
func (m *columnMapping) StandardForm(p *bnb.Problem) ([]float64, *mat.Dense, []float64) {
	nDecision := len(m.inorder)
	nRows := len(m.rows)
	nCols := nDecision + nRows

	c := make([]float64, nCols)
	for j, id := range m.inorder {
		c[j] = -p.Profit[id]
	}

	A := mat.NewDense(nRows, nCols, nil)
	b := make([]float64, nRows)
	for i, r := range m.rows {
		for j, a := range r.coefficients {
			A.Set(i, j, a)
		}
		switch r.operator {
		case bnb.LessOrEqual:
			A.Set(i, nDecision+i, 1)
		case bnb.GreaterOrEqual:
			A.Set(i, nDecision+i, -1)
		}
		b[i] = r.rhs
	}
	return c, A, b
}

// Relax returns b with every row loosened by a distinct amount of order
// eps, so that no vertex of the loosened program lies on more
// boundaries than it has columns. Loosening only ever grows the
// feasible region.
func (m *columnMapping) Relax(b []float64, eps float64) []float64 {
	out := make([]float64, len(b))
	for i, v := range b {
		// the golden ratio keeps the weights of neighbouring rows apart
		_, frac := math.Modf(float64(i) * math.Phi)
		shift := eps * (1 + math.Abs(v)) * (1 + frac)
		if m.rows[i].operator == bnb.GreaterOrEqual {
			shift = -shift
		}
		out[i] = v + shift
	}
	return out
}

// Solution maps a standard form point back onto the problem variables.
func (m *columnMapping) Solution(x []float64) map[bnb.Identifier]float64 {
	out := make(map[bnb.Identifier]float64, len(m.inorder)+len(m.settled))
	for j, id := range m.inorder {
		v := x[j]
		if v <= 0 {
			v = 0
		}
		if v > m.width[j] {
			v = m.width[j]
		}
		out[id] = m.offset[j] + v
	}
	for id, v := range m.settled {
		out[id] = v
	}
	return out
}

// Objective evaluates the problem objective at the mapped point.
func (m *columnMapping) Objective(p *bnb.Problem, solution map[bnb.Identifier]float64) float64 {
	var z float64
	for _, id := range p.Variables {
		z += p.Profit[id] * solution[id]
	}
	return z
}
