package bnb

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func machineShop() *Problem {
	return &Problem{
		Variables: []Identifier{"p", "l"},
		Profit:    map[Identifier]float64{"p": 100, "l": 150},
		Resources: []Resource{
			{Name: "purchase", Coefficients: map[Identifier]float64{"p": 8000, "l": 4000}, Capacity: 40000},
			{Name: "floor_space", Coefficients: map[Identifier]float64{"p": 15, "l": 30}, Capacity: 200},
		},
	}
}

func TestValidate(t *testing.T) {
	type tc struct {
		Name    string
		Problem *Problem
		Errors  int
	}

	for _, tt := range []tc{
		{
			Name:    "machine shop",
			Problem: machineShop(),
		},
		{
			Name:    "no variables",
			Problem: &Problem{},
			Errors:  1,
		},
		{
			Name:    "duplicate identifier",
			Problem: &Problem{Variables: []Identifier{"a", "a"}},
			Errors:  1,
		},
		{
			Name: "undeclared profit and coefficient",
			Problem: &Problem{
				Variables: []Identifier{"a"},
				Profit:    map[Identifier]float64{"b": 1},
				Resources: []Resource{{Coefficients: map[Identifier]float64{"c": 1}, Capacity: 1}},
			},
			Errors: 2,
		},
		{
			Name: "non finite data",
			Problem: &Problem{
				Variables: []Identifier{"a"},
				Profit:    map[Identifier]float64{"a": math.NaN()},
				Resources: []Resource{{Coefficients: map[Identifier]float64{"a": math.Inf(1)}, Capacity: math.Inf(-1)}},
			},
			Errors: 3,
		},
		{
			Name: "bad operator",
			Problem: &Problem{
				Variables: []Identifier{"a"},
				Resources: []Resource{{Name: "r", Operator: Operator(7), Capacity: 1}},
			},
			Errors: 1,
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			err := tt.Problem.Validate()
			if tt.Errors == 0 {
				assert.NoError(t, err)
				return
			}
			var invalid InvalidProblem
			require.True(t, errors.As(err, &invalid))
			assert.Len(t, invalid, tt.Errors)
		})
	}
}

func TestDuplicateIdentifierIsReported(t *testing.T) {
	err := (&Problem{Variables: []Identifier{"x", "y", "x"}}).Validate()
	var dup DuplicateIdentifier
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, DuplicateIdentifier("x"), dup)
}

func TestValueAndSatisfies(t *testing.T) {
	p := machineShop()

	assert.Equal(t, 1000.0, p.Value(map[Identifier]int64{"p": 1, "l": 6}))
	assert.Equal(t, 0.0, p.Value(nil))

	assert.True(t, p.Satisfies(map[Identifier]int64{"p": 1, "l": 6}, 1e-9))
	assert.True(t, p.Satisfies(map[Identifier]int64{"p": 2, "l": 5}, 1e-9))
	assert.False(t, p.Satisfies(map[Identifier]int64{"p": 2, "l": 6}, 1e-9))
	assert.False(t, p.Satisfies(map[Identifier]int64{"p": -1}, 1e-9))

	p.Resources = append(p.Resources, Resource{Coefficients: map[Identifier]float64{"p": 1}, Operator: GreaterOrEqual, Capacity: 1})
	assert.False(t, p.Satisfies(map[Identifier]int64{"l": 6}, 1e-9))
}

func TestParseOperator(t *testing.T) {
	for in, want := range map[string]Operator{"": LessOrEqual, "<=": LessOrEqual, "≥": GreaterOrEqual, " >= ": GreaterOrEqual} {
		got, err := ParseOperator(in)
		assert.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseOperator("=")
	assert.Error(t, err)
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "l >= 6", Constraint{Variable: "l", Operator: GreaterOrEqual, Bound: 6}.String())
	assert.Equal(t, "floor_space: 30*l + 15*p <= 200", machineShop().Resources[1].String())
	assert.Equal(t, "pruned", Pruned.String())
	assert.Equal(t, "NodeState(42)", NodeState(42).String())
}

func TestNodeStateTerminal(t *testing.T) {
	for s, want := range map[NodeState]bool{
		Created:        false,
		Fractional:     false,
		InfeasibleLeaf: true,
		IntegerLeaf:    true,
		Expanded:       true,
		Pruned:         true,
	} {
		assert.Equal(t, want, s.Terminal(), s.String())
	}
}

func TestNode(t *testing.T) {
	n := Node{Relaxation: Relaxation{Objective: 12, Solution: map[Identifier]float64{"a": 0.9999999, "b": 2.0000001}, Feasible: true}}
	assert.Equal(t, 12.0, n.Bound())
	assert.Equal(t, map[Identifier]int64{"a": 1, "b": 2}, n.Rounded())

	assert.True(t, math.IsInf(Node{}.Bound(), -1))
	assert.False(t, NoIncumbent().Exists())
	assert.True(t, math.IsInf(NoIncumbent().Objective, -1))
}
