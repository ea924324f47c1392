package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/operator-framework/bnb/pkg/bnb"
)

func TestSelectBranchingVariable(t *testing.T) {
	type tc struct {
		Name     string
		Order    []bnb.Identifier
		Solution map[bnb.Identifier]float64
		Expected bnb.Identifier
		Ok       bool
	}

	for _, tt := range []tc{
		{
			Name:     "largest fractional part wins",
			Order:    []bnb.Identifier{"p", "l"},
			Solution: map[bnb.Identifier]float64{"p": 2.222, "l": 5.556},
			Expected: "l",
			Ok:       true,
		},
		{
			Name:     "declaration order breaks ties",
			Order:    []bnb.Identifier{"b", "a", "c"},
			Solution: map[bnb.Identifier]float64{"a": 1.5, "b": 3.5, "c": 0.5},
			Expected: "b",
			Ok:       true,
		},
		{
			Name:     "integral within tolerance is skipped",
			Order:    []bnb.Identifier{"x", "y"},
			Solution: map[bnb.Identifier]float64{"x": 5.9999999, "y": 1.3},
			Expected: "y",
			Ok:       true,
		},
		{
			Name:     "integral point",
			Order:    []bnb.Identifier{"x", "y"},
			Solution: map[bnb.Identifier]float64{"x": 1, "y": 2.0000001},
			Ok:       false,
		},
		{
			Name:     "missing variables count as zero",
			Order:    []bnb.Identifier{"x", "y"},
			Solution: map[bnb.Identifier]float64{"y": 0.25},
			Expected: "y",
			Ok:       true,
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			id, x, ok := selectBranchingVariable(tt.Order, tt.Solution, DefaultTolerance)
			assert.Equal(t, tt.Ok, ok)
			assert.Equal(t, tt.Expected, id)
			if ok {
				assert.Equal(t, tt.Solution[id], x)
			}
			assert.Equal(t, !tt.Ok, isInteger(tt.Order, tt.Solution, DefaultTolerance))
		})
	}
}

func TestFractionalPart(t *testing.T) {
	assert.InDelta(t, 0.25, fractionalPart(3.25), 1e-12)
	assert.InDelta(t, 0.5, fractionalPart(-1.5), 1e-12)
	assert.Equal(t, 0.0, fractionalPart(4))
}
