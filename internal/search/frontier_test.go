package search

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/bnb/pkg/bnb"
)

func open(id bnb.NodeID, bound float64) bnb.Node {
	return bnb.Node{ID: id, Relaxation: bnb.Relaxation{Objective: bound, Feasible: true}}
}

func TestFrontierOrder(t *testing.T) {
	f := newFrontier()
	assert.True(t, math.IsInf(f.Bound(), -1))
	_, ok := f.Pop()
	assert.False(t, ok)

	for _, n := range []bnb.Node{open(3, 10), open(1, 12), open(4, 12), open(2, 7), open(5, 10)} {
		f.Push(n)
	}
	assert.Equal(t, 5, f.Len())
	assert.Equal(t, 12.0, f.Bound())

	var ids []bnb.NodeID
	for f.Len() > 0 {
		n, ok := f.Pop()
		require.True(t, ok)
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []bnb.NodeID{1, 4, 3, 5, 2}, ids)
}

func TestFrontierMatchesSortedOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	f := newFrontier()
	var nodes []bnb.Node
	for i := 1; i <= 200; i++ {
		n := open(bnb.NodeID(i), float64(rng.Intn(20)))
		nodes = append(nodes, n)
		f.Push(n)
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Relaxation.Objective > nodes[j].Relaxation.Objective
	})

	for _, want := range nodes {
		got, ok := f.Pop()
		require.True(t, ok)
		assert.Equal(t, want.ID, got.ID)
	}
}
