package search

import (
	"container/heap"
	"math"

	"github.com/operator-framework/bnb/pkg/bnb"
)

// nodeHeap orders open nodes best bound first, oldest first on ties.
type nodeHeap []bnb.Node

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].Relaxation.Objective != h[j].Relaxation.Objective {
		return h[i].Relaxation.Objective > h[j].Relaxation.Objective
	}
	return h[i].ID < h[j].ID
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(bnb.Node)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = bnb.Node{}
	*h = old[:n-1]
	return item
}

// frontier is the pool of open nodes awaiting expansion.
type frontier struct {
	nodes nodeHeap
}

func newFrontier() *frontier {
	return &frontier{}
}

func (f *frontier) Len() int {
	return f.nodes.Len()
}

func (f *frontier) Push(n bnb.Node) {
	heap.Push(&f.nodes, n)
}

// Pop removes and returns the open node with the highest bound.
func (f *frontier) Pop() (bnb.Node, bool) {
	if f.nodes.Len() == 0 {
		return bnb.Node{}, false
	}
	return heap.Pop(&f.nodes).(bnb.Node), true
}

// Bound returns the highest bound among open nodes, or -Inf when empty.
func (f *frontier) Bound() float64 {
	if f.nodes.Len() == 0 {
		return math.Inf(-1)
	}
	return f.nodes[0].Relaxation.Objective
}
