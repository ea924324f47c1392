package bnb

import (
	"fmt"
	"math"
	"sort"
)

// NodeID identifies a node of the search tree. Ids are assigned in
// creation order starting at 1; zero means "no node".
type NodeID int64

// NodeState is the classification of a node at a point of the search.
type NodeState int

const (
	// Created nodes have not been evaluated yet.
	Created NodeState = iota
	// InfeasibleLeaf nodes have an empty relaxation.
	InfeasibleLeaf
	// IntegerLeaf nodes have an integral relaxation optimum whose rounded
	// point satisfies every resource. They are never branched.
	IntegerLeaf
	// Fractional nodes were admitted to the frontier.
	Fractional
	// Expanded nodes were split into two children.
	Expanded
	// Pruned nodes were discarded because their bound could not beat
	// the incumbent.
	Pruned
)

var nodeStateNames = [...]string{
	Created:        "created",
	InfeasibleLeaf: "infeasible",
	IntegerLeaf:    "integer",
	Fractional:     "fractional",
	Expanded:       "expanded",
	Pruned:         "pruned",
}

func (s NodeState) String() string {
	if s >= 0 && int(s) < len(nodeStateNames) {
		return nodeStateNames[s]
	}
	return fmt.Sprintf("NodeState(%d)", int(s))
}

// Terminal reports whether a node in state s is never looked at again.
func (s NodeState) Terminal() bool {
	return s == InfeasibleLeaf || s == IntegerLeaf || s == Pruned || s == Expanded
}

// Incumbent is the best integer-feasible assignment known at some point
// of the search.
type Incumbent struct {
	Objective  float64
	Assignment map[Identifier]int64
	// Node is the id of the node the assignment was found at.
	Node NodeID
}

// NoIncumbent returns the incumbent in effect before any integer point
// has been found.
func NoIncumbent() Incumbent {
	return Incumbent{Objective: math.Inf(-1)}
}

// Exists reports whether an integer-feasible assignment has been found.
func (i Incumbent) Exists() bool {
	return i.Assignment != nil
}

// Node is one evaluated subproblem of the search tree. Nodes are built
// once and never modified afterwards; in particular Constraints is owned
// by the node and shared with no other node.
type Node struct {
	ID     NodeID
	Parent NodeID
	Depth  int
	// Constraints are the branching constraints on the path from the
	// root, oldest first.
	Constraints []Constraint
	Relaxation  Relaxation
	// Integer is set when every coordinate of the relaxation optimum is
	// integral within tolerance. It implies Relaxation.Feasible.
	Integer bool
	// Incumbent is the incumbent in effect when the node was evaluated.
	Incumbent Incumbent
}

// Bound returns the node's upper bound on any integer point in its
// region, or -Inf when the region is empty.
func (n Node) Bound() float64 {
	if !n.Relaxation.Feasible {
		return math.Inf(-1)
	}
	return n.Relaxation.Objective
}

// Rounded returns the relaxation optimum rounded to the nearest integers.
func (n Node) Rounded() map[Identifier]int64 {
	out := make(map[Identifier]int64, len(n.Relaxation.Solution))
	for id, x := range n.Relaxation.Solution {
		out[id] = int64(math.Round(x))
	}
	return out
}

func sortedIdentifiers[V any](m map[Identifier]V) []Identifier {
	ids := make([]Identifier, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
