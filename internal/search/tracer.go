package search

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/go-logr/logr"

	"github.com/operator-framework/bnb/pkg/bnb"
)

type position struct {
	node      bnb.Node
	state     bnb.NodeState
	incumbent bnb.Incumbent
}

func (p position) Node() bnb.Node {
	return p.node
}

func (p position) State() bnb.NodeState {
	return p.state
}

func (p position) Incumbent() bnb.Incumbent {
	return p.incumbent
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ bnb.SearchPosition) {
}

// LoggingTracer writes one human-readable block per classified node.
type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(p bnb.SearchPosition) {
	n := p.Node()
	fmt.Fprintf(t.Writer, "---\nNode %d (parent %d, depth %d): %s\n", n.ID, n.Parent, n.Depth, p.State())
	if len(n.Constraints) > 0 {
		fmt.Fprintf(t.Writer, "Constraints:\n")
		for _, c := range n.Constraints {
			fmt.Fprintf(t.Writer, "- %s\n", c)
		}
	}
	if n.Relaxation.Feasible {
		fmt.Fprintf(t.Writer, "Upper bound: %.2f\n", n.Relaxation.Objective)
		ids := make([]string, 0, len(n.Relaxation.Solution))
		for id := range n.Relaxation.Solution {
			ids = append(ids, string(id))
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(t.Writer, "- %s = %.4f\n", id, n.Relaxation.Solution[bnb.Identifier(id)])
		}
	}
	if inc := p.Incumbent(); inc.Exists() {
		fmt.Fprintf(t.Writer, "Incumbent: %.2f (node %d)\n", inc.Objective, inc.Node)
	}
}

// LogrTracer reports every classified node at verbosity 1.
type LogrTracer struct {
	Logger logr.Logger
}

func (t LogrTracer) Trace(p bnb.SearchPosition) {
	n := p.Node()
	t.Logger.V(1).Info("node classified",
		"node", n.ID,
		"parent", n.Parent,
		"depth", n.Depth,
		"state", p.State().String(),
		"bound", n.Bound(),
		"incumbent", p.Incumbent().Objective,
	)
}

// Recorder keeps every position it is handed, forwarding to Next if set.
type Recorder struct {
	Next bnb.Tracer

	mu        sync.Mutex
	positions []bnb.SearchPosition
}

func (r *Recorder) Trace(p bnb.SearchPosition) {
	r.mu.Lock()
	r.positions = append(r.positions, p)
	r.mu.Unlock()
	if r.Next != nil {
		r.Next.Trace(p)
	}
}

// Positions returns the recorded positions in trace order.
func (r *Recorder) Positions() []bnb.SearchPosition {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bnb.SearchPosition, len(r.positions))
	copy(out, r.positions)
	return out
}
