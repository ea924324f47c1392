package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/operator-framework/bnb/internal/relaxation"
	"github.com/operator-framework/bnb/pkg/bnb"
	"github.com/operator-framework/bnb/pkg/bnb/constraint"
)

var ErrIncomplete = errors.New("stopped before an integer solution could be found")

// DefaultTolerance is the absolute distance to the nearest integer under
// which a value is treated as integral.
const DefaultTolerance = 1e-6

// feasibilityTolerance is the slack allowed when an integer point is
// checked against the resource rows.
const feasibilityTolerance = 1e-6

// Result is the outcome of a search.
type Result struct {
	Incumbent bnb.Incumbent
	// Bound is the best upper bound left on the optimum. It equals the
	// incumbent objective when Optimal is set.
	Bound float64
	// Optimal is false when the search was stopped by a budget or by
	// cancellation before the frontier emptied.
	Optimal   bool
	Evaluated int
	Branched  int
}

// Search is a best-bound-first branch-and-bound search over the LP
// relaxations produced by an Oracle.
type Search struct {
	oracle      bnb.Oracle
	tracer      bnb.Tracer
	logger      logr.Logger
	tolerance   float64
	nodeLimit   int
	parallelism int
	rounding    bool
}

// Solve searches the problem for a provably optimal integer point. A
// problem without integer points yields a bnb.Infeasible error together
// with a Result carrying the node counts. If the Context is cancelled or
// the node limit is hit, the best incumbent found so far is returned
// with Optimal unset, or ErrIncomplete if there is none.
func (s *Search) Solve(ctx context.Context, problem *bnb.Problem) (*Result, error) {
	if err := problem.Validate(); err != nil {
		return nil, err
	}
	r := run{
		Search:    s,
		problem:   problem,
		frontier:  newFrontier(),
		incumbent: newIncumbent(),
	}
	return r.do(ctx)
}

type run struct {
	*Search
	problem   *bnb.Problem
	frontier  *frontier
	incumbent *incumbent
	lastID    bnb.NodeID
	evaluated atomic.Int64
	branched  int
}

// branching is a popped node together with the split chosen for it.
type branching struct {
	parent   bnb.Node
	children [2]bnb.Node
}

func (r *run) do(ctx context.Context) (*Result, error) {
	r.logger.Info("starting branch and bound", "variables", len(r.problem.Variables), "resources", len(r.problem.Resources))

	root, err := r.evaluate(ctx, bnb.Node{ID: r.allocate()})
	if err != nil {
		return nil, err
	}
	if r.rounding && root.Relaxation.Feasible && !root.Integer {
		r.roundDown(root)
	}
	switch r.classify(root) {
	case bnb.InfeasibleLeaf:
		r.logger.Info("root relaxation is infeasible")
		return r.infeasible(true)
	case bnb.IntegerLeaf:
		r.logger.Info("root relaxation is integral", "objective", root.Relaxation.Objective)
		return r.finish(), nil
	}

	for r.frontier.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return r.stop(err, nil)
		}
		size := r.parallelism
		if r.nodeLimit > 0 {
			room := (r.nodeLimit - int(r.evaluated.Load())) / 2
			if room < 1 {
				return r.stop(fmt.Errorf("node limit %d reached", r.nodeLimit), nil)
			}
			size = min(size, room)
		}

		batch := r.nextBatch(size)
		if len(batch) == 0 {
			break
		}
		if err := r.expand(ctx, batch); err != nil {
			if cerr := ctx.Err(); cerr != nil && errors.Is(err, cerr) {
				return r.stop(cerr, batch)
			}
			return nil, err
		}
		for _, b := range batch {
			r.branched++
			r.trace(b.parent, bnb.Expanded)
			for _, child := range b.children {
				r.classify(child)
			}
		}
	}

	if !r.incumbent.Snapshot().Exists() {
		r.logger.Info("no integer point found", "evaluated", r.evaluated.Load())
		return r.infeasible(false)
	}
	return r.finish(), nil
}

func (r *run) allocate() bnb.NodeID {
	r.lastID++
	return r.lastID
}

// nextBatch pops up to size open nodes, pruning those the incumbent has
// caught up with since they were enqueued.
func (r *run) nextBatch(size int) []*branching {
	var batch []*branching
	for len(batch) < size {
		n, ok := r.frontier.Pop()
		if !ok {
			break
		}
		if n.Relaxation.Objective <= r.incumbent.Objective() {
			r.trace(n, bnb.Pruned)
			continue
		}
		batch = append(batch, &branching{parent: n})
	}
	return batch
}

// expand creates and evaluates the two children of every node in the
// batch. Child ids follow pop order so the tree does not depend on
// scheduling.
func (r *run) expand(ctx context.Context, batch []*branching) error {
	for _, b := range batch {
		p := b.parent
		v, x, ok := selectBranchingVariable(r.problem.Variables, p.Relaxation.Solution, r.tolerance)
		if !ok {
			// every value is integral within tolerance but the rounded
			// point breaks a resource row
			v, x, ok = selectBranchingVariable(r.problem.Variables, p.Relaxation.Solution, 0)
		}
		if !ok {
			return fmt.Errorf("node %d: no fractional variable to branch on", p.ID)
		}
		r.logger.V(1).Info("branching", "node", p.ID, "variable", v.String(), "value", x, "fraction", fractionalPart(x))
		down, up := constraint.Split(v, x)
		for i, c := range [2]bnb.Constraint{down, up} {
			b.children[i] = bnb.Node{
				ID:          r.allocate(),
				Parent:      p.ID,
				Depth:       p.Depth + 1,
				Constraints: constraint.Append(p.Constraints, c),
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for _, b := range batch {
		for i := range b.children {
			g.Go(func() error {
				n, err := r.evaluate(gctx, b.children[i])
				if err != nil {
					return err
				}
				b.children[i] = n
				return nil
			})
		}
	}
	return g.Wait()
}

// evaluate solves the relaxation of n's region and fills in the derived
// fields.
func (r *run) evaluate(ctx context.Context, n bnb.Node) (bnb.Node, error) {
	relaxation, err := r.oracle.Solve(ctx, r.problem, n.Constraints)
	if err != nil {
		return bnb.Node{}, fmt.Errorf("relaxation of node %d failed: %w", n.ID, err)
	}
	r.evaluated.Add(1)
	n.Relaxation = relaxation
	n.Integer = relaxation.Feasible &&
		isInteger(r.problem.Variables, relaxation.Solution, r.tolerance) &&
		r.problem.Satisfies(n.Rounded(), feasibilityTolerance)
	n.Incumbent = r.incumbent.Snapshot()
	return n, nil
}

// roundDown offers the root point rounded towards zero as a first
// incumbent when it meets every resource row.
func (r *run) roundDown(root bnb.Node) {
	assignment := make(map[bnb.Identifier]int64, len(r.problem.Variables))
	for _, id := range r.problem.Variables {
		assignment[id] = int64(math.Floor(root.Relaxation.Solution[id] + r.tolerance))
	}
	if !r.problem.Satisfies(assignment, feasibilityTolerance) {
		r.logger.V(1).Info("rounded root point is infeasible")
		return
	}
	candidate := bnb.Incumbent{Objective: r.problem.Value(assignment), Assignment: assignment, Node: root.ID}
	if r.incumbent.Offer(candidate) {
		r.logger.Info("new incumbent", "node", root.ID, "objective", candidate.Objective, "heuristic", "rounding")
	}
}

// classify applies the pruning rules to an evaluated node, offering it
// to the incumbent or admitting it to the frontier as appropriate.
func (r *run) classify(n bnb.Node) bnb.NodeState {
	var state bnb.NodeState
	switch {
	case !n.Relaxation.Feasible:
		state = bnb.InfeasibleLeaf
	case n.Integer:
		state = bnb.IntegerLeaf
		assignment := n.Rounded()
		candidate := bnb.Incumbent{Objective: r.problem.Value(assignment), Assignment: assignment, Node: n.ID}
		if r.incumbent.Offer(candidate) {
			r.logger.Info("new incumbent", "node", n.ID, "objective", candidate.Objective)
		}
	case n.Relaxation.Objective <= r.incumbent.Objective():
		state = bnb.Pruned
	default:
		state = bnb.Fractional
		r.frontier.Push(n)
	}
	r.trace(n, state)
	return state
}

func (r *run) trace(n bnb.Node, state bnb.NodeState) {
	r.tracer.Trace(position{node: n, state: state, incumbent: r.incumbent.Snapshot()})
}

func (r *run) finish() *Result {
	best := r.incumbent.Snapshot()
	r.logger.Info("search finished", "objective", best.Objective, "evaluated", r.evaluated.Load(), "branched", r.branched)
	return &Result{
		Incumbent: best,
		Bound:     best.Objective,
		Optimal:   true,
		Evaluated: int(r.evaluated.Load()),
		Branched:  r.branched,
	}
}

// infeasible reports a finished search without integer points. The
// Result only carries the node counts.
func (r *run) infeasible(relaxed bool) (*Result, error) {
	return &Result{
		Incumbent: bnb.NoIncumbent(),
		Bound:     math.Inf(-1),
		Optimal:   true,
		Evaluated: int(r.evaluated.Load()),
		Branched:  r.branched,
	}, bnb.Infeasible{Relaxed: relaxed}
}

// stop ends the search early. pending holds nodes popped but not
// expanded; their bounds still count towards the reported bound.
func (r *run) stop(reason error, pending []*branching) (*Result, error) {
	r.drain()
	if len(pending) == 0 && r.frontier.Len() == 0 && r.incumbent.Snapshot().Exists() {
		r.logger.Info("no open node can beat the incumbent", "reason", reason.Error())
		return r.finish(), nil
	}
	r.logger.Info("search stopped early", "reason", reason.Error(), "evaluated", r.evaluated.Load(), "open", r.frontier.Len()+len(pending))
	best := r.incumbent.Snapshot()
	if !best.Exists() {
		return nil, fmt.Errorf("%w: %w", ErrIncomplete, reason)
	}
	bound := math.Max(best.Objective, r.frontier.Bound())
	for _, b := range pending {
		bound = math.Max(bound, b.parent.Relaxation.Objective)
	}
	return &Result{
		Incumbent: best,
		Bound:     bound,
		Optimal:   false,
		Evaluated: int(r.evaluated.Load()),
		Branched:  r.branched,
	}, nil
}

// drain prunes the open nodes the incumbent has caught up with.
func (r *run) drain() {
	for r.frontier.Len() > 0 && r.frontier.Bound() <= r.incumbent.Objective() {
		n, _ := r.frontier.Pop()
		r.trace(n, bnb.Pruned)
	}
}

func New(options ...Option) (*Search, error) {
	s := Search{
		logger:      logr.Discard(),
		tolerance:   DefaultTolerance,
		parallelism: 1,
	}
	for _, option := range append(options, defaults...) {
		if err := option(&s); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

type Option func(s *Search) error

func WithOracle(o bnb.Oracle) Option {
	return func(s *Search) error {
		s.oracle = o
		return nil
	}
}

func WithTracer(t bnb.Tracer) Option {
	return func(s *Search) error {
		s.tracer = t
		return nil
	}
}

func WithLogger(l logr.Logger) Option {
	return func(s *Search) error {
		s.logger = l
		return nil
	}
}

// WithTolerance sets the integrality tolerance.
func WithTolerance(tol float64) Option {
	return func(s *Search) error {
		if math.IsNaN(tol) || tol < 0 || tol >= 0.5 {
			return fmt.Errorf("integrality tolerance must be in [0, 0.5), got %g", tol)
		}
		s.tolerance = tol
		return nil
	}
}

// WithNodeLimit bounds the number of relaxations solved. Zero means no
// limit.
func WithNodeLimit(n int) Option {
	return func(s *Search) error {
		if n < 0 {
			return fmt.Errorf("node limit must not be negative, got %d", n)
		}
		s.nodeLimit = n
		return nil
	}
}

// WithParallelism sets how many open nodes are expanded per round, with
// their relaxations solved concurrently.
func WithParallelism(n int) Option {
	return func(s *Search) error {
		if n < 1 {
			return fmt.Errorf("parallelism must be at least 1, got %d", n)
		}
		s.parallelism = n
		return nil
	}
}

// WithRoundingHeuristic seeds the incumbent with the root relaxation
// point rounded down, provided it meets every resource row.
func WithRoundingHeuristic() Option {
	return func(s *Search) error {
		s.rounding = true
		return nil
	}
}

var defaults = []Option{
	func(s *Search) error {
		if s.oracle == nil {
			s.oracle = relaxation.NewSimplex(0)
		}
		return nil
	},
	func(s *Search) error {
		if s.tracer == nil {
			s.tracer = DefaultTracer{}
		}
		return nil
	},
}
