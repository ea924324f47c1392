package solver

import (
	"context"
	"errors"

	"github.com/go-logr/logr"

	"github.com/operator-framework/bnb/internal/search"
	"github.com/operator-framework/bnb/pkg/bnb"
	"github.com/operator-framework/bnb/pkg/bnb/input"
)

// ErrIncomplete is returned when the search was stopped before it found
// any integer solution.
var ErrIncomplete = search.ErrIncomplete

// Solution is returned by the Solver when the search executed successfully.
// A successful execution can still end in an error when the problem has
// no integer solution.
type Solution struct {
	err       error
	incumbent bnb.Incumbent
	bound     float64
	optimal   bool
	evaluated int
	branched  int
	positions []bnb.SearchPosition
}

// Error returns the resolution error in case the problem is infeasible.
// On successful resolution, it will return nil.
func (s *Solution) Error() error {
	return s.err
}

// Objective returns the objective value of the best integer assignment.
func (s *Solution) Objective() float64 {
	return s.incumbent.Objective
}

// Assignment returns the best integer assignment found.
func (s *Solution) Assignment() map[bnb.Identifier]int64 {
	return s.incumbent.Assignment
}

// Value returns the value assigned to a variable by the solution.
func (s *Solution) Value(id bnb.Identifier) int64 {
	return s.incumbent.Assignment[id]
}

// Optimal reports whether the assignment is proven optimal. It is false
// when the search was cut short by a node limit or cancellation.
func (s *Solution) Optimal() bool {
	return s.optimal
}

// Bound returns the best known upper bound on the optimum.
func (s *Solution) Bound() float64 {
	return s.bound
}

// NodesEvaluated returns the number of relaxations solved.
func (s *Solution) NodesEvaluated() int {
	return s.evaluated
}

// NodesBranched returns the number of nodes split into children.
func (s *Solution) NodesBranched() int {
	return s.branched
}

// SearchTrace returns every classified node in search order. Note: This is
// only present if the RecordSearchTrace option is passed in to the Solve
// call that generated the solution.
func (s *Solution) SearchTrace() []bnb.SearchPosition {
	return s.positions
}

type solutionOptions struct {
	searchOptions []search.Option
	tracer        bnb.Tracer
	record        bool
}

func (s *solutionOptions) apply(options ...Option) *solutionOptions {
	for _, applyOption := range options {
		applyOption(s)
	}
	return s
}

func defaultSolutionOptions() *solutionOptions {
	return &solutionOptions{}
}

type Option func(solutionOptions *solutionOptions)

// RecordSearchTrace is a Solve option that instructs the solver to keep
// every search position on the Solution it produces.
func RecordSearchTrace() Option {
	return func(solutionOptions *solutionOptions) {
		solutionOptions.record = true
	}
}

// WithTracer is a Solve option that reports every search position to t.
func WithTracer(t bnb.Tracer) Option {
	return func(solutionOptions *solutionOptions) {
		solutionOptions.tracer = t
	}
}

func WithLogger(l logr.Logger) Option {
	return func(solutionOptions *solutionOptions) {
		solutionOptions.searchOptions = append(solutionOptions.searchOptions, search.WithLogger(l))
	}
}

// WithTolerance sets the absolute integrality tolerance.
func WithTolerance(tol float64) Option {
	return func(solutionOptions *solutionOptions) {
		solutionOptions.searchOptions = append(solutionOptions.searchOptions, search.WithTolerance(tol))
	}
}

// WithNodeLimit bounds the number of relaxations solved. The best
// solution found within the limit is returned, flagged as not optimal.
func WithNodeLimit(n int) Option {
	return func(solutionOptions *solutionOptions) {
		solutionOptions.searchOptions = append(solutionOptions.searchOptions, search.WithNodeLimit(n))
	}
}

// WithParallelism expands up to n open nodes at a time, solving their
// relaxations concurrently.
func WithParallelism(n int) Option {
	return func(solutionOptions *solutionOptions) {
		solutionOptions.searchOptions = append(solutionOptions.searchOptions, search.WithParallelism(n))
	}
}

// WithRoundingHeuristic starts the search from the root relaxation
// point rounded down, when that point is feasible.
func WithRoundingHeuristic() Option {
	return func(solutionOptions *solutionOptions) {
		solutionOptions.searchOptions = append(solutionOptions.searchOptions, search.WithRoundingHeuristic())
	}
}

// BranchAndBoundSolver finds optimal integer solutions of the problems
// handed out by a problem source.
type BranchAndBoundSolver struct {
	problemSource input.ProblemSource
	oracle        bnb.Oracle
}

// NewBranchAndBoundSolver returns a solver over problemSource. A nil
// oracle selects the built-in simplex oracle.
func NewBranchAndBoundSolver(problemSource input.ProblemSource, oracle bnb.Oracle) *BranchAndBoundSolver {
	return &BranchAndBoundSolver{
		problemSource: problemSource,
		oracle:        oracle,
	}
}

func (d BranchAndBoundSolver) Solve(ctx context.Context, options ...Option) (*Solution, error) {
	solutionOpts := defaultSolutionOptions().apply(options...)

	problem, err := d.problemSource.GetProblem(ctx)
	if err != nil {
		return nil, err
	}

	var recorder *search.Recorder
	tracer := solutionOpts.tracer
	if solutionOpts.record {
		recorder = &search.Recorder{Next: tracer}
		tracer = recorder
	}
	searchOpts := solutionOpts.searchOptions
	if tracer != nil {
		searchOpts = append(searchOpts, search.WithTracer(tracer))
	}
	if d.oracle != nil {
		searchOpts = append(searchOpts, search.WithOracle(d.oracle))
	}

	s, err := search.New(searchOpts...)
	if err != nil {
		return nil, err
	}

	result, err := s.Solve(ctx, problem)
	if err != nil && !errors.As(err, &bnb.Infeasible{}) {
		return nil, err
	}

	solution := &Solution{
		incumbent: result.Incumbent,
		bound:     result.Bound,
		optimal:   result.Optimal,
		evaluated: result.Evaluated,
		branched:  result.Branched,
	}
	if recorder != nil {
		solution.positions = recorder.Positions()
	}
	if err != nil {
		infeasible := bnb.Infeasible{}
		errors.As(err, &infeasible)
		solution.err = infeasible
	}
	return solution, nil
}
