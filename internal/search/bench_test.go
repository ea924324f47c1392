package search

import (
	"context"
	"math/rand"
	"strconv"
	"testing"

	"github.com/operator-framework/bnb/pkg/bnb"
)

var BenchmarkProblem = func() *bnb.Problem {
	const (
		length    = 12
		resources = 4
		seed      = 9
	)

	rng := rand.New(rand.NewSource(seed))
	p := &bnb.Problem{Profit: map[bnb.Identifier]float64{}}
	for i := 0; i < length; i++ {
		id := bnb.Identifier(strconv.Itoa(i))
		p.Variables = append(p.Variables, id)
		p.Profit[id] = float64(rng.Intn(40) + 10)
	}
	for r := 0; r < resources; r++ {
		res := bnb.Resource{Coefficients: map[bnb.Identifier]float64{}, Capacity: float64(rng.Intn(200) + 100)}
		for _, id := range p.Variables {
			res.Coefficients[id] = float64(rng.Intn(30) + 5)
		}
		p.Resources = append(p.Resources, res)
	}
	return p
}()

func benchmarkSolve(b *testing.B, options ...Option) {
	for i := 0; i < b.N; i++ {
		s, err := New(options...)
		if err != nil {
			b.Fatalf("failed to initialize search: %s", err)
		}
		if _, err := s.Solve(context.Background(), BenchmarkProblem); err != nil {
			b.Fatalf("search failed: %s", err)
		}
	}
}

func BenchmarkSolve(b *testing.B) {
	benchmarkSolve(b)
}

func BenchmarkSolveParallel(b *testing.B) {
	benchmarkSolve(b, WithParallelism(4))
}
