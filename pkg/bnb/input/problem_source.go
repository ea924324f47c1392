package input

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/operator-framework/bnb/pkg/bnb"
)

// ProblemSource hands the solver the problem to search.
type ProblemSource interface {
	GetProblem(ctx context.Context) (*bnb.Problem, error)
}

var _ ProblemSource = &StaticProblemSource{}

type StaticProblemSource struct {
	problem *bnb.Problem
}

func NewStaticProblemSource(problem *bnb.Problem) *StaticProblemSource {
	return &StaticProblemSource{problem: problem}
}

func (s *StaticProblemSource) GetProblem(_ context.Context) (*bnb.Problem, error) {
	return s.problem, nil
}

// problemDocument is the YAML layout of a problem:
//
//	variables:
//	- name: p
//	  profit: 100
//	resources:
//	- name: purchase
//	  operator: "<="
//	  capacity: 40000
//	  coefficients: {p: 8000}
type problemDocument struct {
	Variables []variableDocument `yaml:"variables"`
	Resources []resourceDocument `yaml:"resources"`
}

type variableDocument struct {
	Name   string  `yaml:"name"`
	Profit float64 `yaml:"profit"`
}

type resourceDocument struct {
	Name         string             `yaml:"name"`
	Operator     string             `yaml:"operator"`
	Capacity     float64            `yaml:"capacity"`
	Coefficients map[string]float64 `yaml:"coefficients"`
}

// NewYAMLProblemSource decodes and validates a problem described in YAML
// read from r.
func NewYAMLProblemSource(r io.Reader) (*StaticProblemSource, error) {
	var doc problemDocument
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty problem document")
		}
		return nil, fmt.Errorf("error decoding problem: %w", err)
	}

	problem := &bnb.Problem{
		Profit: make(map[bnb.Identifier]float64, len(doc.Variables)),
	}
	for _, v := range doc.Variables {
		id := bnb.IdentifierFromString(v.Name)
		problem.Variables = append(problem.Variables, id)
		if v.Profit != 0 {
			problem.Profit[id] = v.Profit
		}
	}
	for i, r := range doc.Resources {
		op, err := bnb.ParseOperator(r.Operator)
		if err != nil {
			return nil, fmt.Errorf("resource %d (%s): %w", i, r.Name, err)
		}
		resource := bnb.Resource{
			Name:         r.Name,
			Operator:     op,
			Capacity:     r.Capacity,
			Coefficients: make(map[bnb.Identifier]float64, len(r.Coefficients)),
		}
		for name, a := range r.Coefficients {
			resource.Coefficients[bnb.IdentifierFromString(name)] = a
		}
		problem.Resources = append(problem.Resources, resource)
	}

	if err := problem.Validate(); err != nil {
		return nil, err
	}
	return NewStaticProblemSource(problem), nil
}
