package input_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/operator-framework/bnb/pkg/bnb"
	"github.com/operator-framework/bnb/pkg/bnb/input"
)

func TestInput(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Input Suite")
}

const machineShop = `
variables:
- name: p
  profit: 100
- name: l
  profit: 150
resources:
- name: purchase
  capacity: 40000
  coefficients: {p: 8000, l: 4000}
- name: floor_space
  operator: "<="
  capacity: 200
  coefficients: {p: 15, l: 30}
`

var _ = Describe("YAML Problem Source", func() {
	It("should decode a valid problem", func() {
		source, err := input.NewYAMLProblemSource(strings.NewReader(machineShop))
		Expect(err).ToNot(HaveOccurred())
		p, err := source.GetProblem(context.Background())
		Expect(err).ToNot(HaveOccurred())

		Expect(p.Variables).To(Equal([]bnb.Identifier{"p", "l"}))
		Expect(p.Profit).To(Equal(map[bnb.Identifier]float64{"p": 100, "l": 150}))
		Expect(p.Resources).To(HaveLen(2))
		Expect(p.Resources[0]).To(Equal(bnb.Resource{
			Name:         "purchase",
			Operator:     bnb.LessOrEqual,
			Capacity:     40000,
			Coefficients: map[bnb.Identifier]float64{"p": 8000, "l": 4000},
		}))
		Expect(p.Resources[1].Operator).To(Equal(bnb.LessOrEqual))
	})

	It("should decode lower bound resources", func() {
		doc := `
variables:
- name: x
  profit: 1
resources:
- name: required
  operator: ">="
  capacity: 1
  coefficients: {x: 1}
`
		source, err := input.NewYAMLProblemSource(strings.NewReader(doc))
		Expect(err).ToNot(HaveOccurred())
		p, _ := source.GetProblem(context.Background())
		Expect(p.Resources[0].Operator).To(Equal(bnb.GreaterOrEqual))
	})

	It("should fail on an empty document", func() {
		_, err := input.NewYAMLProblemSource(strings.NewReader(""))
		Expect(err).To(HaveOccurred())
	})

	It("should fail on unknown fields", func() {
		_, err := input.NewYAMLProblemSource(strings.NewReader("variables: []\nobjective: max\n"))
		Expect(err).To(HaveOccurred())
	})

	It("should fail on an unknown operator", func() {
		doc := "variables:\n- name: x\nresources:\n- name: r\n  operator: \"=\"\n  capacity: 1\n"
		_, err := input.NewYAMLProblemSource(strings.NewReader(doc))
		Expect(err).To(MatchError(ContainSubstring(`unknown operator "="`)))
	})

	It("should fail validation on undeclared variables", func() {
		doc := "variables:\n- name: x\nresources:\n- name: r\n  capacity: 1\n  coefficients: {y: 2}\n"
		_, err := input.NewYAMLProblemSource(strings.NewReader(doc))
		var invalid bnb.InvalidProblem
		Expect(errors.As(err, &invalid)).To(BeTrue())
	})
})

var _ = Describe("Static Problem Source", func() {
	It("should return the problem it was built with", func() {
		p := &bnb.Problem{Variables: []bnb.Identifier{"x"}}
		got, err := input.NewStaticProblemSource(p).GetProblem(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(BeIdenticalTo(p))
	})
})
