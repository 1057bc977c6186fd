// Package model is a declarative 0-1 constraint model: boolean variables,
// linear constraints over integer coefficients with optional enforcement
// literals, AND/OR equalities and a linear objective. An Oracle solves it.
package model

import (
	"context"
	"fmt"
)

// VarID identifies a boolean variable. IDs are dense, starting at 0.
type VarID int

// Literal is a variable or its negation.
type Literal struct {
	Var VarID
	Neg bool
}

// Lit returns the positive literal of v.
func Lit(v VarID) Literal { return Literal{Var: v} }

// Not returns the negative literal of v.
func Not(v VarID) Literal { return Literal{Var: v, Neg: true} }

// Holds reports whether the literal is true under values.
func (l Literal) Holds(values []bool) bool {
	return value(values, l.Var) != l.Neg
}

// Term is a coefficient applied to a variable.
type Term struct {
	Var  VarID
	Coef int
}

// Op is a linear comparison.
type Op int

const (
	LE Op = iota
	GE
	EQ
)

func (o Op) String() string {
	switch o {
	case LE:
		return "<="
	case GE:
		return ">="
	case EQ:
		return "=="
	}
	return "?"
}

// Linear is sum(Terms) Op Bound, enforced only when every literal in
// Enforce holds.
type Linear struct {
	Name    string
	Terms   []Term
	Op      Op
	Bound   int
	Enforce []Literal
}

// OnlyEnforceIf makes the constraint conditional on lits.
func (c *Linear) OnlyEnforceIf(lits ...Literal) *Linear {
	c.Enforce = append(c.Enforce, lits...)
	return c
}

// Sum evaluates the left-hand side under values.
func (c *Linear) Sum(values []bool) int {
	sum := 0
	for _, t := range c.Terms {
		if value(values, t.Var) {
			sum += t.Coef
		}
	}
	return sum
}

// Satisfied reports whether values satisfy the constraint.
func (c *Linear) Satisfied(values []bool) bool {
	for _, l := range c.Enforce {
		if !l.Holds(values) {
			return true
		}
	}
	sum := c.Sum(values)
	switch c.Op {
	case LE:
		return sum <= c.Bound
	case GE:
		return sum >= c.Bound
	default:
		return sum == c.Bound
	}
}

// BoolEquality ties Target to the conjunction or disjunction of Inputs.
// An empty conjunction is true and an empty disjunction is false.
type BoolEquality struct {
	Name   string
	Target VarID
	Inputs []VarID
}

// Model collects variables, constraints and the objective.
type Model struct {
	names     []string
	linear    []*Linear
	ands      []BoolEquality
	ors       []BoolEquality
	objective []Term
}

// New creates an empty model.
func New() *Model {
	return &Model{}
}

// NewBool allocates a boolean variable.
func (m *Model) NewBool(name string) VarID {
	m.names = append(m.names, name)
	return VarID(len(m.names) - 1)
}

// NumVars returns the number of allocated variables.
func (m *Model) NumVars() int { return len(m.names) }

// Name returns the name given to v.
func (m *Model) Name(v VarID) string {
	if int(v) < 0 || int(v) >= len(m.names) {
		return fmt.Sprintf("v%d", v)
	}
	return m.names[v]
}

// Add appends sum(terms) op bound and returns the constraint so that it can
// be made conditional.
func (m *Model) Add(name string, terms []Term, op Op, bound int) *Linear {
	c := &Linear{
		Name:  name,
		Terms: append([]Term(nil), terms...),
		Op:    op,
		Bound: bound,
	}
	m.linear = append(m.linear, c)
	return c
}

// Fix forces v to value.
func (m *Model) Fix(name string, v VarID, value bool) *Linear {
	bound := 0
	if value {
		bound = 1
	}
	return m.Add(name, []Term{{Var: v, Coef: 1}}, EQ, bound)
}

// AddAndEquality enforces target == AND(inputs).
func (m *Model) AddAndEquality(name string, target VarID, inputs []VarID) {
	m.ands = append(m.ands, BoolEquality{Name: name, Target: target, Inputs: append([]VarID(nil), inputs...)})
}

// AddOrEquality enforces target == OR(inputs).
func (m *Model) AddOrEquality(name string, target VarID, inputs []VarID) {
	m.ors = append(m.ors, BoolEquality{Name: name, Target: target, Inputs: append([]VarID(nil), inputs...)})
}

// Minimize sets the objective. Replaces any earlier objective.
func (m *Model) Minimize(terms []Term) {
	m.objective = append([]Term(nil), terms...)
}

// Linear returns the linear constraints in insertion order.
func (m *Model) Linear() []*Linear { return m.linear }

// Ands returns the AND equalities.
func (m *Model) Ands() []BoolEquality { return m.ands }

// Ors returns the OR equalities.
func (m *Model) Ors() []BoolEquality { return m.ors }

// Objective returns the minimised terms.
func (m *Model) Objective() []Term { return m.objective }

// NumConstraints counts every constraint of the model.
func (m *Model) NumConstraints() int {
	return len(m.linear) + len(m.ands) + len(m.ors)
}

// Evaluate returns the objective value under values.
func (m *Model) Evaluate(values []bool) int {
	sum := 0
	for _, t := range m.objective {
		if value(values, t.Var) {
			sum += t.Coef
		}
	}
	return sum
}

// Check returns a description of every constraint values violate.
func (m *Model) Check(values []bool) []string {
	var violations []string
	for _, c := range m.linear {
		if !c.Satisfied(values) {
			violations = append(violations, fmt.Sprintf("%s: %d %s %d", c.Name, c.Sum(values), c.Op, c.Bound))
		}
	}
	for _, eq := range m.ands {
		want := true
		for _, in := range eq.Inputs {
			want = want && value(values, in)
		}
		if value(values, eq.Target) != want {
			violations = append(violations, eq.Name+": and-equality")
		}
	}
	for _, eq := range m.ors {
		want := false
		for _, in := range eq.Inputs {
			want = want || value(values, in)
		}
		if value(values, eq.Target) != want {
			violations = append(violations, eq.Name+": or-equality")
		}
	}
	return violations
}

func (m *Model) String() string {
	return fmt.Sprintf("model: %d vars, %d linear, %d and, %d or", len(m.names), len(m.linear), len(m.ands), len(m.ors))
}

func value(values []bool, v VarID) bool {
	return int(v) >= 0 && int(v) < len(values) && values[v]
}

// Status is the terminal state of a solve.
type Status string

const (
	StatusOptimal    Status = "Optimal"
	StatusFeasible   Status = "Feasible"
	StatusInfeasible Status = "Infeasible"
	StatusUnknown    Status = "Unknown"
)

// HasSolution reports whether the status carries an assignment.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Solution is an oracle result. Values is indexed by VarID and is only
// meaningful when Status.HasSolution.
type Solution struct {
	Status    Status
	Values    []bool
	Objective int
}

// Value returns the assignment of v.
func (s Solution) Value(v VarID) bool {
	return value(s.Values, v)
}

// Oracle finds an assignment for a model. Implementations must return
// StatusUnknown, never StatusInfeasible, when ctx expires before a proof.
type Oracle interface {
	Solve(ctx context.Context, m *Model) (Solution, error)
}
