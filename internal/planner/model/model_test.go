package model

import "testing"

func TestLinearSatisfied(t *testing.T) {
	m := New()
	x := m.NewBool("x")
	y := m.NewBool("y")
	z := m.NewBool("z")

	ge := m.Add("ge", []Term{{x, 40}, {y, 45}}, GE, 80)
	le := m.Add("le", []Term{{x, 40}, {y, 45}}, LE, 80).OnlyEnforceIf(Not(z))
	eq := m.Add("eq", []Term{{x, 1}, {y, 1}}, EQ, 1)

	tests := []struct {
		name       string
		values     []bool
		ge, le, eq bool
	}{
		{"none", []bool{false, false, false}, false, true, false},
		{"x only", []bool{true, false, false}, false, true, true},
		{"both under limit", []bool{true, true, false}, true, false, false},
		{"both extended", []bool{true, true, true}, true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ge.Satisfied(tt.values); got != tt.ge {
				t.Fatalf("ge = %v, want %v", got, tt.ge)
			}
			if got := le.Satisfied(tt.values); got != tt.le {
				t.Fatalf("le = %v, want %v", got, tt.le)
			}
			if got := eq.Satisfied(tt.values); got != tt.eq {
				t.Fatalf("eq = %v, want %v", got, tt.eq)
			}
		})
	}
}

func TestCheckBoolEqualities(t *testing.T) {
	m := New()
	a := m.NewBool("a")
	b := m.NewBool("b")
	and := m.NewBool("and")
	or := m.NewBool("or")
	always := m.NewBool("always")
	never := m.NewBool("never")
	m.AddAndEquality("and", and, []VarID{a, b})
	m.AddOrEquality("or", or, []VarID{a, b})
	m.AddAndEquality("empty-and", always, nil)
	m.AddOrEquality("empty-or", never, nil)

	if v := m.Check([]bool{true, false, false, true, true, false}); len(v) != 0 {
		t.Fatalf("unexpected violations %v", v)
	}
	if v := m.Check([]bool{true, true, false, true, false, true}); len(v) != 3 {
		t.Fatalf("expected 3 violations, got %v", v)
	}
	if m.NumConstraints() != 4 || m.NumVars() != 6 {
		t.Fatalf("unexpected model size: %s", m)
	}
}

func TestValuesShorterThanModel(t *testing.T) {
	m := New()
	x := m.NewBool("x")
	y := m.NewBool("y")
	m.Fix("y off", y, false)
	m.Minimize([]Term{{x, 3}, {y, 5}})

	sol := Solution{Status: StatusFeasible, Values: []bool{true}}
	if sol.Value(y) {
		t.Fatalf("missing values must read as false")
	}
	if len(m.Check(sol.Values)) != 0 {
		t.Fatalf("fix constraint must hold")
	}
	if m.Evaluate(sol.Values) != 3 {
		t.Fatalf("objective = %d, want 3", m.Evaluate(sol.Values))
	}
	if StatusUnknown.HasSolution() || StatusInfeasible.HasSolution() {
		t.Fatalf("only optimal and feasible carry a solution")
	}
}
