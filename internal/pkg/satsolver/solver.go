// Package satsolver solves planner models with the gophersat pseudo-boolean
// solver.
package satsolver

import (
	"context"
	"fmt"
	"time"

	"github.com/crillab/gophersat/solver"
	"github.com/rs/zerolog"
	"github.com/yigit/degreeplan/internal/planner/model"
)

// Solver adapts gophersat to model.Oracle.
type Solver struct {
	logger zerolog.Logger
}

// New creates a Solver.
func New(logger zerolog.Logger) *Solver {
	return &Solver{logger: logger.With().Str("component", "satsolver").Logger()}
}

// Solve translates m and searches for a minimum-cost assignment until the
// search completes or ctx is done. An interrupted search returns the best
// assignment found so far as Feasible, or Unknown if there is none.
func (s *Solver) Solve(ctx context.Context, m *model.Model) (model.Solution, error) {
	constrs, ok, err := Translate(m)
	if err != nil {
		return model.Solution{Status: model.StatusUnknown}, err
	}
	if !ok {
		s.logger.Debug().Msg("model trivially infeasible")
		return model.Solution{Status: model.StatusInfeasible}, nil
	}
	if m.NumVars() == 0 {
		return model.Solution{Status: model.StatusOptimal}, nil
	}

	pb := solver.ParsePBConstrs(constrs)
	if lits, weights := costFunc(m); len(lits) > 0 {
		pb.SetCostFunc(lits, weights)
	}
	sat := solver.New(pb)

	results := make(chan solver.Result)
	stop := make(chan struct{})
	final := make(chan solver.Result, 1)
	start := time.Now()
	go func() {
		final <- sat.Optimal(results, stop)
	}()

	var (
		best     solver.Result
		found    bool
		improved int
	)
	for {
		select {
		case res, open := <-results:
			if !open {
				last := <-final
				if !found || last.Status == solver.Unsat {
					best = last
				}
				sol := s.solution(m, best, true)
				s.logger.Debug().
					Str("status", string(sol.Status)).
					Int("improvements", improved).
					Dur("elapsed", time.Since(start)).
					Msg("search finished")
				return sol, nil
			}
			if res.Status == solver.Sat {
				best, found = res, true
				improved++
			} else if !found {
				best = res
			}
		case <-ctx.Done():
			// stop is only checked between optimisation rounds; a first search
			// still running keeps its goroutine busy until it finishes.
			close(stop)
			go drain(results)
			sol := s.solution(m, best, false)
			s.logger.Warn().
				Str("status", string(sol.Status)).
				Int("improvements", improved).
				Dur("elapsed", time.Since(start)).
				Msg("search interrupted")
			return sol, nil
		}
	}
}

func drain(results chan solver.Result) {
	for range results {
	}
}

func (s *Solver) solution(m *model.Model, res solver.Result, finished bool) model.Solution {
	switch res.Status {
	case solver.Sat:
		values := make([]bool, m.NumVars())
		copy(values, res.Model)
		status := model.StatusFeasible
		if finished {
			status = model.StatusOptimal
		}
		return model.Solution{Status: status, Values: values, Objective: m.Evaluate(values)}
	case solver.Unsat:
		if finished {
			return model.Solution{Status: model.StatusInfeasible}
		}
	}
	return model.Solution{Status: model.StatusUnknown}
}

// Translate converts m into normalised pseudo-boolean constraints
// (positive weights, "at least" form, 1-based DIMACS literals). ok is false
// when some unconditional constraint can never hold.
func Translate(m *model.Model) (constrs []solver.PBConstr, ok bool, err error) {
	n := m.NumVars()
	check := func(v model.VarID) error {
		if int(v) < 0 || int(v) >= n {
			return fmt.Errorf("variable %d out of range [0,%d)", v, n)
		}
		return nil
	}

	for _, c := range m.Linear() {
		for _, t := range c.Terms {
			if err := check(t.Var); err != nil {
				return nil, false, fmt.Errorf("%s: %w", c.Name, err)
			}
		}
		for _, l := range c.Enforce {
			if err := check(l.Var); err != nil {
				return nil, false, fmt.Errorf("%s: %w", c.Name, err)
			}
		}

		var sides []pbSum
		switch c.Op {
		case model.GE:
			sides = []pbSum{newSum(c.Terms, 1, c.Bound)}
		case model.LE:
			sides = []pbSum{newSum(c.Terms, -1, -c.Bound)}
		default:
			sides = []pbSum{newSum(c.Terms, 1, c.Bound), newSum(c.Terms, -1, -c.Bound)}
		}
		for _, side := range sides {
			constr, keep, feasible := side.constr(c.Enforce)
			if !feasible {
				return nil, false, nil
			}
			if keep {
				constrs = append(constrs, constr)
			}
		}
	}

	for _, eq := range m.Ands() {
		if err := checkAll(check, eq); err != nil {
			return nil, false, err
		}
		t := dimacs(eq.Target)
		if len(eq.Inputs) == 0 {
			constrs = append(constrs, solver.PropClause(t))
			continue
		}
		back := []int{t}
		for _, in := range eq.Inputs {
			constrs = append(constrs, solver.PropClause(-t, dimacs(in)))
			back = append(back, -dimacs(in))
		}
		constrs = append(constrs, solver.PropClause(back...))
	}

	for _, eq := range m.Ors() {
		if err := checkAll(check, eq); err != nil {
			return nil, false, err
		}
		t := dimacs(eq.Target)
		if len(eq.Inputs) == 0 {
			constrs = append(constrs, solver.PropClause(-t))
			continue
		}
		forward := []int{-t}
		for _, in := range eq.Inputs {
			constrs = append(constrs, solver.PropClause(t, -dimacs(in)))
			forward = append(forward, dimacs(in))
		}
		constrs = append(constrs, solver.PropClause(forward...))
	}

	// Registers every variable with the solver even if no constraint uses it.
	if n > 0 {
		lits := make([]int, n)
		weights := make([]int, n)
		for i := range lits {
			lits[i] = i + 1
			weights[i] = 1
		}
		constrs = append(constrs, solver.PBConstr{Lits: lits, Weights: weights, AtLeast: 0})
	}
	return constrs, true, nil
}

func checkAll(check func(model.VarID) error, eq model.BoolEquality) error {
	if err := check(eq.Target); err != nil {
		return fmt.Errorf("%s: %w", eq.Name, err)
	}
	for _, in := range eq.Inputs {
		if err := check(in); err != nil {
			return fmt.Errorf("%s: %w", eq.Name, err)
		}
	}
	return nil
}

func dimacs(v model.VarID) int {
	return int(v) + 1
}

// pbSum is sum(coef[v] * v) + constant >= bound over signed coefficients.
type pbSum struct {
	coef     map[model.VarID]int
	order    []model.VarID
	constant int
	bound    int
}

func newSum(terms []model.Term, sign, bound int) pbSum {
	s := pbSum{coef: make(map[model.VarID]int), bound: bound}
	for _, t := range terms {
		s.add(t.Var, sign*t.Coef)
	}
	return s
}

func (s *pbSum) add(v model.VarID, c int) {
	if _, ok := s.coef[v]; !ok {
		s.order = append(s.order, v)
	}
	s.coef[v] += c
}

// deficit is the bound once every negative coefficient is rewritten on
// the negated literal.
func (s pbSum) deficit() int {
	need := s.bound - s.constant
	for _, v := range s.order {
		if c := s.coef[v]; c < 0 {
			need -= c
		}
	}
	return need
}

// constr normalises s, adding the enforcement literals. keep is false for
// constraints that always hold; feasible is false for unconditional
// constraints that never hold.
func (s pbSum) constr(enforce []model.Literal) (constr solver.PBConstr, keep, feasible bool) {
	need := s.deficit()
	if need <= 0 {
		return solver.PBConstr{}, false, true
	}
	// Any false enforcement literal contributes the whole deficit.
	for _, l := range enforce {
		if l.Neg {
			s.add(l.Var, need)
		} else {
			s.add(l.Var, -need)
			s.constant += need
		}
	}

	need = s.deficit()
	if need <= 0 {
		return solver.PBConstr{}, false, true
	}
	total := 0
	for _, v := range s.order {
		c := s.coef[v]
		switch {
		case c > 0:
			constr.Lits = append(constr.Lits, dimacs(v))
			constr.Weights = append(constr.Weights, c)
			total += c
		case c < 0:
			constr.Lits = append(constr.Lits, -dimacs(v))
			constr.Weights = append(constr.Weights, -c)
			total -= c
		}
	}
	if total < need {
		return solver.PBConstr{}, false, false
	}
	constr.AtLeast = need
	return constr, true, true
}

func costFunc(m *model.Model) ([]solver.Lit, []int) {
	var (
		lits    []solver.Lit
		weights []int
	)
	for _, t := range m.Objective() {
		switch {
		case t.Coef > 0:
			lits = append(lits, solver.IntToLit(int32(dimacs(t.Var))))
			weights = append(weights, t.Coef)
		case t.Coef < 0:
			// c*x == c + |c|*(not x); the constant does not move the optimum.
			lits = append(lits, solver.IntToLit(int32(-dimacs(t.Var))))
			weights = append(weights, -t.Coef)
		}
	}
	return lits, weights
}
