// Package extract reads a solved model back into a per-term plan and a
// minor completion report.
package extract

import (
	"fmt"
	"sort"

	"github.com/yigit/degreeplan/internal/app/models"
	"github.com/yigit/degreeplan/internal/planner/builder"
	"github.com/yigit/degreeplan/internal/planner/catalog"
	"github.com/yigit/degreeplan/internal/planner/diag"
	"github.com/yigit/degreeplan/internal/planner/model"
	"github.com/yigit/degreeplan/internal/planner/overlap"
)

// PlannedCourse is one scheduled course.
type PlannedCourse struct {
	Code     string          `json:"code" yaml:"code"`
	Name     string          `json:"name,omitempty" yaml:"name,omitempty"`
	Category models.Category `json:"category" yaml:"category"`
	Credits  float64         `json:"credits" yaml:"credits"`
}

// TermPlan lists the courses of one term.
type TermPlan struct {
	Term     int             `json:"term" yaml:"term"`
	Courses  []PlannedCourse `json:"courses" yaml:"courses"`
	Credits  float64         `json:"credits" yaml:"credits"`
	Extended bool            `json:"extended,omitempty" yaml:"extended,omitempty"`
}

// Requirement compares credits held against one minor threshold.
type Requirement struct {
	Name      string  `json:"name" yaml:"name"`
	Completed float64 `json:"completed" yaml:"completed"`
	Scheduled float64 `json:"scheduled" yaml:"scheduled"`
	Required  float64 `json:"required" yaml:"required"`
	Met       bool    `json:"met" yaml:"met"`
}

// MinorReport summarises minor progress under a plan.
type MinorReport struct {
	Name           string          `json:"name" yaml:"name"`
	Requirements   []Requirement   `json:"requirements" yaml:"requirements"`
	OpenChoice     float64         `json:"openChoice" yaml:"open_choice"`
	Total          float64         `json:"total" yaml:"total"`
	TotalRequired  float64         `json:"totalRequired" yaml:"total_required"`
	Overlapping    []overlap.Entry `json:"overlapping,omitempty" yaml:"overlapping,omitempty"`
	OverlapCredits float64         `json:"overlapCredits" yaml:"overlap_credits"`
	Satisfied      bool            `json:"satisfied" yaml:"satisfied"`
}

// Plan is a complete schedule for the horizon.
type Plan struct {
	Terms        []TermPlan                  `json:"terms" yaml:"terms"`
	Totals       map[models.Category]float64 `json:"totals" yaml:"totals"`
	TotalCredits float64                     `json:"totalCredits" yaml:"total_credits"`
	Minor        *MinorReport                `json:"minor,omitempty" yaml:"minor,omitempty"`
}

// Result is the outcome of one planning run. Plan is set only for Optimal
// and Feasible; Diagnostic only for the other statuses.
type Result struct {
	Status     model.Status     `json:"status" yaml:"status"`
	Plan       *Plan            `json:"plan,omitempty" yaml:"plan,omitempty"`
	Diagnostic *diag.Diagnostic `json:"diagnostic,omitempty" yaml:"diagnostic,omitempty"`
	Objective  int              `json:"objective" yaml:"objective"`
}

// MinorContext is the minor information needed for the report.
type MinorContext struct {
	Minor   models.Minor
	Overlap overlap.Result
}

// Extract turns an oracle solution into a Result. It fails if the
// assignment violates the model it claims to solve.
func Extract(out *builder.Output, sol model.Solution, minor *MinorContext) (Result, error) {
	switch sol.Status {
	case model.StatusInfeasible:
		return Result{Status: sol.Status, Diagnostic: Infeasible(out)}, nil
	case model.StatusOptimal, model.StatusFeasible:
	default:
		return Result{Status: model.StatusUnknown, Diagnostic: Unknown(out)}, nil
	}

	if violations := out.Model.Check(sol.Values); len(violations) > 0 {
		return Result{}, fmt.Errorf("assignment violates %d constraint(s), first: %s", len(violations), violations[0])
	}

	plan := &Plan{Totals: make(map[models.Category]float64)}
	byTerm := make(map[int]*TermPlan)
	for _, key := range out.Keys {
		if !sol.Value(out.Vars[key]) {
			continue
		}
		c, _ := out.Pool.Lookup(key.Term, key.Code)
		tp, ok := byTerm[key.Term]
		if !ok {
			tp = &TermPlan{Term: key.Term}
			if ext, ok := out.Extended[key.Term]; ok {
				tp.Extended = sol.Value(ext)
			}
			byTerm[key.Term] = tp
		}
		tp.Courses = append(tp.Courses, PlannedCourse{
			Code:     c.Code,
			Name:     c.Name,
			Category: c.Category,
			Credits:  c.Credits,
		})
		tp.Credits += c.Credits
		plan.Totals[c.Category] += c.Credits
		plan.TotalCredits += c.Credits
	}

	for _, t := range out.Pool.Terms() {
		tp, ok := byTerm[t]
		if !ok {
			tp = &TermPlan{Term: t, Courses: []PlannedCourse{}}
		}
		sort.Slice(tp.Courses, func(i, j int) bool {
			a, b := tp.Courses[i], tp.Courses[j]
			if a.Category.Rank() != b.Category.Rank() {
				return a.Category.Rank() < b.Category.Rank()
			}
			return a.Code < b.Code
		})
		plan.Terms = append(plan.Terms, *tp)
	}

	if minor != nil {
		plan.Minor = report(plan, *minor)
	}
	return Result{Status: sol.Status, Plan: plan, Objective: sol.Objective}, nil
}

func report(plan *Plan, mc MinorContext) *MinorReport {
	m := mc.Minor
	core := plan.Totals[models.CategoryMinorCore]
	elective := plan.Totals[models.CategoryMinorElective]

	req := func(name string, completed, scheduled, required float64) Requirement {
		return Requirement{
			Name:      name,
			Completed: completed,
			Scheduled: scheduled,
			Required:  required,
			Met:       completed+scheduled >= required,
		}
	}
	unique := req("unique", mc.Overlap.Completed(), core+elective, m.UniqueCredits)
	r := &MinorReport{
		Name: m.Name,
		Requirements: []Requirement{
			req("core", mc.Overlap.CompletedCore, core, m.CoreCredits),
			req("elective", mc.Overlap.CompletedElective, elective, m.ElectiveCredits),
			unique,
		},
		OpenChoice:     m.OpenChoiceCredits,
		Total:          unique.Completed + unique.Scheduled + m.OpenChoiceCredits,
		TotalRequired:  m.TotalCredits,
		Overlapping:    mc.Overlap.Overlapping,
		OverlapCredits: mc.Overlap.OverlapCredits,
	}
	r.Satisfied = unique.Met
	return r
}

// Infeasible explains a proven infeasibility.
func Infeasible(out *builder.Output) *diag.Diagnostic {
	d := &diag.Diagnostic{
		Class:   diag.ClassModelInfeasible,
		Message: "no schedule satisfies every credit, prerequisite and category rule",
		Recommendations: []string{
			"widen the per-term credit bounds",
			"lower the Humanities or department elective floors",
			"lower the minor credit floors or drop the minor",
			"extend the planning horizon",
		},
	}
	if out != nil {
		d.Findings = append(d.Findings, fmt.Sprintf("%d decision variables over terms %v", len(out.Keys), out.Pool.Terms()))
	}
	return d
}

// Unknown explains an exhausted search budget. It is never a proof of
// infeasibility.
func Unknown(out *builder.Output) *diag.Diagnostic {
	d := &diag.Diagnostic{
		Class:   diag.ClassModelUnknown,
		Message: "the solver stopped before finding a schedule or proving none exists",
		Recommendations: []string{
			"increase the solve timeout",
			"mark more completed courses or shorten the horizon to shrink the model",
		},
	}
	if out != nil {
		d.Findings = append(d.Findings, fmt.Sprintf("model has %d variables and %d constraints", out.Model.NumVars(), out.Model.NumConstraints()))
	}
	return d
}

// Validate checks the structural guarantees of a plan against the pool it
// was drawn from: Core codes exactly once, other codes at most once, and
// some prerequisite path completed before every scheduled course.
func (p *Plan) Validate(pool catalog.CandidatePool, completed map[string]bool) []string {
	var problems []string
	termOf := make(map[string]int)
	count := make(map[string]int)
	for _, tp := range p.Terms {
		for _, c := range tp.Courses {
			termOf[c.Code] = tp.Term
			count[c.Code]++
		}
	}

	for _, c := range pool.Unique() {
		n := count[c.Code]
		if c.Category == models.CategoryCore && n != 1 {
			problems = append(problems, fmt.Sprintf("core course %s scheduled %d times", c.Code, n))
		}
		if c.Category != models.CategoryCore && n > 1 {
			problems = append(problems, fmt.Sprintf("course %s scheduled %d times", c.Code, n))
		}
	}

	for _, tp := range p.Terms {
		for _, pc := range tp.Courses {
			c, ok := pool.Course(pc.Code)
			if !ok || len(c.Prereqs) == 0 {
				continue
			}
			if !anyPathDone(c.Prereqs, tp.Term, termOf, completed) {
				problems = append(problems, fmt.Sprintf("%s in term %d has no completed prerequisite path", pc.Code, tp.Term))
			}
		}
	}
	return problems
}

func anyPathDone(paths []models.PrerequisitePath, term int, termOf map[string]int, completed map[string]bool) bool {
	for _, path := range paths {
		done := true
		for _, code := range path {
			if completed[code] {
				continue
			}
			if t, ok := termOf[code]; !ok || t >= term {
				done = false
				break
			}
		}
		if done {
			return true
		}
	}
	return false
}
