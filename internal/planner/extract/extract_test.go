package extract

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/degreeplan/internal/app/models"
	"github.com/yigit/degreeplan/internal/pkg/satsolver"
	"github.com/yigit/degreeplan/internal/planner/builder"
	"github.com/yigit/degreeplan/internal/planner/catalog"
	"github.com/yigit/degreeplan/internal/planner/diag"
	"github.com/yigit/degreeplan/internal/planner/model"
	"github.com/yigit/degreeplan/internal/planner/overlap"
)

func solve(t *testing.T, out *builder.Output) model.Solution {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sol, err := satsolver.New(zerolog.Nop()).Solve(ctx, out.Model)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	return sol
}

func TestExtractPlan(t *testing.T) {
	courses := []models.Course{
		{Code: "COL100", Name: "Programming", Credits: 4, Category: models.CategoryCore},
		{Code: "COL106", Name: "Data Structures", Credits: 4, Category: models.CategoryCore, Prereqs: []models.PrerequisitePath{{"COL100"}}},
		{Code: "HUL212", Credits: 4, Category: models.CategoryHumanities},
		{Code: "ECO101", Credits: 3, Category: models.CategoryMinorCore},
		{Code: "ECO201", Credits: 3.5, Category: models.CategoryMinorElective, Prereqs: []models.PrerequisitePath{{"ECO101"}}},
	}
	pool := catalog.Widen(catalog.CandidatePool{}, courses, catalog.Horizon{First: 3, Last: 4}, nil)
	rules := builder.Rules{
		Scale:           10,
		MinCredits:      4,
		MaxCredits:      12,
		TotalTarget:     18.5,
		HumanitiesFloor: 4,
		Minor:           &builder.MinorRules{Name: "Economics", UniqueFloor: 6.5, CoreFloor: 3, PerTerm: 1},
	}
	out := builder.New(pool, nil, rules, zerolog.Nop()).Build()

	minor := &MinorContext{
		Minor: models.Minor{
			Name:              "Economics",
			CoreCredits:       3,
			ElectiveCredits:   3,
			UniqueCredits:     6.5,
			OpenChoiceCredits: 10,
			TotalCredits:      20,
		},
		Overlap: overlap.Result{
			Overlapping:    []overlap.Entry{{Code: "COL100", Credits: 4}},
			OverlapCredits: 4,
		},
	}
	res, err := Extract(out, solve(t, out), minor)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !res.Status.HasSolution() || res.Plan == nil || res.Diagnostic != nil {
		t.Fatalf("unexpected result %+v", res)
	}

	plan := res.Plan
	if problems := plan.Validate(pool, nil); len(problems) != 0 {
		t.Fatalf("plan violates guarantees: %v", problems)
	}
	if len(plan.Terms) != 2 || plan.Terms[0].Term != 3 || plan.Terms[1].Term != 4 {
		t.Fatalf("unexpected terms %+v", plan.Terms)
	}
	if plan.TotalCredits != 18.5 {
		t.Fatalf("total = %v, want 18.5", plan.TotalCredits)
	}
	if plan.Terms[0].Courses[0].Code != "COL100" || plan.Terms[1].Courses[0].Code != "COL106" {
		t.Fatalf("core courses must lead each term: %+v", plan.Terms)
	}
	if plan.Terms[0].Courses[1].Code != "ECO101" {
		t.Fatalf("minor core must follow core in term 3: %+v", plan.Terms[0].Courses)
	}
	sum := 0.0
	for _, tp := range plan.Terms {
		sum += tp.Credits
	}
	if sum != plan.TotalCredits {
		t.Fatalf("term credits %v do not add up to %v", sum, plan.TotalCredits)
	}

	r := plan.Minor
	if r == nil || !r.Satisfied {
		t.Fatalf("minor report = %+v", r)
	}
	if r.Total != 16.5 || r.TotalRequired != 20 {
		t.Fatalf("minor total = %v/%v, want 16.5/20", r.Total, r.TotalRequired)
	}
	if len(r.Requirements) != 3 || !r.Requirements[0].Met || r.Requirements[0].Scheduled != 3 {
		t.Fatalf("requirements = %+v", r.Requirements)
	}
	if r.OverlapCredits != 4 || len(r.Overlapping) != 1 {
		t.Fatalf("overlap not reported: %+v", r)
	}
}

func TestExtractFailureStatuses(t *testing.T) {
	pool := catalog.Widen(catalog.CandidatePool{}, []models.Course{{Code: "AAA100", Credits: 4, Category: models.CategoryCore}}, catalog.Horizon{First: 1, Last: 1}, nil)
	out := builder.New(pool, nil, builder.Rules{Scale: 10, MaxCredits: 20, TotalSlack: 10}, zerolog.Nop()).Build()

	tests := []struct {
		status model.Status
		class  diag.Class
	}{
		{model.StatusInfeasible, diag.ClassModelInfeasible},
		{model.StatusUnknown, diag.ClassModelUnknown},
		{"", diag.ClassModelUnknown},
	}
	for _, tt := range tests {
		res, err := Extract(out, model.Solution{Status: tt.status, Values: []bool{true}}, nil)
		if err != nil {
			t.Fatalf("%s: %v", tt.status, err)
		}
		if res.Plan != nil {
			t.Fatalf("%s: no plan may be returned", tt.status)
		}
		if res.Diagnostic == nil || res.Diagnostic.Class != tt.class {
			t.Fatalf("%s: diagnostic = %+v, want %s", tt.status, res.Diagnostic, tt.class)
		}
		if tt.status != model.StatusInfeasible && res.Status == model.StatusInfeasible {
			t.Fatalf("unknown must never be reported as infeasible")
		}
	}
}

func TestExtractRejectsInvalidAssignment(t *testing.T) {
	pool := catalog.Widen(catalog.CandidatePool{}, []models.Course{{Code: "AAA100", Credits: 4, Category: models.CategoryCore}}, catalog.Horizon{First: 1, Last: 2}, nil)
	out := builder.New(pool, nil, builder.Rules{Scale: 10, MaxCredits: 20, TotalSlack: 10}, zerolog.Nop()).Build()

	if _, err := Extract(out, model.Solution{Status: model.StatusFeasible, Values: []bool{true, true}}, nil); err == nil {
		t.Fatalf("taking a core course twice must be rejected")
	}
}

func TestValidate(t *testing.T) {
	pool := catalog.Widen(catalog.CandidatePool{}, []models.Course{
		{Code: "AAA100", Credits: 4, Category: models.CategoryCore},
		{Code: "BBB100", Credits: 4, Category: models.CategoryCore, Prereqs: []models.PrerequisitePath{{"AAA100"}, {"CCC100"}}},
		{Code: "DDD100", Credits: 4, Category: models.CategoryHumanities},
	}, catalog.Horizon{First: 1, Last: 2}, nil)

	bad := &Plan{Terms: []TermPlan{
		{Term: 1, Courses: []PlannedCourse{{Code: "AAA100"}, {Code: "BBB100"}, {Code: "DDD100"}}},
		{Term: 2, Courses: []PlannedCourse{{Code: "DDD100"}}},
	}}
	if got := bad.Validate(pool, nil); len(got) != 2 {
		t.Fatalf("expected prerequisite and duplicate problems, got %v", got)
	}
	if got := bad.Validate(pool, map[string]bool{"CCC100": true}); len(got) != 1 {
		t.Fatalf("completed alternative must satisfy BBB100, got %v", got)
	}
}
