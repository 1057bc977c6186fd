package builder

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/degreeplan/internal/app/models"
	"github.com/yigit/degreeplan/internal/pkg/satsolver"
	"github.com/yigit/degreeplan/internal/planner/catalog"
	"github.com/yigit/degreeplan/internal/planner/diag"
	"github.com/yigit/degreeplan/internal/planner/model"
)

func course(code string, credits float64, category models.Category, prereqs ...models.PrerequisitePath) models.Course {
	return models.Course{Code: code, Credits: credits, Category: category, Prereqs: prereqs}
}

func pool(first, last int, courses ...models.Course) catalog.CandidatePool {
	return catalog.Widen(catalog.CandidatePool{}, courses, catalog.Horizon{First: first, Last: last}, nil)
}

func looseRules() Rules {
	return Rules{Scale: 10, MaxCredits: 30, TotalSlack: 200}
}

// solveWith fixes the given variables and reports whether the model still
// has a solution.
func solveWith(t *testing.T, out *Output, fixed map[Key]bool) (model.Solution, bool) {
	t.Helper()
	for key, value := range fixed {
		v, ok := out.Var(key)
		if !ok {
			t.Fatalf("no variable for %s", key)
		}
		out.Model.Fix("test "+key.String(), v, value)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sol, err := satsolver.New(zerolog.Nop()).Solve(ctx, out.Model)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if sol.Status == model.StatusUnknown {
		t.Fatalf("solver gave up")
	}
	return sol, sol.Status.HasSolution()
}

func TestBuildAllocatesOneVariablePerCandidate(t *testing.T) {
	p := pool(7, 8,
		course("AAA100", 4, models.CategoryCore),
		course("BBB100", 3, models.CategoryDepartmentElective),
	)
	out := New(p, nil, looseRules(), zerolog.Nop()).Build()

	if len(out.Keys) != 4 || len(out.Vars) != 4 {
		t.Fatalf("expected 4 decision variables, got %d", len(out.Vars))
	}
	for _, key := range []Key{{7, "AAA100"}, {8, "AAA100"}, {7, "BBB100"}, {8, "BBB100"}} {
		if _, ok := out.Var(key); !ok {
			t.Fatalf("missing variable %s", key)
		}
	}
	if len(out.Extended) != 0 {
		t.Fatalf("no extended flags without an extended ceiling")
	}
}

func TestBuildUniqueness(t *testing.T) {
	p := pool(1, 3,
		course("AAA100", 4, models.CategoryCore),
		course("BBB100", 4, models.CategoryHumanities),
	)
	out := New(p, nil, looseRules(), zerolog.Nop()).Build()

	if _, ok := solveWith(t, out, map[Key]bool{{1, "AAA100"}: true, {2, "AAA100"}: true}); ok {
		t.Fatalf("a Core course must not be taken twice")
	}
	if _, ok := solveWith(t, New(p, nil, looseRules(), zerolog.Nop()).Build(), map[Key]bool{{1, "AAA100"}: false, {2, "AAA100"}: false, {3, "AAA100"}: false}); ok {
		t.Fatalf("a Core course must be taken once")
	}
	if _, ok := solveWith(t, New(p, nil, looseRules(), zerolog.Nop()).Build(), map[Key]bool{{1, "BBB100"}: true, {3, "BBB100"}: true}); ok {
		t.Fatalf("an elective must be taken at most once")
	}
	if _, ok := solveWith(t, New(p, nil, looseRules(), zerolog.Nop()).Build(), nil); !ok {
		t.Fatalf("unconstrained model must be feasible")
	}
}

func TestBuildSingleTermCoreIsRequired(t *testing.T) {
	p := pool(8, 8, course("AAA100", 4, models.CategoryCore))
	out := New(p, nil, looseRules(), zerolog.Nop()).Build()

	sol, ok := solveWith(t, out, nil)
	if !ok {
		t.Fatalf("expected a solution")
	}
	if !sol.Value(out.Vars[Key{8, "AAA100"}]) {
		t.Fatalf("the only candidate of a Core course must be taken")
	}
}

func TestBuildPrerequisiteOrdering(t *testing.T) {
	build := func() *Output {
		p := pool(1, 2,
			course("AAA100", 4, models.CategoryCore),
			course("BBB100", 4, models.CategoryCore, models.PrerequisitePath{"AAA100"}),
		)
		return New(p, nil, looseRules(), zerolog.Nop()).Build()
	}

	if _, ok := solveWith(t, build(), map[Key]bool{{1, "AAA100"}: true, {2, "BBB100"}: true}); !ok {
		t.Fatalf("prerequisite taken first must be allowed")
	}
	if _, ok := solveWith(t, build(), map[Key]bool{{2, "AAA100"}: true}); ok {
		t.Fatalf("prerequisite in the same or a later term must be rejected")
	}
	out := build()
	if len(out.Unschedulable) != 0 {
		t.Fatalf("BBB100 is reachable in term 2: %v", out.Unschedulable)
	}
	found := false
	for _, c := range out.Model.Linear() {
		if c.Name == "unreachable BBB100@1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("BBB100 in term 1 must be fixed to zero")
	}
}

func TestBuildAlternativePaths(t *testing.T) {
	build := func() *Output {
		p := pool(1, 3,
			course("AAA100", 4, models.CategoryDepartmentElective),
			course("AAA200", 4, models.CategoryDepartmentElective),
			course("CCC100", 4, models.CategoryDepartmentElective),
			course("DDD100", 4, models.CategoryCore,
				models.PrerequisitePath{"AAA100", "CCC100"},
				models.PrerequisitePath{"AAA200", "CCC100"},
			),
		)
		return New(p, nil, looseRules(), zerolog.Nop()).Build()
	}

	if _, ok := solveWith(t, build(), map[Key]bool{{1, "AAA200"}: true, {2, "CCC100"}: true, {3, "DDD100"}: true}); !ok {
		t.Fatalf("second path must satisfy DDD100")
	}
	if _, ok := solveWith(t, build(), map[Key]bool{{1, "AAA100"}: true, {3, "DDD100"}: true, {1, "CCC100"}: false, {2, "CCC100"}: false}); ok {
		t.Fatalf("a path missing CCC100 must not satisfy DDD100")
	}
}

func TestBuildCompletedPrerequisiteIsVacuous(t *testing.T) {
	p := pool(1, 2, course("BBB100", 4, models.CategoryCore, models.PrerequisitePath{"AAA100"}))
	out := New(p, map[string]bool{"AAA100": true}, looseRules(), zerolog.Nop()).Build()

	if _, ok := solveWith(t, out, map[Key]bool{{1, "BBB100"}: true}); !ok {
		t.Fatalf("completed prerequisite must allow the first term")
	}
}

func TestBuildUnreachableCore(t *testing.T) {
	p := pool(1, 2,
		course("AAA100", 4, models.CategoryCore),
		course("BBB100", 4, models.CategoryCore, models.PrerequisitePath{"ZZZ999"}),
	)
	out := New(p, nil, looseRules(), zerolog.Nop()).Build()

	if len(out.Unschedulable) != 1 || out.Unschedulable[0] != "BBB100" {
		t.Fatalf("unschedulable = %v, want [BBB100]", out.Unschedulable)
	}
	d := Unreachable(out.Unschedulable)
	if d == nil || d.Class != diag.ClassPrerequisiteUnreachable {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if !strings.Contains(d.Message, "BBB100") {
		t.Fatalf("diagnostic must name the course: %s", d.Message)
	}
}

func TestBuildTermBoundsAndExtendedLoad(t *testing.T) {
	rules := Rules{
		Scale:             10,
		MinCredits:        0,
		MaxCredits:        22,
		ExtendedCeiling:   26.5,
		ExtendedAfterTerm: 2,
		MaxExtendedTerms:  1,
		TotalSlack:        100,
	}
	build := func() *Output {
		p := pool(2, 4,
			course("AAA100", 12, models.CategoryCore),
			course("BBB100", 12, models.CategoryCore),
		)
		return New(p, nil, rules, zerolog.Nop()).Build()
	}

	out := build()
	if _, ok := out.Extended[2]; ok {
		t.Fatalf("term 2 must not get an extended flag")
	}
	if len(out.Extended) != 2 {
		t.Fatalf("expected flags for terms 3 and 4, got %v", out.Extended)
	}

	if _, ok := solveWith(t, build(), map[Key]bool{{2, "AAA100"}: true, {2, "BBB100"}: true}); ok {
		t.Fatalf("term 2 cannot exceed the normal ceiling")
	}

	out = build()
	sol, ok := solveWith(t, out, map[Key]bool{{3, "AAA100"}: true, {3, "BBB100"}: true})
	if !ok {
		t.Fatalf("term 3 may use the extended ceiling")
	}
	if !sol.Value(out.Extended[3]) || sol.Value(out.Extended[4]) {
		t.Fatalf("extended flags must match actual load: %v", sol.Values)
	}

	out = build()
	if _, ok := solveWith(t, out, map[Key]bool{{3, "AAA100"}: true, {3, "BBB100"}: false}); !ok {
		t.Fatalf("expected a solution")
	}
	out = build()
	out.Model.Fix("force flag", out.Extended[4], true)
	if _, ok := solveWith(t, out, map[Key]bool{{4, "AAA100"}: false, {4, "BBB100"}: false}); ok {
		t.Fatalf("an extended flag on an empty term must be infeasible")
	}
}

func TestBuildMaxExtendedTerms(t *testing.T) {
	rules := Rules{Scale: 10, MaxCredits: 10, ExtendedCeiling: 20, ExtendedAfterTerm: 0, MaxExtendedTerms: 1, TotalSlack: 100}
	p := pool(1, 2,
		course("AAA100", 8, models.CategoryCore),
		course("BBB100", 8, models.CategoryCore),
		course("CCC100", 8, models.CategoryCore),
		course("DDD100", 8, models.CategoryCore),
	)
	if _, ok := solveWith(t, New(p, nil, rules, zerolog.Nop()).Build(), nil); ok {
		t.Fatalf("32 credits in two terms needs two extended terms, only one allowed")
	}
	rules.MaxExtendedTerms = 2
	if _, ok := solveWith(t, New(p, nil, rules, zerolog.Nop()).Build(), nil); !ok {
		t.Fatalf("two extended terms must be enough")
	}
}

func TestBuildTotalWindow(t *testing.T) {
	rules := Rules{Scale: 10, MaxCredits: 30, TotalTarget: 20, Earned: 12, TotalSlack: 0}
	p := pool(1, 2,
		course("AAA100", 4, models.CategoryDepartmentElective),
		course("BBB100", 4, models.CategoryDepartmentElective),
		course("CCC100", 4, models.CategoryDepartmentElective),
	)
	sol, ok := solveWith(t, New(p, nil, rules, zerolog.Nop()).Build(), nil)
	if !ok {
		t.Fatalf("expected a solution")
	}
	taken := 0
	for _, v := range sol.Values[:6] {
		if v {
			taken++
		}
	}
	if taken != 2 {
		t.Fatalf("8 remaining credits means exactly two courses, got %d", taken)
	}

	low, high := Rules{Scale: 10, TotalTarget: 150, Earned: 160, TotalSlack: 9}.TotalWindow()
	if low != 0 || high != 90 {
		t.Fatalf("window = [%d,%d], want [0,90]", low, high)
	}
}

func TestBuildHumanitiesCapAndFloor(t *testing.T) {
	rules := looseRules()
	rules.HumanitiesPerTerm = 2
	rules.HumanitiesFloor = 12
	p := pool(1, 1,
		course("HUL201", 4, models.CategoryHumanities),
		course("HUL202", 4, models.CategoryHumanities),
		course("HUL203", 4, models.CategoryHumanities),
	)
	if _, ok := solveWith(t, New(p, nil, rules, zerolog.Nop()).Build(), nil); ok {
		t.Fatalf("three Humanities courses in one term exceed the cap")
	}
	rules.HumanitiesDone = 4
	if _, ok := solveWith(t, New(p, nil, rules, zerolog.Nop()).Build(), nil); !ok {
		t.Fatalf("completed Humanities credits must reduce the floor")
	}
}

func TestBuildMinorRules(t *testing.T) {
	rules := looseRules()
	rules.Minor = &MinorRules{Name: "ECO", UniqueFloor: 10, CoreFloor: 3, PerTerm: 1, Completed: 3}
	p := pool(1, 2,
		course("ECO101", 3, models.CategoryMinorCore),
		course("ECO201", 4, models.CategoryMinorElective),
		course("ECO202", 4, models.CategoryMinorElective),
	)

	sol, ok := solveWith(t, New(p, nil, rules, zerolog.Nop()).Build(), nil)
	if !ok {
		t.Fatalf("expected a solution")
	}
	count := 0
	for _, v := range sol.Values[:6] {
		if v {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("one minor course per term over two terms, got %d", count)
	}

	out := New(p, nil, rules, zerolog.Nop()).Build()
	if _, ok := solveWith(t, out, map[Key]bool{{1, "ECO101"}: false, {2, "ECO101"}: false}); ok {
		t.Fatalf("the minor core floor requires ECO101")
	}
}

func TestCheckSupply(t *testing.T) {
	rules := Rules{
		Scale:           10,
		MinCredits:      10,
		TotalTarget:     20,
		HumanitiesFloor: 15,
		HumanitiesDone:  4,
		ElectiveFloor:   4,
		Minor:           &MinorRules{Name: "ECO", UniqueFloor: 10, CoreFloor: 3},
	}
	p := pool(1, 2,
		course("HUL201", 4, models.CategoryHumanities),
		course("COL331", 4, models.CategoryDepartmentElective),
	)

	d := CheckSupply(p, rules)
	if d == nil {
		t.Fatalf("expected an under-supply diagnostic")
	}
	if d.Class != diag.ClassCategoryUnderSupply || !d.Class.Fatal() {
		t.Fatalf("class = %s", d.Class)
	}
	// total, Humanities, minor unique, minor core, two terms
	if len(d.Findings) != 6 {
		t.Fatalf("expected 6 findings, got %d: %v", len(d.Findings), d.Findings)
	}
	if len(d.Recommendations) != len(d.Findings) {
		t.Fatalf("every finding needs a recommendation")
	}

	rules = Rules{Scale: 10, MinCredits: 4, TotalTarget: 8}
	if d := CheckSupply(p, rules); d != nil {
		t.Fatalf("unexpected diagnostic %v", d)
	}
}
