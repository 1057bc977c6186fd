package builder

import (
	"fmt"
	"strings"

	"github.com/yigit/degreeplan/internal/app/models"
	"github.com/yigit/degreeplan/internal/planner/catalog"
	"github.com/yigit/degreeplan/internal/planner/diag"
)

// CheckSupply compares what the pool can offer at most against every
// credit floor. It returns nil when no floor is out of reach.
func CheckSupply(pool catalog.CandidatePool, rules Rules) *diag.Diagnostic {
	if rules.Scale <= 0 {
		rules.Scale = 10
	}
	supply := make(map[models.Category]int)
	total := 0
	for _, c := range pool.Unique() {
		credits := c.ScaledCredits(rules.Scale)
		supply[c.Category] += credits
		total += credits
	}
	unscale := func(v int) float64 { return float64(v) / float64(rules.Scale) }

	d := &diag.Diagnostic{Class: diag.ClassCategoryUnderSupply}
	short := func(what string, offered, need int, hint string) {
		if offered >= need {
			return
		}
		d.Findings = append(d.Findings, fmt.Sprintf("%s: %.1f credits available, %.1f needed", what, unscale(offered), unscale(need)))
		d.Recommendations = append(d.Recommendations, hint)
	}

	low, _ := rules.TotalWindow()
	short("total credits", total, low, "lower the total credit target or extend the planning horizon")
	short("Humanities", supply[models.CategoryHumanities], rules.Remaining(rules.HumanitiesFloor, rules.HumanitiesDone), "add Humanities placeholders to the curriculum or lower the Humanities floor")
	short("department electives", supply[models.CategoryDepartmentElective], rules.Remaining(rules.ElectiveFloor, rules.ElectiveDone), "add department electives to the program or lower the elective floor")

	if mr := rules.Minor; mr != nil {
		minor := supply[models.CategoryMinorCore] + supply[models.CategoryMinorElective]
		short("minor "+mr.Name+" unique credits", minor, rules.Remaining(mr.UniqueFloor, mr.Completed), "choose a minor with less overlap or lower its unique credit floor")
		if mr.CoreFloor > 0 {
			short("minor "+mr.Name+" core credits", supply[models.CategoryMinorCore], rules.Remaining(mr.CoreFloor, mr.CompletedCore), "minor core courses overlap the program; review the minor's core list")
		}
	}

	minimum := rules.scale(rules.MinCredits)
	for _, t := range pool.Terms() {
		offered := 0
		for _, c := range pool.Courses(t) {
			offered += c.ScaledCredits(rules.Scale)
		}
		short(fmt.Sprintf("term %d load", t), offered, minimum, "lower the per-term minimum credit load")
	}

	if len(d.Findings) == 0 {
		return nil
	}
	d.Message = fmt.Sprintf("%d credit requirement(s) exceed what the candidate pool can supply", len(d.Findings))
	return d
}

// Unreachable reports Core courses that can never satisfy their
// prerequisites inside the horizon.
func Unreachable(codes []string) *diag.Diagnostic {
	if len(codes) == 0 {
		return nil
	}
	d := &diag.Diagnostic{
		Class:   diag.ClassPrerequisiteUnreachable,
		Message: fmt.Sprintf("required course(s) %s have no prerequisite path that can be completed in time", strings.Join(codes, ", ")),
	}
	for _, code := range codes {
		d.Findings = append(d.Findings, code+": every prerequisite path needs a course that is neither completed nor schedulable earlier")
	}
	d.Recommendations = append(d.Recommendations,
		"record the missing prerequisites as completed if they were taken elsewhere",
		"add the missing prerequisite courses to the curriculum")
	return d
}
