// Package overlap decides which minor courses double-count against the home
// program.
package overlap

import (
	"github.com/yigit/degreeplan/internal/app/models"
	"github.com/yigit/degreeplan/internal/planner/catalog"
	"github.com/yigit/degreeplan/internal/planner/diag"
)

// Entry is one overlapping course.
type Entry struct {
	Code    string  `json:"code" yaml:"code"`
	Credits float64 `json:"credits" yaml:"credits"`
}

// Result splits a minor's courses into overlapping and counting courses.
type Result struct {
	Overlapping    []Entry  `json:"overlapping" yaml:"overlapping"`
	OverlapCredits float64  `json:"overlapCredits" yaml:"overlap_credits"`
	NonOverlapping []string `json:"nonOverlapping" yaml:"non_overlapping"`

	// Credits of non-overlapping minor courses the student already holds.
	CompletedCore     float64 `json:"completedCore" yaml:"completed_core"`
	CompletedElective float64 `json:"completedElective" yaml:"completed_elective"`
}

// Completed returns all completed minor credits.
func (r Result) Completed() float64 {
	return r.CompletedCore + r.CompletedElective
}

// Resolve checks every minor course against the resolved program courses.
// A course overlaps only when the program lists it as Core or
// DepartmentElective.
func Resolve(minor models.Minor, program []models.Course, completed map[string]bool) Result {
	counted := make(map[string]bool, len(program))
	for _, c := range program {
		if c.Category.CountsAsProgram() {
			counted[c.Code] = true
		}
	}

	var res Result
	seen := make(map[string]bool)
	visit := func(mc models.MinorCourse, core bool) {
		if seen[mc.Code] {
			return
		}
		seen[mc.Code] = true
		if counted[mc.Code] {
			res.Overlapping = append(res.Overlapping, Entry{Code: mc.Code, Credits: mc.Credits})
			res.OverlapCredits += mc.Credits
			return
		}
		res.NonOverlapping = append(res.NonOverlapping, mc.Code)
		if !completed[mc.Code] {
			return
		}
		if core {
			res.CompletedCore += mc.Credits
		} else {
			res.CompletedElective += mc.Credits
		}
	}
	for _, mc := range minor.CoreCourses {
		visit(mc, true)
	}
	for _, mc := range minor.ElectiveCourses {
		visit(mc, false)
	}
	return res
}

// Candidates builds minor-tagged courses for every non-overlapping code.
// Catalog data is preferred; a course the catalog lacks is built from the
// minor listing with no prerequisites.
func Candidates(minor models.Minor, res Result, asm *catalog.Assembler) ([]models.Course, diag.Warnings) {
	listed := make(map[string]models.MinorCourse)
	core := make(map[string]bool)
	for _, mc := range minor.CoreCourses {
		if _, ok := listed[mc.Code]; !ok {
			listed[mc.Code] = mc
			core[mc.Code] = true
		}
	}
	for _, mc := range minor.ElectiveCourses {
		if _, ok := listed[mc.Code]; !ok {
			listed[mc.Code] = mc
		}
	}

	var warnings diag.Warnings
	courses := make([]models.Course, 0, len(res.NonOverlapping))
	for _, code := range res.NonOverlapping {
		category := models.CategoryMinorElective
		if core[code] {
			category = models.CategoryMinorCore
		}
		course, ws, ok := asm.Course(code, category)
		if !ok {
			mc := listed[code]
			warnings.Add(diag.ClassInputData, code, "minor %q course not in catalog, using minor listing", minor.Name)
			course = models.NewCourse(models.CatalogCourse{
				Code:    mc.Code,
				Name:    mc.Name,
				Credits: mc.Credits,
				Hours:   mc.Hours,
			}, category, nil)
		}
		if ok && course.Credits != listed[code].Credits && listed[code].Credits != 0 {
			warnings.Add(diag.ClassInputData, code, "minor lists %.1f credits, catalog has %.1f, catalog used", listed[code].Credits, course.Credits)
		}
		warnings.Extend(ws)
		courses = append(courses, course)
	}
	return courses, warnings
}
