// Package catalog resolves a program curriculum against the course catalog
// and builds the candidate pool the model is constructed from.
package catalog

import (
	"strconv"
	"strings"

	"github.com/yigit/degreeplan/internal/app/models"
	"github.com/yigit/degreeplan/internal/pkg/validation"
	"github.com/yigit/degreeplan/internal/planner/diag"
	"github.com/yigit/degreeplan/internal/planner/prereq"
)

// DepartmentElectiveTag is the built-in placeholder for the program's
// department elective list.
const DepartmentElectiveTag = "DE"

// Progress summarises credits a student already holds in the program.
type Progress struct {
	Earned             float64 `json:"earned" yaml:"earned"`
	Humanities         float64 `json:"humanities" yaml:"humanities"`
	DepartmentElective float64 `json:"departmentElective" yaml:"department_elective"`
}

// Assembly is the output of Assemble.
type Assembly struct {
	// Program lists every resolved curriculum course once, completed
	// courses included, in curriculum order.
	Program   []models.Course
	Pool      CandidatePool
	Horizon   Horizon
	Completed map[string]bool
	Progress  Progress
	Warnings  diag.Warnings
}

// Assembler resolves curricula against one catalog. Parsed prerequisites
// are memoised per code.
type Assembler struct {
	catalog models.Catalog
	parsed  map[string]prereq.Result
}

// NewAssembler creates an assembler over cat.
func NewAssembler(cat models.Catalog) *Assembler {
	return &Assembler{
		catalog: cat,
		parsed:  make(map[string]prereq.Result),
	}
}

// Course builds the canonical course for a catalog code. Parse warnings
// for the code are returned the first time it is seen.
func (a *Assembler) Course(code string, category models.Category) (models.Course, diag.Warnings, bool) {
	entry, ok := a.catalog.Lookup(code)
	if !ok {
		return models.Course{}, nil, false
	}
	res, seen := a.parsed[code]
	if !seen {
		res = prereq.Parse(entry.Prereqs)
		a.parsed[code] = res
	}
	course := models.NewCourse(entry, category, res.Paths)
	if seen {
		return course, nil, true
	}
	warnings := make(diag.Warnings, len(res.Warnings))
	for i, w := range res.Warnings {
		w.Subject = code
		warnings[i] = w
	}
	return course, warnings, true
}

// Assemble resolves program for profile over horizon.
func (a *Assembler) Assemble(program models.Program, profile models.StudentProfile, horizon Horizon) Assembly {
	out := Assembly{
		Horizon:   horizon,
		Completed: profile.Completed.All(),
	}

	index := make(map[string]int)
	add := func(code string, category models.Category, origin string) {
		if i, ok := index[code]; ok {
			existing := out.Program[i]
			if existing.Category == category {
				return
			}
			if category == models.CategoryCore {
				out.Warnings.Add(diag.ClassCategoryConflict, code, "listed as %s and Core (%s), kept as Core", existing.Category, origin)
				out.Program[i] = existing.WithCategory(models.CategoryCore)
				return
			}
			out.Warnings.Add(diag.ClassCategoryConflict, code, "listed as %s and %s (%s), kept as %s", existing.Category, category, origin, existing.Category)
			return
		}
		course, warnings, ok := a.Course(code, category)
		if !ok {
			out.Warnings.Add(diag.ClassInputData, code, "referenced by %s but not found in catalog, skipped", origin)
			return
		}
		out.Warnings.Extend(warnings)
		index[code] = len(out.Program)
		out.Program = append(out.Program, course)
	}

	for termIdx, entries := range program.Terms {
		for _, entry := range entries {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			origin := "curriculum term " + strconv.Itoa(termIdx+1)
			if _, ok := a.catalog.Lookup(entry); ok {
				add(entry, models.CategoryCore, origin)
				continue
			}
			codes, category, ok := a.expand(program, entry)
			if !ok {
				out.Warnings.Add(diag.ClassInputData, entry, "referenced by %s but not found in catalog, skipped", origin)
				continue
			}
			for _, code := range codes {
				add(code, category, "placeholder "+entry)
			}
		}
	}

	for code := range out.Completed {
		if _, ok := a.catalog.Lookup(code); !ok {
			out.Warnings.Add(diag.ClassInputData, code, "completed course not found in catalog")
		}
	}

	humanities := toSet(profile.Completed.Humanities)
	electives := toSet(profile.Completed.DepartmentElective)
	for _, c := range out.Program {
		if !out.Completed[c.Code] {
			continue
		}
		out.Progress.Earned += c.Credits
		if humanities[c.Code] {
			out.Progress.Humanities += c.Credits
		}
		if electives[c.Code] {
			out.Progress.DepartmentElective += c.Credits
		}
	}

	out.Pool = Widen(CandidatePool{}, out.Program, horizon, out.Completed)
	return out
}

// expand resolves a placeholder tag to catalog codes.
func (a *Assembler) expand(program models.Program, tag string) ([]string, models.Category, bool) {
	if ph, ok := program.Placeholder(tag); ok {
		if ph.Prefix != "" {
			return a.withPrefix(ph.Prefix), ph.Category, true
		}
		return ph.Codes, ph.Category, true
	}
	if tag == DepartmentElectiveTag {
		return program.DepartmentElectives, models.CategoryDepartmentElective, true
	}
	if prefix, ok := validation.PrefixRange(tag); ok {
		return a.withPrefix(prefix), models.CategoryHumanities, true
	}
	return nil, "", false
}

func (a *Assembler) withPrefix(prefix string) []string {
	var codes []string
	for _, code := range a.catalog.Codes() {
		if strings.HasPrefix(code, prefix) {
			codes = append(codes, code)
		}
	}
	return codes
}

func toSet(codes []string) map[string]bool {
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set
}
