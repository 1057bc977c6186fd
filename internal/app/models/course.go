package models

import (
	"math"
	"sort"
)

// HourBreakdown is weekly contact time. It never influences scheduling.
type HourBreakdown struct {
	Lecture   float64 `json:"lecture" yaml:"lecture"`
	Tutorial  float64 `json:"tutorial" yaml:"tutorial"`
	Practical float64 `json:"practical" yaml:"practical"`
}

// CatalogCourse is a raw catalog record as loaded from a catalog source.
type CatalogCourse struct {
	Code    string         `json:"code" yaml:"code" db:"code"`
	Name    string         `json:"name" yaml:"name" db:"name"`
	Credits float64        `json:"credits" yaml:"credits" db:"credits"`
	Prereqs string         `json:"prereqs,omitempty" yaml:"prereqs" db:"prereqs"`
	Hours   *HourBreakdown `json:"hours,omitempty" yaml:"hours,omitempty"`
}

// PrerequisitePath is one alternative set of courses; completing every code
// in any single path satisfies the requirement.
type PrerequisitePath []string

// Course is the canonical, categorised view of a catalog course used by the
// planner. Values are never modified after construction.
type Course struct {
	Code       string             `json:"code" yaml:"code"`
	Name       string             `json:"name" yaml:"name"`
	Credits    float64            `json:"credits" yaml:"credits"`
	Category   Category           `json:"category" yaml:"category"`
	RawPrereqs string             `json:"prereqs,omitempty" yaml:"prereqs,omitempty"`
	Prereqs    []PrerequisitePath `json:"prereqsParsed,omitempty" yaml:"prereqs_parsed,omitempty"`
	Hours      *HourBreakdown     `json:"hours,omitempty" yaml:"hours,omitempty"`
}

// NewCourse builds a Course from a catalog record. The parsed prerequisite
// paths are copied so the caller's slices can be reused.
func NewCourse(entry CatalogCourse, category Category, prereqs []PrerequisitePath) Course {
	course := Course{
		Code:       entry.Code,
		Name:       entry.Name,
		Credits:    entry.Credits,
		Category:   category,
		RawPrereqs: entry.Prereqs,
		Prereqs:    clonePaths(prereqs),
	}
	if entry.Hours != nil {
		hours := *entry.Hours
		course.Hours = &hours
	}
	return course
}

// WithCategory returns a copy of c tagged with another category.
func (c Course) WithCategory(category Category) Course {
	c.Category = category
	c.Prereqs = clonePaths(c.Prereqs)
	if c.Hours != nil {
		hours := *c.Hours
		c.Hours = &hours
	}
	return c
}

// ScaledCredits returns the credit value multiplied by scale and rounded to
// the nearest integer.
func (c Course) ScaledCredits(scale int) int {
	return ScaleCredits(c.Credits, scale)
}

// ScaleCredits converts a one-decimal credit value to integer units.
func ScaleCredits(credits float64, scale int) int {
	return int(math.Round(credits * float64(scale)))
}

func clonePaths(paths []PrerequisitePath) []PrerequisitePath {
	if len(paths) == 0 {
		return nil
	}
	out := make([]PrerequisitePath, len(paths))
	for i, p := range paths {
		out[i] = append(PrerequisitePath(nil), p...)
	}
	return out
}

// Catalog maps course codes to catalog records.
type Catalog map[string]CatalogCourse

// Lookup returns the record for code.
func (c Catalog) Lookup(code string) (CatalogCourse, bool) {
	entry, ok := c[code]
	return entry, ok
}

// Codes returns all catalog codes in ascending order.
func (c Catalog) Codes() []string {
	codes := make([]string, 0, len(c))
	for code := range c {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
