package models

import (
	"fmt"
	"strings"
)

// Category classifies a course inside a student's plan.
type Category string

const (
	CategoryCore               Category = "Core"
	CategoryDepartmentElective Category = "DepartmentElective"
	CategoryHumanities         Category = "Humanities"
	CategoryMinorCore          Category = "MinorCore"
	CategoryMinorElective      Category = "MinorElective"
)

// Categories lists every category in plan display order.
var Categories = []Category{
	CategoryCore,
	CategoryMinorCore,
	CategoryMinorElective,
	CategoryDepartmentElective,
	CategoryHumanities,
}

// categoryAliases accepts the short tags used by curriculum files.
var categoryAliases = map[string]Category{
	"core":               CategoryCore,
	"departmentelective": CategoryDepartmentElective,
	"de":                 CategoryDepartmentElective,
	"humanities":         CategoryHumanities,
	"hul":                CategoryHumanities,
	"minorcore":          CategoryMinorCore,
	"minor_core":         CategoryMinorCore,
	"minorelective":      CategoryMinorElective,
	"minor_elective":     CategoryMinorElective,
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown course category %q", s)
	}
	return c, nil
}

// IsValid reports whether c is one of the declared categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// IsMinor reports whether the category belongs to a minor program.
func (c Category) IsMinor() bool {
	return c == CategoryMinorCore || c == CategoryMinorElective
}

// CountsAsProgram reports whether the category makes a minor course overlap
// with the home program.
func (c Category) CountsAsProgram() bool {
	return c == CategoryCore || c == CategoryDepartmentElective
}

// Rank orders categories for display.
func (c Category) Rank() int {
	for i, known := range Categories {
		if c == known {
			return i
		}
	}
	return len(Categories)
}
