// Package diag holds the warning and diagnostic taxonomy shared by every
// planning stage.
package diag

import (
	"fmt"
	"strings"
)

// Class identifies a kind of planning problem.
type Class string

const (
	// Non-fatal: aggregated as warnings.
	ClassInputData           Class = "InputDataError"
	ClassParseAmbiguity      Class = "PrerequisiteParseAmbiguity"
	ClassCategoryConflict    Class = "CategoryConflict"
	ClassCategoryUnderSupply Class = "CategoryUnderSupply"

	// Fatal for a run.
	ClassPrerequisiteUnreachable Class = "PrerequisiteUnreachable"
	ClassModelInfeasible         Class = "ModelInfeasible"
	ClassModelUnknown            Class = "ModelUnknown"
)

// Fatal reports whether a diagnostic of this class ends the run.
func (c Class) Fatal() bool {
	switch c {
	case ClassCategoryUnderSupply, ClassPrerequisiteUnreachable, ClassModelInfeasible, ClassModelUnknown:
		return true
	}
	return false
}

// Warning is a recoverable problem found while preparing the model.
type Warning struct {
	Class   Class  `json:"class" yaml:"class"`
	Subject string `json:"subject,omitempty" yaml:"subject,omitempty"`
	Message string `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	if w.Subject == "" {
		return fmt.Sprintf("%s: %s", w.Class, w.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", w.Class, w.Subject, w.Message)
}

// Warnings accumulates warnings across stages.
type Warnings []Warning

// Add appends a formatted warning.
func (ws *Warnings) Add(class Class, subject, format string, args ...interface{}) {
	*ws = append(*ws, Warning{Class: class, Subject: subject, Message: fmt.Sprintf(format, args...)})
}

// Extend appends other warnings.
func (ws *Warnings) Extend(other []Warning) {
	*ws = append(*ws, other...)
}

// Count returns the number of warnings of class c.
func (ws Warnings) Count(c Class) int {
	n := 0
	for _, w := range ws {
		if w.Class == c {
			n++
		}
	}
	return n
}

// Diagnostic explains why a run produced no plan.
type Diagnostic struct {
	Class           Class    `json:"class" yaml:"class"`
	Message         string   `json:"message" yaml:"message"`
	Findings        []string `json:"findings,omitempty" yaml:"findings,omitempty"`
	Recommendations []string `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", d.Class, d.Message)
	for _, f := range d.Findings {
		fmt.Fprintf(&b, "; %s", f)
	}
	return b.String()
}
