package validation

import (
	"math"
	"regexp"
)

// Validation rule patterns
var (
	// CourseCodeFragment matches a course code anywhere in a string
	CourseCodeFragment = `[A-Z]{3}\d{3}`

	// CourseCodePattern matches a whole course code - 3 letters, 3 digits
	CourseCodePattern = `^` + CourseCodeFragment + `$`

	// PrefixRangePattern matches placeholder tags such as HUL2XX
	PrefixRangePattern = `^([A-Z]{3}\d)XX$`

	// Name validation min/max length
	NameMinLength = 1
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	CourseCode  *regexp.Regexp
	PrefixRange *regexp.Regexp
}{
	CourseCode:  regexp.MustCompile(CourseCodePattern),
	PrefixRange: regexp.MustCompile(PrefixRangePattern),
}

// IsCourseCode reports whether code is a well-formed course code
func IsCourseCode(code string) bool {
	return CompiledPatterns.CourseCode.MatchString(code)
}

// PrefixRange returns the code prefix of a placeholder tag like HUL2XX
func PrefixRange(tag string) (string, bool) {
	m := CompiledPatterns.PrefixRange.FindStringSubmatch(tag)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// String validation
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Required && v.Value == "" {
		return false
	}
	if !v.Required && v.Value == "" {
		return true
	}
	if v.MinLen > 0 && len(v.Value) < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && len(v.Value) > v.MaxLen {
		return false
	}
	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}
	return true
}

// CreditValidation checks a credit amount against an inclusive range
type CreditValidation struct {
	Value float64
	Min   float64
	Max   float64
}

// NewCreditValidation creates a new credit validation
func NewCreditValidation(value float64) *CreditValidation {
	return &CreditValidation{Value: value}
}

// WithRange sets the inclusive bounds; a zero Max means unbounded
func (v *CreditValidation) WithRange(min, max float64) *CreditValidation {
	v.Min = min
	v.Max = max
	return v
}

// Validate performs validation
func (v *CreditValidation) Validate() bool {
	if v.Value < v.Min {
		return false
	}
	if v.Max != 0 && v.Value > v.Max {
		return false
	}
	// one decimal place at most
	scaled := v.Value * 10
	return math.Abs(scaled-math.Round(scaled)) < 1e-6
}
