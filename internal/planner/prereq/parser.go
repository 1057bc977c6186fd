// Package prereq turns textual prerequisite expressions into alternative
// course sets (disjunctive normal form).
//
// The accepted grammar is a sequence of terms joined by "and"; a term is a
// course code or a parenthesised group of codes joined by "or":
//
//	[ELL101 and ELL202 and (ELL211 or ELL231)]
//
// Parsing never fails. Fragments that yield no course code are dropped and
// reported as warnings.
package prereq

import (
	"regexp"
	"strings"

	"github.com/yigit/degreeplan/internal/app/models"
	"github.com/yigit/degreeplan/internal/pkg/validation"
	"github.com/yigit/degreeplan/internal/planner/diag"
)

var (
	codePattern  = regexp.MustCompile(validation.CourseCodeFragment)
	groupPattern = regexp.MustCompile(`\(([^()]*)\)`)
	orPattern    = regexp.MustCompile(`(?i)\s+or\s+`)
)

// Result is the outcome of parsing one expression.
type Result struct {
	Paths    []models.PrerequisitePath
	Warnings diag.Warnings
}

// Parse expands raw into its alternative prerequisite paths. An empty or
// placeholder expression ("", "[]", "None") yields no paths.
func Parse(raw string) Result {
	var res Result

	expr := strings.TrimSpace(raw)
	if isEmptyExpression(expr) {
		return res
	}
	if strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]") {
		expr = strings.TrimSpace(expr[1 : len(expr)-1])
	}
	if expr == "" {
		return res
	}

	var required []string
	var groups [][]string

	for _, part := range splitAnd(expr) {
		part = strings.TrimSpace(part)
		if part == "" {
			res.Warnings.Add(diag.ClassParseAmbiguity, raw, "empty term between \"and\" keywords dropped")
			continue
		}

		matches := groupPattern.FindAllStringSubmatch(part, -1)
		if len(matches) == 0 {
			codes := codePattern.FindAllString(part, -1)
			if len(codes) == 0 {
				res.Warnings.Add(diag.ClassParseAmbiguity, raw, "term %q contains no course code, dropped", part)
				continue
			}
			if len(codes) > 1 {
				res.Warnings.Add(diag.ClassParseAmbiguity, raw, "term %q lists %d codes without a keyword, all required", part, len(codes))
			}
			required = append(required, codes...)
			continue
		}

		for _, m := range matches {
			group := parseGroup(m[1], raw, &res.Warnings)
			if len(group) == 0 {
				res.Warnings.Add(diag.ClassParseAmbiguity, raw, "group %q contains no course code, dropped", m[0])
				continue
			}
			groups = append(groups, group)
		}

		if outside := codePattern.FindAllString(groupPattern.ReplaceAllString(part, " "), -1); len(outside) > 0 {
			res.Warnings.Add(diag.ClassParseAmbiguity, raw, "codes %v outside a group in %q treated as required", outside, part)
			required = append(required, outside...)
		}
	}

	res.Paths = expand(required, groups)
	return res
}

// Paths is Parse without the warnings.
func Paths(raw string) []models.PrerequisitePath {
	return Parse(raw).Paths
}

func isEmptyExpression(expr string) bool {
	switch strings.ToLower(expr) {
	case "", "[]", "none", "null", "-":
		return true
	}
	return false
}

// parseGroup extracts one code per "or" alternative.
func parseGroup(content, raw string, warnings *diag.Warnings) []string {
	var group []string
	for _, alt := range orPattern.Split(strings.TrimSpace(content), -1) {
		codes := codePattern.FindAllString(alt, -1)
		switch {
		case len(codes) == 0:
			if strings.TrimSpace(alt) != "" {
				warnings.Add(diag.ClassParseAmbiguity, raw, "alternative %q contains no course code, dropped", alt)
			}
		case len(codes) > 1:
			warnings.Add(diag.ClassParseAmbiguity, raw, "alternative %q lists %d codes, only %s kept", alt, len(codes), codes[0])
			group = append(group, codes[0])
		default:
			group = append(group, codes[0])
		}
	}
	return group
}

// splitAnd splits expr on the keyword "and" outside parentheses.
func splitAnd(expr string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '(':
			depth++
			continue
		case ')':
			if depth > 0 {
				depth--
			}
			continue
		}
		if depth == 0 && isKeywordAt(expr, i, "and") {
			parts = append(parts, expr[start:i])
			start = i + len("and")
			i = start - 1
		}
	}
	return append(parts, expr[start:])
}

func isKeywordAt(s string, i int, kw string) bool {
	if i+len(kw) > len(s) || !strings.EqualFold(s[i:i+len(kw)], kw) {
		return false
	}
	if i > 0 && !isBoundary(s[i-1]) {
		return false
	}
	end := i + len(kw)
	return end == len(s) || isBoundary(s[end])
}

func isBoundary(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '(' || b == ')'
}

// expand returns the Cartesian product of the OR groups, each combination
// prefixed with the required codes.
func expand(required []string, groups [][]string) []models.PrerequisitePath {
	if len(groups) == 0 {
		if len(required) == 0 {
			return nil
		}
		return []models.PrerequisitePath{dedupe(required)}
	}

	combos := [][]string{nil}
	for _, group := range groups {
		next := make([][]string, 0, len(combos)*len(group))
		for _, combo := range combos {
			for _, alt := range group {
				c := make([]string, len(combo), len(combo)+1)
				copy(c, combo)
				next = append(next, append(c, alt))
			}
		}
		combos = next
	}

	paths := make([]models.PrerequisitePath, 0, len(combos))
	for _, combo := range combos {
		path := make([]string, 0, len(required)+len(combo))
		path = append(path, required...)
		path = append(path, combo...)
		paths = append(paths, dedupe(path))
	}
	return paths
}

func dedupe(codes []string) models.PrerequisitePath {
	seen := make(map[string]bool, len(codes))
	out := make(models.PrerequisitePath, 0, len(codes))
	for _, code := range codes {
		if seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}
