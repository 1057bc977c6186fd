package catalog

import (
	"sort"

	"github.com/yigit/degreeplan/internal/app/models"
)

// Horizon is the inclusive range of terms still to be planned.
type Horizon struct {
	First int `json:"first" yaml:"first"`
	Last  int `json:"last" yaml:"last"`
}

// Valid reports whether the horizon contains at least one term.
func (h Horizon) Valid() bool {
	return h.First >= 1 && h.Last >= h.First
}

// Len returns the number of terms in the horizon.
func (h Horizon) Len() int {
	if !h.Valid() {
		return 0
	}
	return h.Last - h.First + 1
}

// Span returns the terms a course of the given category may be placed in.
// Every category is currently widened over the whole horizon.
func (h Horizon) Span(models.Category) []int {
	terms := make([]int, 0, h.Len())
	for t := h.First; t <= h.Last; t++ {
		terms = append(terms, t)
	}
	return terms
}

// CandidatePool maps terms to the courses eligible in them. A course listed
// in several terms is one course with flexible placement. Pools are never
// modified in place; Widen returns a new pool.
type CandidatePool struct {
	order   []string
	courses map[string]models.Course
	terms   map[string][]int
}

// Widen returns a copy of base where every course not in completed becomes
// a candidate in each term of its horizon span. A course whose code is
// already pooled replaces the pooled entry.
func Widen(base CandidatePool, courses []models.Course, horizon Horizon, completed map[string]bool) CandidatePool {
	pool := base.clone()
	for _, course := range courses {
		if completed[course.Code] {
			continue
		}
		span := horizon.Span(course.Category)
		if len(span) == 0 {
			continue
		}
		if _, exists := pool.courses[course.Code]; !exists {
			pool.order = append(pool.order, course.Code)
		}
		pool.courses[course.Code] = course
		pool.terms[course.Code] = span
	}
	return pool
}

func (p CandidatePool) clone() CandidatePool {
	out := CandidatePool{
		order:   append([]string(nil), p.order...),
		courses: make(map[string]models.Course, len(p.courses)),
		terms:   make(map[string][]int, len(p.terms)),
	}
	for code, c := range p.courses {
		out.courses[code] = c
	}
	for code, ts := range p.terms {
		out.terms[code] = append([]int(nil), ts...)
	}
	return out
}

// Terms returns, in ascending order, every term with at least one candidate.
func (p CandidatePool) Terms() []int {
	seen := make(map[int]bool)
	var terms []int
	for _, ts := range p.terms {
		for _, t := range ts {
			if !seen[t] {
				seen[t] = true
				terms = append(terms, t)
			}
		}
	}
	sort.Ints(terms)
	return terms
}

// Courses returns the candidates of term in pool order.
func (p CandidatePool) Courses(term int) []models.Course {
	var out []models.Course
	for _, code := range p.order {
		if containsTerm(p.terms[code], term) {
			out = append(out, p.courses[code])
		}
	}
	return out
}

// Lookup returns the course for code if it is a candidate in term.
func (p CandidatePool) Lookup(term int, code string) (models.Course, bool) {
	if !containsTerm(p.terms[code], term) {
		return models.Course{}, false
	}
	return p.courses[code], true
}

// Course returns the canonical course for code.
func (p CandidatePool) Course(code string) (models.Course, bool) {
	c, ok := p.courses[code]
	return c, ok
}

// TermsOf returns the terms in which code is a candidate.
func (p CandidatePool) TermsOf(code string) []int {
	return append([]int(nil), p.terms[code]...)
}

// Codes returns every pooled code in insertion order.
func (p CandidatePool) Codes() []string {
	return append([]string(nil), p.order...)
}

// Unique returns every pooled course once, in insertion order.
func (p CandidatePool) Unique() []models.Course {
	out := make([]models.Course, 0, len(p.order))
	for _, code := range p.order {
		out = append(out, p.courses[code])
	}
	return out
}

// Size returns the number of (term, course) pairs.
func (p CandidatePool) Size() int {
	n := 0
	for _, ts := range p.terms {
		n += len(ts)
	}
	return n
}

func containsTerm(terms []int, term int) bool {
	for _, t := range terms {
		if t == term {
			return true
		}
	}
	return false
}
