// Package builder translates a candidate pool and the degree rules into a
// 0-1 constraint model. It performs no search.
package builder

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/degreeplan/internal/app/models"
	"github.com/yigit/degreeplan/internal/planner/catalog"
	"github.com/yigit/degreeplan/internal/planner/model"
)

// Key identifies a decision variable: take Code in Term.
type Key struct {
	Term int
	Code string
}

func (k Key) String() string {
	return fmt.Sprintf("%s@%d", k.Code, k.Term)
}

// MinorRules carries the requirements of an active minor. Completed
// credits count non-overlapping minor courses already passed.
type MinorRules struct {
	Name          string
	UniqueFloor   float64
	CoreFloor     float64
	PerTerm       int
	Completed     float64
	CompletedCore float64
}

// Rules are the credit and category rules for one build. Credit values
// are in catalog units and scaled by Scale when emitted.
type Rules struct {
	Scale int

	MinCredits float64
	MaxCredits float64

	// Terms after ExtendedAfterTerm may carry up to ExtendedCeiling
	// credits; at most MaxExtendedTerms of them.
	ExtendedCeiling   float64
	ExtendedAfterTerm int
	MaxExtendedTerms  int

	TotalTarget float64
	TotalSlack  float64
	Earned      float64

	HumanitiesPerTerm int
	HumanitiesFloor   float64
	HumanitiesDone    float64
	ElectiveFloor     float64
	ElectiveDone      float64

	Minor *MinorRules
}

func (r Rules) scale(credits float64) int {
	return models.ScaleCredits(credits, r.Scale)
}

// TotalWindow returns the scaled [low, high] window for the horizon total.
func (r Rules) TotalWindow() (int, int) {
	need := r.scale(r.TotalTarget) - r.scale(r.Earned)
	if need < 0 {
		need = 0
	}
	return need, need + r.scale(r.TotalSlack)
}

// Remaining returns the scaled credits still needed for a floor.
func (r Rules) Remaining(floor, done float64) int {
	if rest := r.scale(floor) - r.scale(done); rest > 0 {
		return rest
	}
	return 0
}

// Output is a built model plus the lookup tables needed to read a
// solution back.
type Output struct {
	Model    *model.Model
	Pool     catalog.CandidatePool
	Keys     []Key
	Vars     map[Key]model.VarID
	Extended map[int]model.VarID

	// Unschedulable lists Core codes whose every candidate was fixed to
	// zero because no prerequisite path can be satisfied in time.
	Unschedulable []string
}

// Var returns the decision variable of key.
func (o *Output) Var(key Key) (model.VarID, bool) {
	v, ok := o.Vars[key]
	return v, ok
}

// Builder emits the constraint groups in a fixed order.
type Builder struct {
	rules     Rules
	pool      catalog.CandidatePool
	completed map[string]bool
	logger    zerolog.Logger

	m        *model.Model
	out      *Output
	earlier  map[Key]model.VarID
	terms    []int
	fixedOff map[model.VarID]bool
}

// New prepares a builder for pool. completed holds every code the student
// has passed.
func New(pool catalog.CandidatePool, completed map[string]bool, rules Rules, logger zerolog.Logger) *Builder {
	if rules.Scale <= 0 {
		rules.Scale = 10
	}
	return &Builder{
		rules:     rules,
		pool:      pool,
		completed: completed,
		logger:    logger.With().Str("component", "builder").Logger(),
	}
}

// Build allocates the decision variables and emits every constraint.
func (b *Builder) Build() *Output {
	b.m = model.New()
	b.out = &Output{
		Model:    b.m,
		Pool:     b.pool,
		Vars:     make(map[Key]model.VarID),
		Extended: make(map[int]model.VarID),
	}
	b.earlier = make(map[Key]model.VarID)
	b.fixedOff = make(map[model.VarID]bool)
	b.terms = b.pool.Terms()

	for _, t := range b.terms {
		for _, c := range b.pool.Courses(t) {
			key := Key{Term: t, Code: c.Code}
			b.out.Keys = append(b.out.Keys, key)
			b.out.Vars[key] = b.m.NewBool("x[" + key.String() + "]")
		}
	}

	b.termCredits()
	b.totalCredits()
	b.humanitiesCap()
	b.prerequisites()
	b.uniqueness()
	b.categoryFloors()
	b.minor()

	b.logger.Debug().
		Int("terms", len(b.terms)).
		Int("variables", b.m.NumVars()).
		Int("constraints", b.m.NumConstraints()).
		Msg("model built")
	return b.out
}

func (b *Builder) credits(filter func(models.Course) bool) []model.Term {
	var terms []model.Term
	for _, key := range b.out.Keys {
		c, _ := b.pool.Lookup(key.Term, key.Code)
		if filter == nil || filter(c) {
			terms = append(terms, model.Term{Var: b.out.Vars[key], Coef: c.ScaledCredits(b.rules.Scale)})
		}
	}
	return terms
}

func (b *Builder) termTerms(t int, filter func(models.Course) bool, count bool) []model.Term {
	var terms []model.Term
	for _, c := range b.pool.Courses(t) {
		if filter != nil && !filter(c) {
			continue
		}
		coef := 1
		if !count {
			coef = c.ScaledCredits(b.rules.Scale)
		}
		terms = append(terms, model.Term{Var: b.out.Vars[Key{Term: t, Code: c.Code}], Coef: coef})
	}
	return terms
}

// termCredits bounds every term's load. Eligible terms get an extended-load
// flag that is true exactly when the load exceeds the normal ceiling.
func (b *Builder) termCredits() {
	r := b.rules
	low, high := r.scale(r.MinCredits), r.scale(r.MaxCredits)
	ceiling := r.scale(r.ExtendedCeiling)
	canExtend := r.MaxExtendedTerms > 0 && ceiling > high

	var flags []model.Term
	for _, t := range b.terms {
		load := b.termTerms(t, nil, false)
		name := fmt.Sprintf("term %d", t)
		if low > 0 {
			b.m.Add(name+" min credits", load, model.GE, low)
		}
		if !canExtend || t <= r.ExtendedAfterTerm {
			b.m.Add(name+" max credits", load, model.LE, high)
			continue
		}
		ext := b.m.NewBool(fmt.Sprintf("extended[%d]", t))
		b.out.Extended[t] = ext
		flags = append(flags, model.Term{Var: ext, Coef: 1})
		b.m.Add(name+" normal ceiling", load, model.LE, high).OnlyEnforceIf(model.Not(ext))
		b.m.Add(name+" extended ceiling", load, model.LE, ceiling).OnlyEnforceIf(model.Lit(ext))
		b.m.Add(name+" extended floor", load, model.GE, high+1).OnlyEnforceIf(model.Lit(ext))
	}
	if len(flags) > 0 {
		b.m.Add("extended terms", flags, model.LE, r.MaxExtendedTerms)
		b.m.Minimize(flags)
	}
}

func (b *Builder) totalCredits() {
	low, high := b.rules.TotalWindow()
	all := b.credits(nil)
	if low > 0 {
		b.m.Add("total credits min", all, model.GE, low)
	}
	b.m.Add("total credits max", all, model.LE, high)
}

func (b *Builder) humanitiesCap() {
	limit := b.rules.HumanitiesPerTerm
	if limit <= 0 {
		return
	}
	isHum := func(c models.Course) bool { return c.Category == models.CategoryHumanities }
	for _, t := range b.terms {
		if terms := b.termTerms(t, isHum, true); len(terms) > limit {
			b.m.Add(fmt.Sprintf("term %d humanities cap", t), terms, model.LE, limit)
		}
	}
}

// earlierOr returns a variable that is true when code is taken in some term
// strictly before term. ok is false when no such term exists.
func (b *Builder) earlierOr(code string, term int) (model.VarID, bool) {
	cacheKey := Key{Term: term, Code: code}
	if v, ok := b.earlier[cacheKey]; ok {
		return v, true
	}
	var inputs []model.VarID
	for _, t := range b.pool.TermsOf(code) {
		if t < term {
			inputs = append(inputs, b.out.Vars[Key{Term: t, Code: code}])
		}
	}
	if len(inputs) == 0 {
		return 0, false
	}
	v := inputs[0]
	if len(inputs) > 1 {
		v = b.m.NewBool("before[" + cacheKey.String() + "]")
		b.m.AddOrEquality("before "+cacheKey.String(), v, inputs)
	}
	b.earlier[cacheKey] = v
	return v, true
}

// prerequisites requires every taken course to have at least one path
// whose open codes are all taken earlier.
func (b *Builder) prerequisites() {
	for _, key := range b.out.Keys {
		c, _ := b.pool.Lookup(key.Term, key.Code)
		if len(c.Prereqs) == 0 {
			continue
		}
		x := b.out.Vars[key]

		var satisfied []model.VarID
		vacuous := false
		for i, path := range c.Prereqs {
			var inputs []model.VarID
			resolvable := true
			for _, code := range path {
				if b.completed[code] {
					continue
				}
				v, ok := b.earlierOr(code, key.Term)
				if !ok {
					resolvable = false
					break
				}
				inputs = append(inputs, v)
			}
			if !resolvable {
				continue
			}
			if len(inputs) == 0 {
				vacuous = true
				break
			}
			if len(inputs) == 1 {
				satisfied = append(satisfied, inputs[0])
				continue
			}
			p := b.m.NewBool(fmt.Sprintf("path[%s,%d]", key, i))
			b.m.AddAndEquality(fmt.Sprintf("path %s #%d", key, i), p, inputs)
			satisfied = append(satisfied, p)
		}
		if vacuous {
			continue
		}
		if len(satisfied) == 0 {
			b.m.Fix("unreachable "+key.String(), x, false)
			b.fixedOff[x] = true
			continue
		}
		terms := make([]model.Term, 0, len(satisfied)+1)
		for _, p := range satisfied {
			terms = append(terms, model.Term{Var: p, Coef: 1})
		}
		terms = append(terms, model.Term{Var: x, Coef: -1})
		b.m.Add("prerequisites "+key.String(), terms, model.GE, 0)
	}
}

// uniqueness schedules every Core code exactly once and every other code
// at most once.
func (b *Builder) uniqueness() {
	for _, course := range b.pool.Unique() {
		var terms []model.Term
		reachable := false
		for _, t := range b.pool.TermsOf(course.Code) {
			v := b.out.Vars[Key{Term: t, Code: course.Code}]
			terms = append(terms, model.Term{Var: v, Coef: 1})
			if !b.fixedOff[v] {
				reachable = true
			}
		}
		if course.Category == models.CategoryCore {
			if !reachable {
				b.out.Unschedulable = append(b.out.Unschedulable, course.Code)
			}
			b.m.Add("core once "+course.Code, terms, model.EQ, 1)
			continue
		}
		if len(terms) > 1 {
			b.m.Add("at most once "+course.Code, terms, model.LE, 1)
		}
	}
}

func (b *Builder) categoryFloors() {
	r := b.rules
	floors := []struct {
		category models.Category
		need     int
	}{
		{models.CategoryHumanities, r.Remaining(r.HumanitiesFloor, r.HumanitiesDone)},
		{models.CategoryDepartmentElective, r.Remaining(r.ElectiveFloor, r.ElectiveDone)},
	}
	for _, f := range floors {
		if f.need <= 0 {
			continue
		}
		category := f.category
		terms := b.credits(func(c models.Course) bool { return c.Category == category })
		b.m.Add(string(category)+" floor", terms, model.GE, f.need)
	}
}

func (b *Builder) minor() {
	mr := b.rules.Minor
	if mr == nil {
		return
	}
	isMinor := func(c models.Course) bool { return c.Category.IsMinor() }
	isMinorCore := func(c models.Course) bool { return c.Category == models.CategoryMinorCore }

	if need := b.rules.Remaining(mr.UniqueFloor, mr.Completed); need > 0 {
		b.m.Add("minor unique credits", b.credits(isMinor), model.GE, need)
	}
	if mr.CoreFloor > 0 {
		if need := b.rules.Remaining(mr.CoreFloor, mr.CompletedCore); need > 0 {
			b.m.Add("minor core credits", b.credits(isMinorCore), model.GE, need)
		}
	}
	if mr.PerTerm > 0 {
		for _, t := range b.terms {
			if terms := b.termTerms(t, isMinor, true); len(terms) > mr.PerTerm {
				b.m.Add(fmt.Sprintf("term %d minor cap", t), terms, model.LE, mr.PerTerm)
			}
		}
	}
}
