package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/degreeplan/internal/app/models"
	"github.com/yigit/degreeplan/internal/config"
	"github.com/yigit/degreeplan/internal/pkg/apperrors"
	"github.com/yigit/degreeplan/internal/pkg/helpers"
	"github.com/yigit/degreeplan/internal/pkg/validation"
	"github.com/yigit/degreeplan/internal/planner/builder"
	"github.com/yigit/degreeplan/internal/planner/catalog"
	"github.com/yigit/degreeplan/internal/planner/diag"
	"github.com/yigit/degreeplan/internal/planner/extract"
	"github.com/yigit/degreeplan/internal/planner/model"
	"github.com/yigit/degreeplan/internal/planner/overlap"
)

const defaultSolveTimeout = 30 * time.Second

// PlanRequest is one planning run.
type PlanRequest struct {
	Profile models.StudentProfile
	// Relax overrides the configured relaxation toggle when set.
	Relax *bool
	// Timeout overrides the configured per-solve budget when positive.
	Timeout time.Duration
}

// PlanResult is a successful planning run.
type PlanResult struct {
	RunID       uuid.UUID        `json:"runId" yaml:"run_id"`
	Program     string           `json:"program" yaml:"program"`
	Horizon     catalog.Horizon  `json:"horizon" yaml:"horizon"`
	Status      model.Status     `json:"status" yaml:"status"`
	Objective   int              `json:"objective" yaml:"objective"`
	Plan        *extract.Plan    `json:"plan" yaml:"plan"`
	Progress    catalog.Progress `json:"progress" yaml:"progress"`
	Overlap     *overlap.Result  `json:"overlap,omitempty" yaml:"overlap,omitempty"`
	Warnings    diag.Warnings    `json:"warnings" yaml:"warnings"`
	Relaxations []string         `json:"relaxations,omitempty" yaml:"relaxations,omitempty"`
	Elapsed     time.Duration    `json:"elapsed" yaml:"elapsed"`
}

// PlannerService runs the planning pipeline: assemble, resolve the minor,
// check supply, build, solve, extract. On a proven infeasibility it may
// relax the rules step by step and solve again.
type PlannerService struct {
	source CatalogSource
	oracle model.Oracle
	cfg    config.PlannerConfig
	logger zerolog.Logger
}

// NewPlannerService creates a new planner service instance
func NewPlannerService(source CatalogSource, oracle model.Oracle, cfg config.PlannerConfig, logger zerolog.Logger) *PlannerService {
	return &PlannerService{
		source: source,
		oracle: oracle,
		cfg:    cfg,
		logger: logger.With().Str("component", "planner").Logger(),
	}
}

// SolveTimeout is the configured budget of a single solve.
func SolveTimeout(cfg config.PlannerConfig) time.Duration {
	return helpers.ParseDuration(cfg.SolveTimeout, defaultSolveTimeout)
}

// PlanBudget bounds a whole Plan call whose solves each get timeout: the
// first solve plus one per relaxation step.
func PlanBudget(timeout time.Duration) time.Duration {
	return time.Duration(1+len(relaxations)) * timeout
}

// relaxation loosens one group of rules. applies reports whether the step
// changes anything for r.
type relaxation struct {
	applies func(r builder.Rules) bool
	apply   func(r *builder.Rules, step float64) string
}

// relaxations are applied cumulatively, in order.
var relaxations = []relaxation{
	{
		applies: func(builder.Rules) bool { return true },
		apply: func(r *builder.Rules, step float64) string {
			r.MinCredits = math.Max(0, r.MinCredits-step)
			r.MaxCredits += step
			if r.ExtendedCeiling > 0 {
				r.ExtendedCeiling += step
			}
			return fmt.Sprintf("per-term credit bounds widened to %.1f-%.1f", r.MinCredits, r.MaxCredits)
		},
	},
	{
		applies: func(r builder.Rules) bool { return r.HumanitiesFloor > 0 || r.ElectiveFloor > 0 },
		apply: func(r *builder.Rules, _ float64) string {
			r.HumanitiesFloor, r.ElectiveFloor = 0, 0
			return "Humanities and department elective floors dropped"
		},
	},
	{
		applies: func(r builder.Rules) bool { return r.Minor != nil },
		apply: func(r *builder.Rules, _ float64) string {
			m := *r.Minor
			m.UniqueFloor, m.CoreFloor = 0, 0
			r.Minor = &m
			return fmt.Sprintf("minor %s credit floors dropped", m.Name)
		},
	},
}

// Plan produces a plan for req.Profile. Fatal planning outcomes are
// returned as *apperrors.CustomError wrapping ErrCategoryUnderSupply,
// ErrPrerequisiteUnreachable, ErrModelInfeasible or ErrModelUnknown, with
// the diagnostic under Details["diagnostic"].
func (s *PlannerService) Plan(ctx context.Context, req PlanRequest) (*PlanResult, error) {
	start := time.Now()
	runID := uuid.New()
	lgr := s.logger.With().Str("runId", runID.String()).Logger()

	profile := s.withDefaults(req.Profile)
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	cat, err := s.source.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	program, err := s.source.Program(ctx, profile.Program)
	if err != nil {
		return nil, err
	}

	asm := catalog.NewAssembler(cat)
	horizon := catalog.Horizon{First: profile.CurrentTerm, Last: profile.FinalTerm}
	assembly := asm.Assemble(program, profile, horizon)
	warnings := append(diag.Warnings(nil), assembly.Warnings...)
	pool := assembly.Pool

	result := &PlanResult{
		RunID:    runID,
		Program:  program.Code,
		Horizon:  horizon,
		Progress: assembly.Progress,
	}

	var (
		minorCtx   *extract.MinorContext
		minorRules *builder.MinorRules
	)
	if profile.Minor != "" {
		minor, err := s.source.Minor(ctx, profile.Minor)
		if err != nil {
			return nil, err
		}
		minor = minor.WithDefaults(models.MinorDefaults{
			UniqueCredits:     s.cfg.MinorUniqueCredits,
			OpenChoiceCredits: s.cfg.MinorOpenChoiceCredits,
			TotalCredits:      s.cfg.MinorTotalCredits,
		})
		ov := overlap.Resolve(minor, assembly.Program, assembly.Completed)
		courses, ws := overlap.Candidates(minor, ov, asm)
		warnings.Extend(ws)
		pool = catalog.Widen(pool, courses, horizon, assembly.Completed)

		minorCtx = &extract.MinorContext{Minor: minor, Overlap: ov}
		minorRules = &builder.MinorRules{
			Name:          minor.Name,
			UniqueFloor:   minor.UniqueCredits,
			CoreFloor:     minor.CoreCredits,
			PerTerm:       s.cfg.MinorPerTerm,
			Completed:     ov.Completed(),
			CompletedCore: ov.CompletedCore,
		}
		result.Overlap = &ov
		lgr.Debug().
			Str("minor", minor.Name).
			Int("overlapping", len(ov.Overlapping)).
			Float64("overlapCredits", ov.OverlapCredits).
			Msg("minor overlap resolved")
	}
	result.Warnings = warnings
	for _, w := range warnings {
		lgr.Debug().Str("class", string(w.Class)).Str("subject", w.Subject).Msg(w.Message)
	}

	rules := s.rules(profile, assembly.Progress, minorRules)
	if d := builder.CheckSupply(pool, rules); d != nil {
		lgr.Warn().Strs("findings", d.Findings).Msg("candidate pool under-supplies the credit floors")
		return nil, fail(apperrors.ErrCategoryUnderSupply, runID, d, result)
	}

	relax := s.cfg.Relax
	if req.Relax != nil {
		relax = *req.Relax
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = SolveTimeout(s.cfg)
	}
	ctx, cancel := context.WithTimeout(ctx, PlanBudget(timeout))
	defer cancel()

	next := 0
	for {
		out := builder.New(pool, assembly.Completed, rules, lgr).Build()
		if d := builder.Unreachable(out.Unschedulable); d != nil {
			return nil, fail(apperrors.ErrPrerequisiteUnreachable, runID, d, result)
		}
		lgr.Info().
			Str("program", program.Code).
			Ints("terms", pool.Terms()).
			Int("candidates", pool.Size()).
			Int("variables", out.Model.NumVars()).
			Int("constraints", out.Model.NumConstraints()).
			Int("relaxations", len(result.Relaxations)).
			Msg("model built")

		solveCtx, cancel := context.WithTimeout(ctx, timeout)
		sol, err := s.oracle.Solve(solveCtx, out.Model)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("solver failed: %w", err)
		}

		res, err := extract.Extract(out, sol, minorCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to read solution: %w", err)
		}

		if res.Status == model.StatusInfeasible && relax {
			if step, ok := nextRelaxation(rules, &next); ok {
				desc := step.apply(&rules, s.cfg.RelaxCreditStep)
				result.Relaxations = append(result.Relaxations, desc)
				lgr.Info().Str("relaxation", desc).Msg("model infeasible, relaxing rules")
				continue
			}
		}

		switch res.Status {
		case model.StatusInfeasible:
			d := res.Diagnostic
			if len(result.Relaxations) > 0 {
				d.Findings = append(d.Findings, "still infeasible after: "+strings.Join(result.Relaxations, "; "))
			}
			return nil, fail(apperrors.ErrModelInfeasible, runID, d, result)
		case model.StatusUnknown:
			return nil, fail(apperrors.ErrModelUnknown, runID, res.Diagnostic, result)
		}

		if problems := res.Plan.Validate(out.Pool, assembly.Completed); len(problems) > 0 {
			return nil, fmt.Errorf("plan failed validation: %s", strings.Join(problems, "; "))
		}

		result.Status = res.Status
		result.Objective = res.Objective
		result.Plan = res.Plan
		result.Elapsed = time.Since(start)
		lgr.Info().
			Str("status", string(res.Status)).
			Float64("credits", res.Plan.TotalCredits).
			Dur("elapsed", result.Elapsed).
			Msg("plan produced")
		return result, nil
	}
}

func nextRelaxation(r builder.Rules, next *int) (relaxation, bool) {
	for *next < len(relaxations) {
		step := relaxations[*next]
		*next++
		if step.applies(r) {
			return step, true
		}
	}
	return relaxation{}, false
}

func (s *PlannerService) withDefaults(p models.StudentProfile) models.StudentProfile {
	p.Program = strings.TrimSpace(p.Program)
	if p.Program == "" {
		p.Program = s.cfg.DefaultProgram
	}
	if p.FinalTerm == 0 {
		p.FinalTerm = s.cfg.FinalTerm
	}
	if p.TotalTarget == 0 {
		p.TotalTarget = s.cfg.TotalTarget
	}
	p.Minor = strings.TrimSpace(p.Minor)
	return p
}

func (s *PlannerService) rules(p models.StudentProfile, progress catalog.Progress, minor *builder.MinorRules) builder.Rules {
	return builder.Rules{
		Scale:             s.cfg.CreditScale,
		MinCredits:        p.MinCredits,
		MaxCredits:        p.MaxCredits,
		ExtendedCeiling:   s.cfg.ExtendedCeiling,
		ExtendedAfterTerm: s.cfg.ExtendedAfterTerm,
		MaxExtendedTerms:  s.cfg.MaxExtendedTerms,
		TotalTarget:       p.TotalTarget,
		TotalSlack:        s.cfg.TotalSlack,
		Earned:            progress.Earned,
		HumanitiesPerTerm: s.cfg.HumanitiesPerTerm,
		HumanitiesFloor:   s.cfg.HumanitiesFloor,
		HumanitiesDone:    progress.Humanities,
		ElectiveFloor:     s.cfg.ElectiveFloor,
		ElectiveDone:      progress.DepartmentElective,
		Minor:             minor,
	}
}

// validateProfile validates a profile after defaults are applied
func validateProfile(p models.StudentProfile) error {
	problems := validation.Struct(p)
	if len(problems) == 0 {
		return nil
	}
	return apperrors.NewCustomError(apperrors.ErrValidationFailed, "invalid student profile: "+problems[0].Message).
		WithDetails(map[string]interface{}{"fields": problems})
}

func fail(sentinel error, runID uuid.UUID, d *diag.Diagnostic, partial *PlanResult) error {
	return apperrors.NewCustomError(sentinel, d.Message).
		WithCode(string(d.Class)).
		WithDetails(map[string]interface{}{
			"runId":       runID.String(),
			"diagnostic":  d,
			"warnings":    partial.Warnings,
			"relaxations": partial.Relaxations,
		})
}
