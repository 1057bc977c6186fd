package repositories

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/degreeplan/internal/app/models"
	"github.com/yigit/degreeplan/internal/pkg/apperrors"
	"github.com/yigit/degreeplan/internal/pkg/validation"
	"gopkg.in/yaml.v3"
)

// Catalog file names inside a data directory
const (
	CatalogFile  = "catalog.yaml"
	ProgramsFile = "programs.yaml"
	MinorsFile   = "minors.yaml"
)

const maxCourseCredits = 30

// StaticCatalog serves a catalog held in memory. It is safe for concurrent
// reads; nothing mutates it after construction.
type StaticCatalog struct {
	catalog  models.Catalog
	programs map[string]models.Program
	minors   map[string]models.Minor
}

// NewStaticCatalog creates a catalog over already validated data.
func NewStaticCatalog(cat models.Catalog, programs []models.Program, minors []models.Minor) *StaticCatalog {
	s := &StaticCatalog{
		catalog:  make(models.Catalog, len(cat)),
		programs: make(map[string]models.Program, len(programs)),
		minors:   make(map[string]models.Minor, len(minors)),
	}
	for code, c := range cat {
		s.catalog[code] = c
	}
	for _, p := range programs {
		s.programs[p.Code] = p
	}
	for _, m := range minors {
		s.minors[m.Name] = m
	}
	return s
}

type catalogDocument struct {
	Courses []models.CatalogCourse `yaml:"courses"`
}

type programsDocument struct {
	Programs []models.Program `yaml:"programs"`
}

type minorsDocument struct {
	Minors []models.Minor `yaml:"minors"`
}

// LoadCatalogDir reads catalog.yaml, programs.yaml and minors.yaml from dir.
// Malformed records are skipped with a warning; a missing minors file means
// no minors.
func LoadCatalogDir(dir string, lgr zerolog.Logger) (*StaticCatalog, error) {
	var cd catalogDocument
	if err := readYAML(filepath.Join(dir, CatalogFile), &cd, true); err != nil {
		return nil, err
	}
	var pd programsDocument
	if err := readYAML(filepath.Join(dir, ProgramsFile), &pd, true); err != nil {
		return nil, err
	}
	var md minorsDocument
	if err := readYAML(filepath.Join(dir, MinorsFile), &md, false); err != nil {
		return nil, err
	}

	cat := make(models.Catalog, len(cd.Courses))
	for _, c := range cd.Courses {
		c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
		if err := checkCourse(c.Code, c.Name, c.Credits); err != nil {
			lgr.Warn().Err(err).Str("code", c.Code).Msg("Skipping catalog course")
			continue
		}
		if _, dup := cat[c.Code]; dup {
			lgr.Warn().Str("code", c.Code).Msg("Duplicate catalog course, keeping the last entry")
		}
		cat[c.Code] = c
	}

	programs := make([]models.Program, 0, len(pd.Programs))
	for _, p := range pd.Programs {
		p, err := normaliseProgram(p)
		if err != nil {
			lgr.Warn().Err(err).Str("program", p.Code).Msg("Skipping program")
			continue
		}
		programs = append(programs, p)
	}

	minors := make([]models.Minor, 0, len(md.Minors))
	for _, m := range md.Minors {
		if err := checkMinor(m); err != nil {
			lgr.Warn().Err(err).Str("minor", m.Name).Msg("Skipping minor")
			continue
		}
		minors = append(minors, m)
	}

	lgr.Info().
		Str("dir", dir).
		Int("courses", len(cat)).
		Int("programs", len(programs)).
		Int("minors", len(minors)).
		Msg("Catalog loaded")
	return NewStaticCatalog(cat, programs, minors), nil
}

func readYAML(path string, out interface{}, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func checkCourse(code, name string, credits float64) error {
	if !validation.IsCourseCode(code) {
		return fmt.Errorf("%w: malformed course code %q", apperrors.ErrValidationFailed, code)
	}
	if !validation.NewStringValidation(name).WithRequired(false).WithMaxLength(validation.NameMaxLength * 2).Validate() {
		return fmt.Errorf("%w: course name too long", apperrors.ErrValidationFailed)
	}
	if !validation.NewCreditValidation(credits).WithRange(0, maxCourseCredits).Validate() {
		return fmt.Errorf("%w: invalid credit value %v", apperrors.ErrValidationFailed, credits)
	}
	return nil
}

func normaliseProgram(p models.Program) (models.Program, error) {
	p.Code = strings.TrimSpace(p.Code)
	if p.Code == "" {
		return p, fmt.Errorf("%w: program code is required", apperrors.ErrValidationFailed)
	}
	placeholders := make([]models.Placeholder, 0, len(p.Placeholders))
	for _, ph := range p.Placeholders {
		category, err := models.ParseCategory(string(ph.Category))
		if err != nil {
			return p, fmt.Errorf("%w: placeholder %s: %v", apperrors.ErrValidationFailed, ph.Tag, err)
		}
		if len(ph.Codes) == 0 && ph.Prefix == "" {
			return p, fmt.Errorf("%w: placeholder %s selects no courses", apperrors.ErrValidationFailed, ph.Tag)
		}
		ph.Category = category
		placeholders = append(placeholders, ph)
	}
	p.Placeholders = placeholders
	return p, nil
}

func checkMinor(m models.Minor) error {
	if !validation.NewStringValidation(m.Name).WithMaxLength(validation.NameMaxLength).Validate() {
		return fmt.Errorf("%w: minor name is required", apperrors.ErrValidationFailed)
	}
	for _, mc := range m.Courses() {
		if err := checkCourse(mc.Code, mc.Name, mc.Credits); err != nil {
			return err
		}
	}
	return nil
}

// Catalog returns the course catalog.
func (s *StaticCatalog) Catalog(context.Context) (models.Catalog, error) {
	return s.catalog, nil
}

// Program returns the program with the given code.
func (s *StaticCatalog) Program(_ context.Context, code string) (models.Program, error) {
	p, ok := s.programs[code]
	if !ok {
		return models.Program{}, apperrors.NewNotFoundError(apperrors.ErrProgramNotFound, "program "+code+" not found")
	}
	return p, nil
}

// Programs returns every program ordered by code.
func (s *StaticCatalog) Programs(context.Context) ([]models.Program, error) {
	out := make([]models.Program, 0, len(s.programs))
	for _, p := range s.programs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// Minor returns the minor with the given name, ignoring case.
func (s *StaticCatalog) Minor(_ context.Context, name string) (models.Minor, error) {
	if m, ok := s.minors[name]; ok {
		return m, nil
	}
	for key, m := range s.minors {
		if strings.EqualFold(key, name) {
			return m, nil
		}
	}
	return models.Minor{}, apperrors.NewNotFoundError(apperrors.ErrMinorNotFound, "minor "+name+" not found")
}

// Minors returns every minor ordered by name.
func (s *StaticCatalog) Minors(context.Context) ([]models.Minor, error) {
	out := make([]models.Minor, 0, len(s.minors))
	for _, m := range s.minors {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
