package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/degreeplan/internal/app/models"
	"github.com/yigit/degreeplan/internal/pkg/apperrors"
	"github.com/yigit/degreeplan/internal/pkg/validation"
	"github.com/yigit/degreeplan/internal/planner/diag"
	"github.com/yigit/degreeplan/internal/planner/prereq"
)

// CourseDetail is a catalog record with its parsed prerequisite paths.
type CourseDetail struct {
	models.CatalogCourse `yaml:",inline"`
	Paths                []models.PrerequisitePath `json:"prerequisitePaths" yaml:"prerequisite_paths"`
	Warnings             diag.Warnings             `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// CatalogService handles read access to the catalog
type CatalogService struct {
	source CatalogSource
}

// NewCatalogService creates a new catalog service instance
func NewCatalogService(source CatalogSource) *CatalogService {
	return &CatalogService{source: source}
}

// GetCourse returns one course with its prerequisites parsed.
func (s *CatalogService) GetCourse(ctx context.Context, code string) (*CourseDetail, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !validation.IsCourseCode(code) {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("%q is not a course code", code))
	}

	cat, err := s.source.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	entry, ok := cat.Lookup(code)
	if !ok {
		return nil, apperrors.NewNotFoundError(apperrors.ErrCourseNotFound, "course "+code+" not found")
	}

	parsed := prereq.Parse(entry.Prereqs)
	detail := &CourseDetail{
		CatalogCourse: entry,
		Paths:         parsed.Paths,
	}
	for _, w := range parsed.Warnings {
		w.Subject = code
		detail.Warnings = append(detail.Warnings, w)
	}
	if detail.Paths == nil {
		detail.Paths = []models.PrerequisitePath{}
	}
	return detail, nil
}

// ListCourses returns catalog records in code order, optionally filtered
// by a code prefix.
func (s *CatalogService) ListCourses(ctx context.Context, prefix string) ([]models.CatalogCourse, error) {
	cat, err := s.source.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	prefix = strings.ToUpper(strings.TrimSpace(prefix))

	courses := make([]models.CatalogCourse, 0, len(cat))
	for _, code := range cat.Codes() {
		if strings.HasPrefix(code, prefix) {
			courses = append(courses, cat[code])
		}
	}
	return courses, nil
}

// GetProgram returns one program curriculum.
func (s *CatalogService) GetProgram(ctx context.Context, code string) (models.Program, error) {
	return s.source.Program(ctx, strings.TrimSpace(code))
}

// ListPrograms returns every program.
func (s *CatalogService) ListPrograms(ctx context.Context) ([]models.Program, error) {
	return s.source.Programs(ctx)
}

// ListMinors returns every minor.
func (s *CatalogService) ListMinors(ctx context.Context) ([]models.Minor, error) {
	return s.source.Minors(ctx)
}
