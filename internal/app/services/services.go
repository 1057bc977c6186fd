package services

import (
	"context"

	"github.com/yigit/degreeplan/internal/app/models"
)

// CatalogSource provides the course catalog, program curricula and minors.
// Implementations return errors matching apperrors.ErrResourceNotFound for
// unknown programs and minors.
type CatalogSource interface {
	Catalog(ctx context.Context) (models.Catalog, error)
	Program(ctx context.Context, code string) (models.Program, error)
	Programs(ctx context.Context) ([]models.Program, error)
	Minor(ctx context.Context, name string) (models.Minor, error)
	Minors(ctx context.Context) ([]models.Minor, error)
}

// Planner defines the interface for planning runs
type Planner interface {
	Plan(ctx context.Context, req PlanRequest) (*PlanResult, error)
}

// CatalogReader defines the interface for catalog queries
type CatalogReader interface {
	GetCourse(ctx context.Context, code string) (*CourseDetail, error)
	ListCourses(ctx context.Context, prefix string) ([]models.CatalogCourse, error)
	GetProgram(ctx context.Context, code string) (models.Program, error)
	ListPrograms(ctx context.Context) ([]models.Program, error)
	ListMinors(ctx context.Context) ([]models.Minor, error)
}

var (
	_ Planner       = (*PlannerService)(nil)
	_ CatalogReader = (*CatalogService)(nil)
)

// Services defined in this package:
// - PlannerService: runs the planning pipeline for one student profile
// - CatalogService: read access to courses, programs and minors
