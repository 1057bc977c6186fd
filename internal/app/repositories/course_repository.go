package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/degreeplan/internal/app/models"
	"github.com/yigit/degreeplan/internal/pkg/apperrors"
	"github.com/yigit/degreeplan/internal/pkg/dberrors"
	"github.com/yigit/degreeplan/internal/pkg/helpers"
)

const coursesPkey = "courses_pkey"

const courseColumns = `code, name, credits::float8, prereqs,
	lecture_hours::float8, tutorial_hours::float8, practical_hours::float8`

// CourseRepository handles database operations for catalog courses
type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{
		db: db,
	}
}

// Create inserts a catalog course
func (r *CourseRepository) Create(ctx context.Context, course models.CatalogCourse) error {
	query := `
		INSERT INTO courses (code, name, credits, prereqs, lecture_hours, tutorial_hours, practical_hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var lecture, tutorial, practical *float64
	if h := course.Hours; h != nil {
		lecture, tutorial, practical = &h.Lecture, &h.Tutorial, &h.Practical
	}

	_, err := r.db.Exec(ctx, query,
		course.Code,
		course.Name,
		course.Credits,
		helpers.GetContentNullString(course.Prereqs),
		lecture,
		tutorial,
		practical,
	)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, coursesPkey) {
			return apperrors.NewAlreadyExistsError(apperrors.ErrCourseAlreadyExists, "course "+course.Code+" already exists")
		}
		if constraint, ok := dberrors.CheckViolation(err); ok {
			return fmt.Errorf("%w: course %s violates %s", apperrors.ErrValidationFailed, course.Code, constraint)
		}
		return fmt.Errorf("error creating course: %w", err)
	}
	return nil
}

// GetByCode retrieves a course by code
func (r *CourseRepository) GetByCode(ctx context.Context, code string) (*models.CatalogCourse, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE code = $1`

	course, err := scanCourse(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(apperrors.ErrCourseNotFound, "course "+code+" not found")
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}
	return &course, nil
}

// GetAll retrieves the whole catalog
func (r *CourseRepository) GetAll(ctx context.Context) (models.Catalog, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY code`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	catalog := make(models.Catalog)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		catalog[course.Code] = course
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return catalog, nil
}

func scanCourse(row pgx.Row) (models.CatalogCourse, error) {
	var (
		course                       models.CatalogCourse
		prereqs                      sql.NullString
		lecture, tutorial, practical *float64
	)
	if err := row.Scan(
		&course.Code,
		&course.Name,
		&course.Credits,
		&prereqs,
		&lecture,
		&tutorial,
		&practical,
	); err != nil {
		return models.CatalogCourse{}, err
	}
	course.Prereqs = helpers.StringFromNull(prereqs)
	if lecture != nil || tutorial != nil || practical != nil {
		course.Hours = &models.HourBreakdown{}
		if lecture != nil {
			course.Hours.Lecture = *lecture
		}
		if tutorial != nil {
			course.Hours.Tutorial = *tutorial
		}
		if practical != nil {
			course.Hours.Practical = *practical
		}
	}
	return course, nil
}
