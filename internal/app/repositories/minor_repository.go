package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/degreeplan/internal/app/models"
	"github.com/yigit/degreeplan/internal/db"
	"github.com/yigit/degreeplan/internal/pkg/apperrors"
	"github.com/yigit/degreeplan/internal/pkg/dberrors"
	"github.com/yigit/degreeplan/internal/pkg/helpers"
)

const minorsPkey = "minors_pkey"

// MinorRepository handles database operations for minors
type MinorRepository struct {
	db *pgxpool.Pool
}

// NewMinorRepository creates a new minor repository
func NewMinorRepository(db *pgxpool.Pool) *MinorRepository {
	return &MinorRepository{
		db: db,
	}
}

// Create stores a minor and its course lists in one transaction
func (r *MinorRepository) Create(ctx context.Context, minor models.Minor) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO minors (name, department, core_credits, elective_credits, unique_credits,
				open_choice_credits, total_credits, note)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			minor.Name,
			minor.Department,
			minor.CoreCredits,
			minor.ElectiveCredits,
			minor.UniqueCredits,
			minor.OpenChoiceCredits,
			minor.TotalCredits,
			helpers.GetContentNullString(minor.Note),
		)
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, minorsPkey) {
				return apperrors.NewAlreadyExistsError(apperrors.ErrMinorAlreadyExists, "minor "+minor.Name+" already exists")
			}
			return fmt.Errorf("error creating minor: %w", err)
		}

		batch := &pgx.Batch{}
		queue := func(courses []models.MinorCourse, core bool) {
			for pos, mc := range courses {
				batch.Queue(`
					INSERT INTO minor_courses (minor_name, code, name, credits, is_core, position)
					VALUES ($1, $2, $3, $4, $5, $6)
					ON CONFLICT DO NOTHING
				`, minor.Name, mc.Code, mc.Name, mc.Credits, core, pos)
			}
		}
		queue(minor.CoreCourses, true)
		queue(minor.ElectiveCourses, false)
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("error storing courses of minor %s: %w", minor.Name, err)
		}
		return nil
	})
}

// GetByName retrieves a minor by name, ignoring case
func (r *MinorRepository) GetByName(ctx context.Context, name string) (*models.Minor, error) {
	query := `
		SELECT name, department, core_credits::float8, elective_credits::float8, unique_credits::float8,
			open_choice_credits::float8, total_credits::float8, note
		FROM minors
		WHERE lower(name) = lower($1)
	`

	var (
		minor models.Minor
		note  sql.NullString
	)
	err := r.db.QueryRow(ctx, query, name).Scan(
		&minor.Name,
		&minor.Department,
		&minor.CoreCredits,
		&minor.ElectiveCredits,
		&minor.UniqueCredits,
		&minor.OpenChoiceCredits,
		&minor.TotalCredits,
		&note,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(apperrors.ErrMinorNotFound, "minor "+name+" not found")
		}
		return nil, fmt.Errorf("error retrieving minor: %w", err)
	}
	minor.Note = helpers.StringFromNull(note)

	if err := r.loadCourses(ctx, &minor); err != nil {
		return nil, err
	}
	return &minor, nil
}

// GetAll retrieves every minor ordered by name
func (r *MinorRepository) GetAll(ctx context.Context) ([]models.Minor, error) {
	rows, err := r.db.Query(ctx, `SELECT name FROM minors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error listing minors: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("error listing minors: %w", err)
	}

	minors := make([]models.Minor, 0, len(names))
	for _, name := range names {
		m, err := r.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		minors = append(minors, *m)
	}
	return minors, nil
}

func (r *MinorRepository) loadCourses(ctx context.Context, minor *models.Minor) error {
	rows, err := r.db.Query(ctx, `
		SELECT code, name, credits::float8, is_core
		FROM minor_courses
		WHERE minor_name = $1
		ORDER BY is_core DESC, position
	`, minor.Name)
	if err != nil {
		return fmt.Errorf("error loading minor courses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			mc   models.MinorCourse
			core bool
		)
		if err := rows.Scan(&mc.Code, &mc.Name, &mc.Credits, &core); err != nil {
			return err
		}
		if core {
			minor.CoreCourses = append(minor.CoreCourses, mc)
		} else {
			minor.ElectiveCourses = append(minor.ElectiveCourses, mc)
		}
	}
	return rows.Err()
}
