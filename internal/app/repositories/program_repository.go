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

const programsPkey = "programs_pkey"

// ProgramRepository handles database operations for program curricula
type ProgramRepository struct {
	db *pgxpool.Pool
}

// NewProgramRepository creates a new program repository
func NewProgramRepository(db *pgxpool.Pool) *ProgramRepository {
	return &ProgramRepository{
		db: db,
	}
}

// Create stores a program with its terms, electives and placeholders in one
// transaction
func (r *ProgramRepository) Create(ctx context.Context, program models.Program) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO programs (code, name) VALUES ($1, $2)`, program.Code, program.Name)
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, programsPkey) {
				return apperrors.NewAlreadyExistsError(apperrors.ErrProgramAlreadyExists, "program "+program.Code+" already exists")
			}
			return fmt.Errorf("error creating program: %w", err)
		}

		batch := &pgx.Batch{}
		for i, entries := range program.Terms {
			for pos, entry := range entries {
				batch.Queue(`INSERT INTO program_terms (program_code, term, position, entry) VALUES ($1, $2, $3, $4)`,
					program.Code, i+1, pos, entry)
			}
		}
		for pos, code := range program.DepartmentElectives {
			batch.Queue(`INSERT INTO program_electives (program_code, position, course_code) VALUES ($1, $2, $3)
				ON CONFLICT DO NOTHING`, program.Code, pos, code)
		}
		for _, ph := range program.Placeholders {
			codes := ph.Codes
			if codes == nil {
				codes = []string{}
			}
			batch.Queue(`INSERT INTO program_placeholders (program_code, tag, category, codes, prefix) VALUES ($1, $2, $3, $4, $5)`,
				program.Code, ph.Tag, string(ph.Category), codes, helpers.GetContentNullString(ph.Prefix))
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("error storing curriculum of %s: %w", program.Code, err)
		}
		return nil
	})
}

// GetByCode retrieves a program with its curriculum
func (r *ProgramRepository) GetByCode(ctx context.Context, code string) (*models.Program, error) {
	program := models.Program{}
	err := r.db.QueryRow(ctx, `SELECT code, name FROM programs WHERE code = $1`, code).Scan(&program.Code, &program.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(apperrors.ErrProgramNotFound, "program "+code+" not found")
		}
		return nil, fmt.Errorf("error retrieving program: %w", err)
	}

	if err := r.loadTerms(ctx, &program); err != nil {
		return nil, err
	}
	if err := r.loadElectives(ctx, &program); err != nil {
		return nil, err
	}
	if err := r.loadPlaceholders(ctx, &program); err != nil {
		return nil, err
	}
	return &program, nil
}

// GetAll retrieves every program ordered by code
func (r *ProgramRepository) GetAll(ctx context.Context) ([]models.Program, error) {
	rows, err := r.db.Query(ctx, `SELECT code FROM programs ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("error listing programs: %w", err)
	}
	codes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("error listing programs: %w", err)
	}

	programs := make([]models.Program, 0, len(codes))
	for _, code := range codes {
		p, err := r.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		programs = append(programs, *p)
	}
	return programs, nil
}

func (r *ProgramRepository) loadTerms(ctx context.Context, program *models.Program) error {
	rows, err := r.db.Query(ctx, `
		SELECT term, entry
		FROM program_terms
		WHERE program_code = $1
		ORDER BY term, position
	`, program.Code)
	if err != nil {
		return fmt.Errorf("error loading curriculum: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			term  int
			entry string
		)
		if err := rows.Scan(&term, &entry); err != nil {
			return err
		}
		for len(program.Terms) < term {
			program.Terms = append(program.Terms, []string{})
		}
		program.Terms[term-1] = append(program.Terms[term-1], entry)
	}
	return rows.Err()
}

func (r *ProgramRepository) loadElectives(ctx context.Context, program *models.Program) error {
	rows, err := r.db.Query(ctx, `
		SELECT course_code
		FROM program_electives
		WHERE program_code = $1
		ORDER BY position
	`, program.Code)
	if err != nil {
		return fmt.Errorf("error loading department electives: %w", err)
	}
	electives, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("error loading department electives: %w", err)
	}
	program.DepartmentElectives = electives
	return nil
}

func (r *ProgramRepository) loadPlaceholders(ctx context.Context, program *models.Program) error {
	rows, err := r.db.Query(ctx, `
		SELECT tag, category, codes, prefix
		FROM program_placeholders
		WHERE program_code = $1
		ORDER BY tag
	`, program.Code)
	if err != nil {
		return fmt.Errorf("error loading placeholders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ph       models.Placeholder
			category string
			prefix   sql.NullString
		)
		if err := rows.Scan(&ph.Tag, &category, &ph.Codes, &prefix); err != nil {
			return err
		}
		ph.Category, err = models.ParseCategory(category)
		if err != nil {
			return fmt.Errorf("placeholder %s of %s: %w", ph.Tag, program.Code, err)
		}
		ph.Prefix = helpers.StringFromNull(prefix)
		program.Placeholders = append(program.Placeholders, ph)
	}
	return rows.Err()
}
