package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/degreeplan/internal/app/models"
)

// Repositories holds all the repository instances. Together they serve the
// catalog from Postgres.
type Repositories struct {
	CourseRepository  *CourseRepository
	ProgramRepository *ProgramRepository
	MinorRepository   *MinorRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		CourseRepository:  NewCourseRepository(db),
		ProgramRepository: NewProgramRepository(db),
		MinorRepository:   NewMinorRepository(db),
	}
}

// Catalog returns every stored course.
func (r *Repositories) Catalog(ctx context.Context) (models.Catalog, error) {
	return r.CourseRepository.GetAll(ctx)
}

// Program returns one program curriculum.
func (r *Repositories) Program(ctx context.Context, code string) (models.Program, error) {
	p, err := r.ProgramRepository.GetByCode(ctx, code)
	if err != nil {
		return models.Program{}, err
	}
	return *p, nil
}

// Programs returns every program.
func (r *Repositories) Programs(ctx context.Context) ([]models.Program, error) {
	return r.ProgramRepository.GetAll(ctx)
}

// Minor returns one minor.
func (r *Repositories) Minor(ctx context.Context, name string) (models.Minor, error) {
	m, err := r.MinorRepository.GetByName(ctx, name)
	if err != nil {
		return models.Minor{}, err
	}
	return *m, nil
}

// Minors returns every minor.
func (r *Repositories) Minors(ctx context.Context) ([]models.Minor, error) {
	return r.MinorRepository.GetAll(ctx)
}
