package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	appRepos "github.com/yigit/degreeplan/internal/app/repositories"
	"github.com/yigit/degreeplan/internal/app/services"
	"github.com/yigit/degreeplan/internal/pkg/apperrors"
)

// Stats counts what an import created and skipped.
type Stats struct {
	Created int
	Skipped int
}

// ImportCatalog copies every course, program and minor of src into the
// database. Records that already exist are left untouched, so running it
// twice is harmless.
func ImportCatalog(ctx context.Context, src services.CatalogSource, repos *appRepos.Repositories, lgr zerolog.Logger) (Stats, error) {
	var (
		stats    Stats
		finalErr error // collect failures without stopping the import
	)
	record := func(kind, key string, err error) {
		switch {
		case err == nil:
			stats.Created++
		case errors.Is(err, apperrors.ErrResourceAlreadyExists):
			stats.Skipped++
		default:
			lgr.Error().Err(err).Str("kind", kind).Str("key", key).Msg("Error importing record")
			finalErr = errors.Join(finalErr, err)
		}
	}

	cat, err := src.Catalog(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to read source catalog: %w", err)
	}
	for _, code := range cat.Codes() {
		record("course", code, repos.CourseRepository.Create(ctx, cat[code]))
	}

	programs, err := src.Programs(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to read source programs: %w", err)
	}
	for _, p := range programs {
		record("program", p.Code, repos.ProgramRepository.Create(ctx, p))
	}

	minors, err := src.Minors(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to read source minors: %w", err)
	}
	for _, m := range minors {
		record("minor", m.Name, repos.MinorRepository.Create(ctx, m))
	}

	lgr.Info().Int("created", stats.Created).Int("skipped", stats.Skipped).Msg("Catalog import finished")
	return stats, finalErr
}
