package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/disparu-project/disparu-engine/pkg/apperrors"
	"github.com/disparu-project/disparu-engine/pkg/astro"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// wrapNoRows maps pgx.ErrNoRows onto the catalog's not-found sentinel.
func wrapNoRows(err error, entity string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", entity, apperrors.ErrNotFound)
	}
	return fmt.Errorf("failed to scan %s: %w", entity, err)
}

func position(ra, dec float64) astro.Position {
	return astro.Position{RA: ra, Dec: dec}
}

// paginate slices one page out of an in-memory result set. It is used on
// the spatial-refinement path, where the SQL bounding-box prefilter cannot
// produce an exact count; catalogs here are per-galaxy and small, so loading
// the survivors is cheap.
func paginate[T any](all []T, limit, offset int) ([]T, int) {
	total := len(all)
	if offset >= total {
		return []T{}, total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total
}
