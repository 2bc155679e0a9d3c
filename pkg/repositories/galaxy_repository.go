// Package repositories provides pgx-backed data access for the disparu
// catalog collections.
package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/disparu-project/disparu-engine/pkg/apperrors"
	"github.com/disparu-project/disparu-engine/pkg/database"
	"github.com/disparu-project/disparu-engine/pkg/models"
	"github.com/disparu-project/disparu-engine/pkg/query"
)

const galaxyColumns = `id, name, pgc, ra, dec, redshift, dm, dm_err, dm_method, dm_ref`

// GalaxyRepository provides data access for surveyed galaxies.
type GalaxyRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Galaxy, error)
	GetByName(ctx context.Context, name string) (*models.Galaxy, error)
	List(ctx context.Context, f *query.Filters, limit, offset int) ([]*models.Galaxy, int, error)
	Create(ctx context.Context, galaxy *models.Galaxy) error
}

type galaxyRepository struct {
	db *database.DB
}

// NewGalaxyRepository creates a new GalaxyRepository.
func NewGalaxyRepository(db *database.DB) GalaxyRepository {
	return &galaxyRepository{db: db}
}

var _ GalaxyRepository = (*galaxyRepository)(nil)

func (r *galaxyRepository) GetByID(ctx context.Context, id int64) (*models.Galaxy, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+galaxyColumns+` FROM galaxies WHERE id = $1`, id)
	galaxy, err := scanGalaxy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return galaxy, nil
}

func (r *galaxyRepository) GetByName(ctx context.Context, name string) (*models.Galaxy, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+galaxyColumns+` FROM galaxies WHERE name = $1`, name)
	galaxy, err := scanGalaxy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return galaxy, nil
}

func (r *galaxyRepository) List(ctx context.Context, f *query.Filters, limit, offset int) ([]*models.Galaxy, int, error) {
	where, args := f.Where(1)
	base := `FROM galaxies`
	if where != "" {
		base += ` WHERE ` + where
	}
	orderBy := f.OrderBy("id ASC")

	if f.NeedsRefinement() {
		// Bounding-box prefilter already ran in SQL; load the survivors
		// and refine against the exact spherical regions in-process.
		rows, err := r.db.Query(ctx,
			`SELECT `+galaxyColumns+` `+base+` ORDER BY `+orderBy, args...)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to query galaxies: %w", err)
		}
		defer rows.Close()

		var all []*models.Galaxy
		for rows.Next() {
			galaxy, err := scanGalaxy(rows)
			if err != nil {
				return nil, 0, err
			}
			if f.Matches(position(galaxy.RA, galaxy.Dec)) {
				all = append(all, galaxy)
			}
		}
		if err := rows.Err(); err != nil {
			return nil, 0, fmt.Errorf("error iterating galaxies: %w", err)
		}
		page, total := paginate(all, limit, offset)
		return page, total, nil
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) `+base, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count galaxies: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT %s %s ORDER BY %s LIMIT $%d OFFSET $%d`,
			galaxyColumns, base, orderBy, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query galaxies: %w", err)
	}
	defer rows.Close()

	var galaxies []*models.Galaxy
	for rows.Next() {
		galaxy, err := scanGalaxy(rows)
		if err != nil {
			return nil, 0, err
		}
		galaxies = append(galaxies, galaxy)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating galaxies: %w", err)
	}
	return galaxies, total, nil
}

func (r *galaxyRepository) Create(ctx context.Context, galaxy *models.Galaxy) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO galaxies (name, pgc, ra, dec, redshift, dm, dm_err, dm_method, dm_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		galaxy.Name,
		galaxy.PGC,
		galaxy.RA,
		galaxy.Dec,
		galaxy.Redshift,
		galaxy.DM,
		galaxy.DMErr,
		galaxy.DMMethod,
		galaxy.DMRef,
	).Scan(&galaxy.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("galaxy %q: %w", galaxy.Name, apperrors.ErrDuplicateName)
		}
		return fmt.Errorf("failed to create galaxy: %w", err)
	}
	return nil
}

func scanGalaxy(row pgx.Row) (*models.Galaxy, error) {
	var g models.Galaxy
	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.PGC,
		&g.RA,
		&g.Dec,
		&g.Redshift,
		&g.DM,
		&g.DMErr,
		&g.DMMethod,
		&g.DMRef,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan galaxy: %w", err)
	}
	return &g, nil
}
