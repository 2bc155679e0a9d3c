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

const sourceColumns = `id, sub_id, cand_id, galaxy_id, creation_date, name, ra, dec,
	type, classification, redshift`

// SourceRepository provides data access for promoted sources.
type SourceRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Source, error)
	List(ctx context.Context, f *query.Filters, limit, offset int) ([]*models.Source, int, error)
	// ListByGalaxy returns every source of a galaxy in stable id order,
	// for cross-matching new candidates against the existing catalog.
	ListByGalaxy(ctx context.Context, galaxyID int64) ([]*models.Source, error)
	CountByGalaxy(ctx context.Context, galaxyID int64) (int, error)
	Create(ctx context.Context, source *models.Source) error
}

type sourceRepository struct {
	db *database.DB
}

// NewSourceRepository creates a new SourceRepository.
func NewSourceRepository(db *database.DB) SourceRepository {
	return &sourceRepository{db: db}
}

var _ SourceRepository = (*sourceRepository)(nil)

func (r *sourceRepository) GetByID(ctx context.Context, id int64) (*models.Source, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+sourceColumns+` FROM sources WHERE id = $1`, id)
	source, err := scanSource(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return source, nil
}

func (r *sourceRepository) List(ctx context.Context, f *query.Filters, limit, offset int) ([]*models.Source, int, error) {
	where, args := f.Where(1)
	base := `FROM sources`
	if where != "" {
		base += ` WHERE ` + where
	}
	orderBy := f.OrderBy("id ASC")

	if f.NeedsRefinement() {
		rows, err := r.db.Query(ctx,
			`SELECT `+sourceColumns+` `+base+` ORDER BY `+orderBy, args...)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to query sources: %w", err)
		}
		defer rows.Close()

		var all []*models.Source
		for rows.Next() {
			source, err := scanSource(rows)
			if err != nil {
				return nil, 0, err
			}
			if f.Matches(position(source.RA, source.Dec)) {
				all = append(all, source)
			}
		}
		if err := rows.Err(); err != nil {
			return nil, 0, fmt.Errorf("error iterating sources: %w", err)
		}
		page, total := paginate(all, limit, offset)
		return page, total, nil
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) `+base, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sources: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT %s %s ORDER BY %s LIMIT $%d OFFSET $%d`,
			sourceColumns, base, orderBy, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []*models.Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, 0, err
		}
		sources = append(sources, source)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating sources: %w", err)
	}
	return sources, total, nil
}

func (r *sourceRepository) ListByGalaxy(ctx context.Context, galaxyID int64) ([]*models.Source, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+sourceColumns+` FROM sources WHERE galaxy_id = $1 ORDER BY id`,
		galaxyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query galaxy sources: %w", err)
	}
	defer rows.Close()

	var sources []*models.Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating galaxy sources: %w", err)
	}
	return sources, nil
}

func (r *sourceRepository) CountByGalaxy(ctx context.Context, galaxyID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM sources WHERE galaxy_id = $1`, galaxyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count galaxy sources: %w", err)
	}
	return count, nil
}

func (r *sourceRepository) Create(ctx context.Context, source *models.Source) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO sources (sub_id, cand_id, galaxy_id, name, ra, dec, type,
			classification, redshift)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, creation_date`,
		source.SubID,
		source.CandID,
		source.GalaxyID,
		source.Name,
		source.RA,
		source.Dec,
		source.Type,
		source.Classification,
		source.Redshift,
	).Scan(&source.ID, &source.CreationDate)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("source %q: %w", source.Name, apperrors.ErrDuplicateName)
		}
		return fmt.Errorf("failed to create source: %w", err)
	}
	return nil
}

func scanSource(row pgx.Row) (*models.Source, error) {
	var s models.Source
	err := row.Scan(
		&s.ID,
		&s.SubID,
		&s.CandID,
		&s.GalaxyID,
		&s.CreationDate,
		&s.Name,
		&s.RA,
		&s.Dec,
		&s.Type,
		&s.Classification,
		&s.Redshift,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan source: %w", err)
	}
	return &s, nil
}
