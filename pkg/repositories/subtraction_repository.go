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

const subtractionColumns = `id, galaxy_id, obs_id, ref_id, creation_date, mjdstart, mjdend,
	exptime, tel, inst, filter, base_dir, filename, version`

// SubtractionRepository provides data access for difference images.
type SubtractionRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Subtraction, error)
	GetByLocation(ctx context.Context, baseDir, filename, version string) (*models.Subtraction, error)
	List(ctx context.Context, f *query.Filters, limit, offset int) ([]*models.Subtraction, int, error)
	Create(ctx context.Context, sub *models.Subtraction) error
}

type subtractionRepository struct {
	db *database.DB
}

// NewSubtractionRepository creates a new SubtractionRepository.
func NewSubtractionRepository(db *database.DB) SubtractionRepository {
	return &subtractionRepository{db: db}
}

var _ SubtractionRepository = (*subtractionRepository)(nil)

func (r *subtractionRepository) GetByID(ctx context.Context, id int64) (*models.Subtraction, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+subtractionColumns+` FROM subtractions WHERE id = $1`, id)
	sub, err := scanSubtraction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (r *subtractionRepository) GetByLocation(ctx context.Context, baseDir, filename, version string) (*models.Subtraction, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+subtractionColumns+` FROM subtractions
		 WHERE base_dir = $1 AND filename = $2 AND version = $3`,
		baseDir, filename, version)
	sub, err := scanSubtraction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (r *subtractionRepository) List(ctx context.Context, f *query.Filters, limit, offset int) ([]*models.Subtraction, int, error) {
	where, args := f.Where(1)
	base := `FROM subtractions`
	if where != "" {
		base += ` WHERE ` + where
	}
	orderBy := f.OrderBy("id ASC")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) `+base, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count subtractions: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT %s %s ORDER BY %s LIMIT $%d OFFSET $%d`,
			subtractionColumns, base, orderBy, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query subtractions: %w", err)
	}
	defer rows.Close()

	var subs []*models.Subtraction
	for rows.Next() {
		sub, err := scanSubtraction(rows)
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating subtractions: %w", err)
	}
	return subs, total, nil
}

func (r *subtractionRepository) Create(ctx context.Context, sub *models.Subtraction) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO subtractions (galaxy_id, obs_id, ref_id, mjdstart, mjdend, exptime,
			tel, inst, filter, base_dir, filename, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, creation_date`,
		sub.GalaxyID,
		sub.ObsID,
		sub.RefID,
		sub.MJDStart,
		sub.MJDEnd,
		sub.ExpTime,
		sub.Tel,
		sub.Inst,
		sub.Filter,
		sub.BaseDir,
		sub.Filename,
		sub.Version,
	).Scan(&sub.ID, &sub.CreationDate)
	if err != nil {
		return fmt.Errorf("failed to create subtraction: %w", err)
	}
	return nil
}

func scanSubtraction(row pgx.Row) (*models.Subtraction, error) {
	var s models.Subtraction
	err := row.Scan(
		&s.ID,
		&s.GalaxyID,
		&s.ObsID,
		&s.RefID,
		&s.CreationDate,
		&s.MJDStart,
		&s.MJDEnd,
		&s.ExpTime,
		&s.Tel,
		&s.Inst,
		&s.Filter,
		&s.BaseDir,
		&s.Filename,
		&s.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan subtraction: %w", err)
	}
	return &s, nil
}
