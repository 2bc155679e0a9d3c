package repositories

import (
	"context"
	"fmt"

	"github.com/disparu-project/disparu-engine/pkg/database"
	"github.com/disparu-project/disparu-engine/pkg/models"
)

// RefRepository provides data access for reference-epoch images. Refs are
// written by ingestion and only read back when assembling subtractions.
type RefRepository interface {
	Create(ctx context.Context, ref *models.Ref) error
	GetByLocation(ctx context.Context, baseDir, filename, version string) (*models.Ref, error)
}

// ObservationRepository provides data access for science-epoch images.
type ObservationRepository interface {
	Create(ctx context.Context, obs *models.Observation) error
	GetByLocation(ctx context.Context, baseDir, filename, version string) (*models.Observation, error)
}

type refRepository struct {
	db *database.DB
}

// NewRefRepository creates a new RefRepository.
func NewRefRepository(db *database.DB) RefRepository {
	return &refRepository{db: db}
}

func (r *refRepository) Create(ctx context.Context, ref *models.Ref) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO refs (galaxy_id, mjdstart, mjdend, exptime, tel, inst, filter,
			base_dir, filename, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, creation_date`,
		ref.GalaxyID,
		ref.MJDStart,
		ref.MJDEnd,
		ref.ExpTime,
		ref.Tel,
		ref.Inst,
		ref.Filter,
		ref.BaseDir,
		ref.Filename,
		ref.Version,
	).Scan(&ref.ID, &ref.CreationDate)
	if err != nil {
		return fmt.Errorf("failed to create ref: %w", err)
	}
	return nil
}

func (r *refRepository) GetByLocation(ctx context.Context, baseDir, filename, version string) (*models.Ref, error) {
	var ref models.Ref
	err := r.db.QueryRow(ctx, `
		SELECT id, galaxy_id, creation_date, mjdstart, mjdend, exptime, tel, inst,
			filter, base_dir, filename, version
		FROM refs
		WHERE base_dir = $1 AND filename = $2 AND version = $3`,
		baseDir, filename, version,
	).Scan(
		&ref.ID, &ref.GalaxyID, &ref.CreationDate, &ref.MJDStart, &ref.MJDEnd,
		&ref.ExpTime, &ref.Tel, &ref.Inst, &ref.Filter, &ref.BaseDir,
		&ref.Filename, &ref.Version,
	)
	if err != nil {
		return nil, wrapNoRows(err, "ref")
	}
	return &ref, nil
}

type observationRepository struct {
	db *database.DB
}

// NewObservationRepository creates a new ObservationRepository.
func NewObservationRepository(db *database.DB) ObservationRepository {
	return &observationRepository{db: db}
}

func (r *observationRepository) Create(ctx context.Context, obs *models.Observation) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO observations (galaxy_id, mjdstart, mjdend, exptime, tel, inst,
			filter, base_dir, filename, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, creation_date`,
		obs.GalaxyID,
		obs.MJDStart,
		obs.MJDEnd,
		obs.ExpTime,
		obs.Tel,
		obs.Inst,
		obs.Filter,
		obs.BaseDir,
		obs.Filename,
		obs.Version,
	).Scan(&obs.ID, &obs.CreationDate)
	if err != nil {
		return fmt.Errorf("failed to create observation: %w", err)
	}
	return nil
}

func (r *observationRepository) GetByLocation(ctx context.Context, baseDir, filename, version string) (*models.Observation, error) {
	var obs models.Observation
	err := r.db.QueryRow(ctx, `
		SELECT id, galaxy_id, creation_date, mjdstart, mjdend, exptime, tel, inst,
			filter, base_dir, filename, version
		FROM observations
		WHERE base_dir = $1 AND filename = $2 AND version = $3`,
		baseDir, filename, version,
	).Scan(
		&obs.ID, &obs.GalaxyID, &obs.CreationDate, &obs.MJDStart, &obs.MJDEnd,
		&obs.ExpTime, &obs.Tel, &obs.Inst, &obs.Filter, &obs.BaseDir,
		&obs.Filename, &obs.Version,
	)
	if err != nil {
		return nil, wrapNoRows(err, "observation")
	}
	return &obs, nil
}
