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

const candidateColumns = `id, sub_id, galaxy_id, creation_date, xpos, ypos, ra, dec,
	photflags, snr, flux_aper, fluxerr_aper, mag_aper, magerr_aper, elongation,
	fwhm_image, class_star, scorr_peak, sciflux, diff2sciflux, ispos`

// CandidateRepository provides data access for detections.
type CandidateRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Candidate, error)
	List(ctx context.Context, f *query.Filters, limit, offset int) ([]*models.Candidate, int, error)
	// CreateBatch inserts a full candidate catalog in one transaction;
	// either every row lands or none do.
	CreateBatch(ctx context.Context, candidates []*models.Candidate) error
	// ExistsForSubtraction reports whether candidates with the given
	// polarity were already loaded for a subtraction, so re-running an
	// ingest is a no-op instead of a duplication.
	ExistsForSubtraction(ctx context.Context, subID int64, isPos bool) (bool, error)
}

type candidateRepository struct {
	db *database.DB
}

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(db *database.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

var _ CandidateRepository = (*candidateRepository)(nil)

func (r *candidateRepository) GetByID(ctx context.Context, id int64) (*models.Candidate, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	cand, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return cand, nil
}

func (r *candidateRepository) List(ctx context.Context, f *query.Filters, limit, offset int) ([]*models.Candidate, int, error) {
	where, args := f.Where(1)
	base := `FROM candidates`
	if where != "" {
		base += ` WHERE ` + where
	}
	orderBy := f.OrderBy("id ASC")

	if f.NeedsRefinement() {
		rows, err := r.db.Query(ctx,
			`SELECT `+candidateColumns+` `+base+` ORDER BY `+orderBy, args...)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to query candidates: %w", err)
		}
		defer rows.Close()

		var all []*models.Candidate
		for rows.Next() {
			cand, err := scanCandidate(rows)
			if err != nil {
				return nil, 0, err
			}
			if f.Matches(position(cand.RA, cand.Dec)) {
				all = append(all, cand)
			}
		}
		if err := rows.Err(); err != nil {
			return nil, 0, fmt.Errorf("error iterating candidates: %w", err)
		}
		page, total := paginate(all, limit, offset)
		return page, total, nil
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) `+base, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count candidates: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT %s %s ORDER BY %s LIMIT $%d OFFSET $%d`,
			candidateColumns, base, orderBy, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*models.Candidate
	for rows.Next() {
		cand, err := scanCandidate(rows)
		if err != nil {
			return nil, 0, err
		}
		candidates = append(candidates, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating candidates: %w", err)
	}
	return candidates, total, nil
}

func (r *candidateRepository) CreateBatch(ctx context.Context, candidates []*models.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, cand := range candidates {
		err := tx.QueryRow(ctx, `
			INSERT INTO candidates (sub_id, galaxy_id, xpos, ypos, ra, dec, photflags,
				snr, flux_aper, fluxerr_aper, mag_aper, magerr_aper, elongation,
				fwhm_image, class_star, scorr_peak, sciflux, diff2sciflux, ispos)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
				$15, $16, $17, $18, $19)
			RETURNING id, creation_date`,
			cand.SubID,
			cand.GalaxyID,
			cand.XPos,
			cand.YPos,
			cand.RA,
			cand.Dec,
			cand.PhotFlags,
			cand.SNR,
			cand.FluxAper,
			cand.FluxErrAper,
			cand.MagAper,
			cand.MagErrAper,
			cand.Elongation,
			cand.FWHMImage,
			cand.ClassStar,
			cand.ScorrPeak,
			cand.SciFlux,
			cand.Diff2SciFlux,
			cand.IsPos,
		).Scan(&cand.ID, &cand.CreationDate)
		if err != nil {
			return fmt.Errorf("failed to insert candidate: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit candidates: %w", err)
	}
	return nil
}

func (r *candidateRepository) ExistsForSubtraction(ctx context.Context, subID int64, isPos bool) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM candidates WHERE sub_id = $1 AND ispos = $2)`,
		subID, isPos,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check candidate catalog: %w", err)
	}
	return exists, nil
}

func scanCandidate(row pgx.Row) (*models.Candidate, error) {
	var c models.Candidate
	err := row.Scan(
		&c.ID,
		&c.SubID,
		&c.GalaxyID,
		&c.CreationDate,
		&c.XPos,
		&c.YPos,
		&c.RA,
		&c.Dec,
		&c.PhotFlags,
		&c.SNR,
		&c.FluxAper,
		&c.FluxErrAper,
		&c.MagAper,
		&c.MagErrAper,
		&c.Elongation,
		&c.FWHMImage,
		&c.ClassStar,
		&c.ScorrPeak,
		&c.SciFlux,
		&c.Diff2SciFlux,
		&c.IsPos,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan candidate: %w", err)
	}
	return &c, nil
}
