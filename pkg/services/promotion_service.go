// Package services implements the catalog's business logic on top of the
// repository layer: paginated collection browsing and the candidate
// promotion workflow.
package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/disparu-project/disparu-engine/pkg/apperrors"
	"github.com/disparu-project/disparu-engine/pkg/astro"
	"github.com/disparu-project/disparu-engine/pkg/models"
	"github.com/disparu-project/disparu-engine/pkg/repositories"
)

// PromotionStatus is the outcome of a promotion attempt.
type PromotionStatus string

const (
	// StatusPromoted means a new source row was written.
	StatusPromoted PromotionStatus = "promoted"
	// StatusAlreadyMatched means one or more existing sources lie within
	// the match radius and nothing was written.
	StatusAlreadyMatched PromotionStatus = "already_matched"
	// StatusNotFound means the candidate does not exist.
	StatusNotFound PromotionStatus = "not_found"
)

// PromotionResult describes the outcome of promoting one candidate.
type PromotionResult struct {
	Status PromotionStatus `json:"status"`
	// SourceName and SourceType are set when Status is StatusPromoted.
	SourceName string            `json:"source_name,omitempty"`
	SourceType models.SourceType `json:"source_type,omitempty"`
	// MatchedNames lists the existing sources that blocked the promotion
	// when Status is StatusAlreadyMatched.
	MatchedNames []string `json:"matched_names,omitempty"`
}

// PromotionService turns vetted candidates into permanently named sources.
type PromotionService struct {
	candidates  repositories.CandidateRepository
	sources     repositories.SourceRepository
	galaxies    repositories.GalaxyRepository
	matchRadius float64
	logger      *zap.Logger
}

// NewPromotionService creates a new PromotionService. matchRadiusArcsec is
// the candidate-to-source match tolerance.
func NewPromotionService(
	candidates repositories.CandidateRepository,
	sources repositories.SourceRepository,
	galaxies repositories.GalaxyRepository,
	matchRadiusArcsec float64,
	logger *zap.Logger,
) *PromotionService {
	return &PromotionService{
		candidates:  candidates,
		sources:     sources,
		galaxies:    galaxies,
		matchRadius: matchRadiusArcsec,
		logger:      logger,
	}
}

// Promote attempts to promote the candidate to a named source. When the
// candidate's position matches existing sources of its galaxy, no source is
// written and the matching names are reported instead; repeating the call
// yields the same refusal. typeOverride, when it names a valid source type,
// replaces the classifier's verdict; anything else is ignored.
//
// The name sequence number is read without a lock, so two concurrent
// promotions in one galaxy can collide; the unique constraint on
// (galaxy_id, name) turns the loser into ErrDuplicateName.
func (s *PromotionService) Promote(ctx context.Context, candID int64, typeOverride string) (*PromotionResult, error) {
	cand, err := s.candidates.GetByID(ctx, candID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &PromotionResult{Status: StatusNotFound}, nil
		}
		return nil, fmt.Errorf("failed to load candidate %d: %w", candID, err)
	}

	existing, err := s.sources.ListByGalaxy(ctx, cand.GalaxyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load galaxy sources: %w", err)
	}

	positions := make([]astro.Position, len(existing))
	for i, src := range existing {
		positions[i] = astro.Position{RA: src.RA, Dec: src.Dec}
	}
	matches := astro.Match(astro.Position{RA: cand.RA, Dec: cand.Dec}, positions, s.matchRadius)
	if len(matches) > 0 {
		names := make([]string, len(matches))
		for i, ix := range matches {
			names[i] = existing[ix].Name
		}
		s.logger.Info("candidate already matched to existing sources",
			zap.Int64("candidate_id", candID),
			zap.Strings("matched", names))
		return &PromotionResult{Status: StatusAlreadyMatched, MatchedNames: names}, nil
	}

	galaxy, err := s.galaxies.GetByID(ctx, cand.GalaxyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load galaxy %d: %w", cand.GalaxyID, err)
	}

	count, err := s.sources.CountByGalaxy(ctx, cand.GalaxyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count galaxy sources: %w", err)
	}
	name := models.NextSourceName(galaxy.Name, count)

	srcType := cand.SourceType()
	if override, ok := models.ParseSourceType(typeOverride); ok {
		srcType = override
	}

	source := &models.Source{
		SubID:    &cand.SubID,
		CandID:   &cand.ID,
		GalaxyID: cand.GalaxyID,
		Name:     name,
		RA:       cand.RA,
		Dec:      cand.Dec,
		Type:     srcType,
		Redshift: galaxy.Redshift,
	}
	if err := s.sources.Create(ctx, source); err != nil {
		return nil, fmt.Errorf("failed to promote candidate %d: %w", candID, err)
	}

	s.logger.Info("promoted candidate to source",
		zap.Int64("candidate_id", candID),
		zap.String("source_name", name),
		zap.String("source_type", string(srcType)))

	return &PromotionResult{
		Status:     StatusPromoted,
		SourceName: name,
		SourceType: srcType,
	}, nil
}
