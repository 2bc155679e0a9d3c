package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/disparu-project/disparu-engine/pkg/apperrors"
	"github.com/disparu-project/disparu-engine/pkg/models"
)

func newPromotionFixture() (*PromotionService, *mockCandidateRepo, *mockSourceRepo) {
	galaxies := &mockGalaxyRepo{galaxies: map[int64]*models.Galaxy{
		1: {ID: 1, Name: "NGC1058", RA: 40.669, Dec: 37.340, Redshift: ptr(0.001728)},
	}}
	candidates := &mockCandidateRepo{candidates: map[int64]*models.Candidate{
		// A disappearing detection that classifies as DispStar.
		10: {ID: 10, SubID: 5, GalaxyID: 1, RA: 40.6701, Dec: 37.3412,
			IsPos: true, SciFlux: 120.0, Diff2SciFlux: 0.8},
	}}
	sources := &mockSourceRepo{}
	svc := NewPromotionService(candidates, sources, galaxies, 0.05, zap.NewNop())
	return svc, candidates, sources
}

func ptr[T any](v T) *T { return &v }

func TestPromote_NewSource(t *testing.T) {
	svc, _, sources := newPromotionFixture()

	result, err := svc.Promote(context.Background(), 10, "")
	require.NoError(t, err)

	assert.Equal(t, StatusPromoted, result.Status)
	assert.Equal(t, "NGC1058_DS1", result.SourceName)
	assert.Equal(t, models.TypeDispStar, result.SourceType)
	assert.Empty(t, result.MatchedNames)

	require.Len(t, sources.sources, 1)
	src := sources.sources[0]
	assert.Equal(t, "NGC1058_DS1", src.Name)
	assert.Equal(t, models.TypeDispStar, src.Type)
	assert.Equal(t, int64(1), src.GalaxyID)
	require.NotNil(t, src.SubID)
	assert.Equal(t, int64(5), *src.SubID)
	require.NotNil(t, src.CandID)
	assert.Equal(t, int64(10), *src.CandID)
	assert.Equal(t, 40.6701, src.RA)
	require.NotNil(t, src.Redshift)
	assert.Equal(t, 0.001728, *src.Redshift, "redshift copied from the host galaxy")
}

func TestPromote_SequenceNumbers(t *testing.T) {
	svc, candidates, sources := newPromotionFixture()
	candidates.candidates[11] = &models.Candidate{
		ID: 11, SubID: 5, GalaxyID: 1, RA: 40.8, Dec: 37.5,
		IsPos: false, SciFlux: models.NoSciFlux,
	}

	first, err := svc.Promote(context.Background(), 10, "")
	require.NoError(t, err)
	second, err := svc.Promote(context.Background(), 11, "")
	require.NoError(t, err)

	assert.Equal(t, "NGC1058_DS1", first.SourceName)
	assert.Equal(t, "NGC1058_DS2", second.SourceName)
	assert.Equal(t, models.TypeTransient, second.SourceType)
	assert.Len(t, sources.sources, 2)
}

func TestPromote_TypeOverride(t *testing.T) {
	svc, _, _ := newPromotionFixture()

	result, err := svc.Promote(context.Background(), 10, "Junk")
	require.NoError(t, err)
	assert.Equal(t, StatusPromoted, result.Status)
	assert.Equal(t, models.TypeJunk, result.SourceType)
}

func TestPromote_InvalidOverrideFallsBackToClassifier(t *testing.T) {
	svc, _, _ := newPromotionFixture()

	result, err := svc.Promote(context.Background(), 10, "Supernova")
	require.NoError(t, err)
	assert.Equal(t, models.TypeDispStar, result.SourceType)
}

func TestPromote_AlreadyMatched(t *testing.T) {
	svc, _, sources := newPromotionFixture()
	sources.sources = []*models.Source{
		{ID: 1, GalaxyID: 1, Name: "NGC1058_DS1", RA: 40.6701, Dec: 37.3412},
	}

	result, err := svc.Promote(context.Background(), 10, "")
	require.NoError(t, err)
	assert.Equal(t, StatusAlreadyMatched, result.Status)
	assert.Equal(t, []string{"NGC1058_DS1"}, result.MatchedNames)
	assert.Len(t, sources.sources, 1, "no source written")
}

func TestPromote_RefusalIsIdempotent(t *testing.T) {
	svc, _, sources := newPromotionFixture()
	sources.sources = []*models.Source{
		{ID: 1, GalaxyID: 1, Name: "NGC1058_DS1", RA: 40.6701, Dec: 37.3412},
	}

	first, err := svc.Promote(context.Background(), 10, "")
	require.NoError(t, err)
	second, err := svc.Promote(context.Background(), 10, "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, sources.sources, 1)
}

func TestPromote_MatchReportsAllTies(t *testing.T) {
	svc, _, sources := newPromotionFixture()
	sources.sources = []*models.Source{
		{ID: 1, GalaxyID: 1, Name: "NGC1058_DS1", RA: 40.6701, Dec: 37.3412},
		{ID: 2, GalaxyID: 1, Name: "NGC1058_DS2", RA: 40.6701, Dec: 37.34121},
		{ID: 3, GalaxyID: 1, Name: "NGC1058_DS3", RA: 41.5, Dec: 37.0},
	}

	result, err := svc.Promote(context.Background(), 10, "")
	require.NoError(t, err)
	assert.Equal(t, StatusAlreadyMatched, result.Status)
	assert.Equal(t, []string{"NGC1058_DS1", "NGC1058_DS2"}, result.MatchedNames)
}

func TestPromote_OtherGalaxySourcesIgnored(t *testing.T) {
	svc, _, sources := newPromotionFixture()
	// Same position, different galaxy: must not block the promotion.
	sources.sources = []*models.Source{
		{ID: 1, GalaxyID: 2, Name: "NGC6946_DS1", RA: 40.6701, Dec: 37.3412},
	}

	result, err := svc.Promote(context.Background(), 10, "")
	require.NoError(t, err)
	assert.Equal(t, StatusPromoted, result.Status)
	assert.Equal(t, "NGC1058_DS1", result.SourceName)
}

func TestPromote_CandidateNotFound(t *testing.T) {
	svc, _, _ := newPromotionFixture()

	result, err := svc.Promote(context.Background(), 999, "")
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, result.Status)
}

func TestPromote_DuplicateNamePropagates(t *testing.T) {
	svc, _, sources := newPromotionFixture()
	sources.createErr = apperrors.ErrDuplicateName

	_, err := svc.Promote(context.Background(), 10, "")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateName)
}
