package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/disparu-project/disparu-engine/pkg/models"
)

func newCatalogFixture() (*CatalogService, *mockCandidateRepo, *mockSourceRepo) {
	galaxies := &mockGalaxyRepo{galaxies: map[int64]*models.Galaxy{
		1: {ID: 1, Name: "NGC1058", RA: 40.669, Dec: 37.340},
	}}
	subtractions := &mockSubtractionRepo{subs: map[int64]*models.Subtraction{}}
	candidates := &mockCandidateRepo{candidates: map[int64]*models.Candidate{}}
	sources := &mockSourceRepo{}
	svc := NewCatalogService(galaxies, subtractions, candidates, sources,
		nil, 200, 0.05, zap.NewNop())
	return svc, candidates, sources
}

func TestCandidateDetail_Decoration(t *testing.T) {
	svc, candidates, sources := newCatalogFixture()
	candidates.candidates[42] = &models.Candidate{
		ID: 42, GalaxyID: 1, XPos: 101.7, YPos: 215.2,
		RA: 40.6701, Dec: 37.3412,
		IsPos: true, SciFlux: 120.0, Diff2SciFlux: 0.8,
	}
	sources.sources = []*models.Source{
		{ID: 1, GalaxyID: 1, Name: "NGC1058_DS1", RA: 40.6701, Dec: 37.3412},
	}

	view, err := svc.CandidateDetail(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, models.TypeDispStar, view.ProvisionalType)
	assert.Equal(t, []string{"NGC1058_DS1"}, view.MatchedSources)
	// Pixel coordinates are truncated in thumbnail names.
	assert.Equal(t, "scithumb_x101_y215_id42.png", view.Thumbnails.Sci)
	assert.Equal(t, "refthumb_x101_y215_id42.png", view.Thumbnails.Ref)
	assert.Equal(t, "diffthumb_x101_y215_id42.png", view.Thumbnails.Diff)
}

func TestCandidateDetail_NoMatches(t *testing.T) {
	svc, candidates, _ := newCatalogFixture()
	candidates.candidates[42] = &models.Candidate{
		ID: 42, GalaxyID: 1, RA: 40.6701, Dec: 37.3412,
		IsPos: false, SciFlux: 50.0, Diff2SciFlux: 0.2,
	}

	view, err := svc.CandidateDetail(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, models.TypeVarStar, view.ProvisionalType)
	assert.Empty(t, view.MatchedSources)
	assert.NotNil(t, view.MatchedSources)
}

func TestCandidates_ListDecorated(t *testing.T) {
	svc, candidates, sources := newCatalogFixture()
	candidates.candidates[1] = &models.Candidate{
		ID: 1, GalaxyID: 1, RA: 40.6701, Dec: 37.3412,
		IsPos: true, SciFlux: 100, Diff2SciFlux: 0.9,
	}
	sources.sources = []*models.Source{
		{ID: 1, GalaxyID: 1, Name: "NGC1058_DS1", RA: 40.6701, Dec: 37.3412},
	}

	page, err := svc.Candidates(context.Background(), map[string]string{}, 1)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, []string{"NGC1058_DS1"}, page.Results[0].MatchedSources)
	assert.Equal(t, models.TypeDispStar, page.Results[0].ProvisionalType)
}

func TestNewPage_Math(t *testing.T) {
	tests := []struct {
		name        string
		total, page int
		wantPages   int
		wantNext    bool
		wantPrev    bool
	}{
		{name: "empty", total: 0, page: 1, wantPages: 0, wantNext: false, wantPrev: false},
		{name: "single page", total: 150, page: 1, wantPages: 1, wantNext: false, wantPrev: false},
		{name: "exact boundary", total: 400, page: 1, wantPages: 2, wantNext: true, wantPrev: false},
		{name: "middle page", total: 500, page: 2, wantPages: 3, wantNext: true, wantPrev: true},
		{name: "last page", total: 500, page: 3, wantPages: 3, wantNext: false, wantPrev: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPage([]int{}, tt.total, tt.page, 200)
			assert.Equal(t, tt.wantPages, p.Pages)
			assert.Equal(t, tt.wantNext, p.HasNext)
			assert.Equal(t, tt.wantPrev, p.HasPrev)
			assert.Equal(t, tt.total, p.Total)
		})
	}
}

func TestGalaxies_List(t *testing.T) {
	svc, _, _ := newCatalogFixture()

	page, err := svc.Galaxies(context.Background(), map[string]string{}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page, "page numbers clamp to 1")
	assert.Equal(t, 1, page.Total)
}
