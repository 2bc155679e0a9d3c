package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/disparu-project/disparu-engine/pkg/models"
	"github.com/disparu-project/disparu-engine/pkg/services"
)

func newCatalogTestServer(t *testing.T, galaxies *mockGalaxyRepo, candidates *mockCandidateRepo, sources *mockSourceRepo) *httptest.Server {
	t.Helper()
	subtractions := &mockSubtractionRepo{subs: map[int64]*models.Subtraction{}}
	catalog := services.NewCatalogService(galaxies, subtractions, candidates, sources,
		nil, 200, 0.05, zap.NewNop())

	mux := http.NewServeMux()
	NewCatalogHandler(catalog, zap.NewNop()).RegisterRoutes(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestListGalaxies(t *testing.T) {
	galaxies := &mockGalaxyRepo{galaxies: map[int64]*models.Galaxy{
		1: {ID: 1, Name: "NGC1058", RA: 40.669, Dec: 37.340},
	}}
	server := newCatalogTestServer(t, galaxies,
		&mockCandidateRepo{candidates: map[int64]*models.Candidate{}}, &mockSourceRepo{})

	resp, err := http.Get(server.URL + "/api/galaxies")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page struct {
		Results []models.Galaxy `json:"results"`
		Total   int             `json:"total"`
		Page    int             `json:"page"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "NGC1058", page.Results[0].Name)
}

func TestListGalaxies_RepositoryError(t *testing.T) {
	galaxies := &mockGalaxyRepo{listErr: errors.New("connection lost")}
	server := newCatalogTestServer(t, galaxies,
		&mockCandidateRepo{candidates: map[int64]*models.Candidate{}}, &mockSourceRepo{})

	resp, err := http.Get(server.URL + "/api/galaxies")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestGetGalaxy_NotFound(t *testing.T) {
	server := newCatalogTestServer(t, &mockGalaxyRepo{galaxies: map[int64]*models.Galaxy{}},
		&mockCandidateRepo{candidates: map[int64]*models.Candidate{}}, &mockSourceRepo{})

	resp, err := http.Get(server.URL + "/api/galaxies/99")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetGalaxy_BadID(t *testing.T) {
	server := newCatalogTestServer(t, &mockGalaxyRepo{galaxies: map[int64]*models.Galaxy{}},
		&mockCandidateRepo{candidates: map[int64]*models.Candidate{}}, &mockSourceRepo{})

	resp, err := http.Get(server.URL + "/api/galaxies/abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetCandidate_Decorated(t *testing.T) {
	galaxies := &mockGalaxyRepo{galaxies: map[int64]*models.Galaxy{
		1: {ID: 1, Name: "NGC1058", RA: 40.669, Dec: 37.340},
	}}
	candidates := &mockCandidateRepo{candidates: map[int64]*models.Candidate{
		42: {ID: 42, GalaxyID: 1, XPos: 101.7, YPos: 215.2,
			RA: 40.6701, Dec: 37.3412, IsPos: true, SciFlux: 120, Diff2SciFlux: 0.8},
	}}
	server := newCatalogTestServer(t, galaxies, candidates, &mockSourceRepo{})

	resp, err := http.Get(server.URL + "/api/candidates/42")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view struct {
		ID              int64  `json:"id"`
		ProvisionalType string `json:"provisional_type"`
		Thumbnails      struct {
			Sci string `json:"sci"`
		} `json:"thumbnails"`
		MatchedSources []string `json:"matched_sources"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, int64(42), view.ID)
	assert.Equal(t, "DispStar", view.ProvisionalType)
	assert.Equal(t, "scithumb_x101_y215_id42.png", view.Thumbnails.Sci)
	assert.Empty(t, view.MatchedSources)
}

func TestListCandidates_FilterParamsAccepted(t *testing.T) {
	galaxies := &mockGalaxyRepo{galaxies: map[int64]*models.Galaxy{
		1: {ID: 1, Name: "NGC1058"},
	}}
	candidates := &mockCandidateRepo{candidates: map[int64]*models.Candidate{
		1: {ID: 1, GalaxyID: 1, RA: 40.6701, Dec: 37.3412, IsPos: false, SciFlux: 50, Diff2SciFlux: 0.3},
	}}
	server := newCatalogTestServer(t, galaxies, candidates, &mockSourceRepo{})

	resp, err := http.Get(server.URL + "/api/candidates?snr__gte=bogus&ispos=False&page=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	// Malformed filter values never fail the request.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetSource(t *testing.T) {
	sources := &mockSourceRepo{sources: []*models.Source{
		{ID: 7, GalaxyID: 1, Name: "NGC1058_DS1", Type: models.TypeDispStar, RA: 40.67, Dec: 37.34},
	}}
	server := newCatalogTestServer(t, &mockGalaxyRepo{galaxies: map[int64]*models.Galaxy{}},
		&mockCandidateRepo{candidates: map[int64]*models.Candidate{}}, sources)

	resp, err := http.Get(server.URL + "/api/sources/7")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var source models.Source
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&source))
	assert.Equal(t, "NGC1058_DS1", source.Name)
	assert.Equal(t, models.TypeDispStar, source.Type)
}
