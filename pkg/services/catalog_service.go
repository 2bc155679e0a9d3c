package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/disparu-project/disparu-engine/pkg/astro"
	"github.com/disparu-project/disparu-engine/pkg/models"
	"github.com/disparu-project/disparu-engine/pkg/query"
	"github.com/disparu-project/disparu-engine/pkg/repositories"
	"github.com/disparu-project/disparu-engine/pkg/resolver"
)

// Page is one page of a filtered collection listing.
type Page[T any] struct {
	Results []T  `json:"results"`
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

// Thumbnails names the cutout image trio generated for a candidate during
// catalog ingestion. Pixel coordinates are truncated, matching the names the
// thumbnail generator writes.
type Thumbnails struct {
	Sci  string `json:"sci"`
	Ref  string `json:"ref"`
	Diff string `json:"diff"`
}

// CandidateView is a candidate decorated for display: the type the
// classifier would assign on promotion, its thumbnail names, and any
// already-promoted sources at its position.
type CandidateView struct {
	*models.Candidate
	ProvisionalType models.SourceType `json:"provisional_type"`
	Thumbnails      Thumbnails        `json:"thumbnails"`
	MatchedSources  []string          `json:"matched_sources"`
}

// CatalogService serves filtered, paginated views over the catalog
// collections.
type CatalogService struct {
	galaxies     repositories.GalaxyRepository
	subtractions repositories.SubtractionRepository
	candidates   repositories.CandidateRepository
	sources      repositories.SourceRepository
	resolver     resolver.Resolver
	pageSize     int
	matchRadius  float64
	logger       *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	galaxies repositories.GalaxyRepository,
	subtractions repositories.SubtractionRepository,
	candidates repositories.CandidateRepository,
	sources repositories.SourceRepository,
	res resolver.Resolver,
	pageSize int,
	matchRadiusArcsec float64,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		galaxies:     galaxies,
		subtractions: subtractions,
		candidates:   candidates,
		sources:      sources,
		resolver:     res,
		pageSize:     pageSize,
		matchRadius:  matchRadiusArcsec,
		logger:       logger,
	}
}

// Galaxies lists surveyed galaxies matching the given filter parameters.
func (s *CatalogService) Galaxies(ctx context.Context, params map[string]string, page int) (*Page[*models.Galaxy], error) {
	f := query.Galaxies.Build(ctx, params, s.resolver)
	page = clampPage(page)
	results, total, err := s.galaxies.List(ctx, f, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, err
	}
	return newPage(results, total, page, s.pageSize), nil
}

// Subtractions lists difference images matching the given filter parameters.
func (s *CatalogService) Subtractions(ctx context.Context, params map[string]string, page int) (*Page[*models.Subtraction], error) {
	f := query.Subtractions.Build(ctx, params, s.resolver)
	page = clampPage(page)
	results, total, err := s.subtractions.List(ctx, f, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, err
	}
	return newPage(results, total, page, s.pageSize), nil
}

// Sources lists promoted sources matching the given filter parameters.
func (s *CatalogService) Sources(ctx context.Context, params map[string]string, page int) (*Page[*models.Source], error) {
	f := query.Sources.Build(ctx, params, s.resolver)
	page = clampPage(page)
	results, total, err := s.sources.List(ctx, f, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, err
	}
	return newPage(results, total, page, s.pageSize), nil
}

// Candidates lists detections matching the given filter parameters. Each
// result carries its display decorations; galaxy source catalogs are loaded
// once per distinct galaxy on the page.
func (s *CatalogService) Candidates(ctx context.Context, params map[string]string, page int) (*Page[*CandidateView], error) {
	f := query.Candidates.Build(ctx, params, s.resolver)
	page = clampPage(page)
	results, total, err := s.candidates.List(ctx, f, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, err
	}

	views := make([]*CandidateView, len(results))
	galaxySources := make(map[int64][]*models.Source)
	for i, cand := range results {
		sources, ok := galaxySources[cand.GalaxyID]
		if !ok {
			sources, err = s.sources.ListByGalaxy(ctx, cand.GalaxyID)
			if err != nil {
				return nil, fmt.Errorf("failed to load sources for galaxy %d: %w", cand.GalaxyID, err)
			}
			galaxySources[cand.GalaxyID] = sources
		}
		views[i] = s.decorate(cand, sources)
	}
	return newPage(views, total, page, s.pageSize), nil
}

// CandidateDetail returns one decorated candidate.
func (s *CatalogService) CandidateDetail(ctx context.Context, id int64) (*CandidateView, error) {
	cand, err := s.candidates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sources, err := s.sources.ListByGalaxy(ctx, cand.GalaxyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources for galaxy %d: %w", cand.GalaxyID, err)
	}
	return s.decorate(cand, sources), nil
}

// GalaxyByID returns one galaxy.
func (s *CatalogService) GalaxyByID(ctx context.Context, id int64) (*models.Galaxy, error) {
	return s.galaxies.GetByID(ctx, id)
}

// SourceByID returns one promoted source.
func (s *CatalogService) SourceByID(ctx context.Context, id int64) (*models.Source, error) {
	return s.sources.GetByID(ctx, id)
}

// SubtractionByID returns one difference image record.
func (s *CatalogService) SubtractionByID(ctx context.Context, id int64) (*models.Subtraction, error) {
	return s.subtractions.GetByID(ctx, id)
}

func (s *CatalogService) decorate(cand *models.Candidate, sources []*models.Source) *CandidateView {
	positions := make([]astro.Position, len(sources))
	for i, src := range sources {
		positions[i] = astro.Position{RA: src.RA, Dec: src.Dec}
	}
	matches := astro.Match(astro.Position{RA: cand.RA, Dec: cand.Dec}, positions, s.matchRadius)
	names := make([]string, len(matches))
	for i, ix := range matches {
		names[i] = sources[ix].Name
	}
	return &CandidateView{
		Candidate:       cand,
		ProvisionalType: cand.SourceType(),
		Thumbnails:      thumbnailNames(cand),
		MatchedSources:  names,
	}
}

func thumbnailNames(c *models.Candidate) Thumbnails {
	x, y := int(c.XPos), int(c.YPos)
	return Thumbnails{
		Sci:  fmt.Sprintf("scithumb_x%d_y%d_id%d.png", x, y, c.ID),
		Ref:  fmt.Sprintf("refthumb_x%d_y%d_id%d.png", x, y, c.ID),
		Diff: fmt.Sprintf("diffthumb_x%d_y%d_id%d.png", x, y, c.ID),
	}
}

func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func newPage[T any](results []T, total, page, pageSize int) *Page[T] {
	if results == nil {
		results = []T{}
	}
	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	return &Page[T]{
		Results: results,
		Total:   total,
		Page:    page,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1 && total > 0,
	}
}
