package services

import (
	"context"
	"fmt"

	"github.com/disparu-project/disparu-engine/pkg/apperrors"
	"github.com/disparu-project/disparu-engine/pkg/models"
	"github.com/disparu-project/disparu-engine/pkg/query"
	"github.com/disparu-project/disparu-engine/pkg/repositories"
)

// ============================================================================
// Mock Implementations
// ============================================================================

type mockGalaxyRepo struct {
	galaxies map[int64]*models.Galaxy
}

var _ repositories.GalaxyRepository = (*mockGalaxyRepo)(nil)

func (m *mockGalaxyRepo) GetByID(ctx context.Context, id int64) (*models.Galaxy, error) {
	g, ok := m.galaxies[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return g, nil
}

func (m *mockGalaxyRepo) GetByName(ctx context.Context, name string) (*models.Galaxy, error) {
	for _, g := range m.galaxies {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockGalaxyRepo) List(ctx context.Context, f *query.Filters, limit, offset int) ([]*models.Galaxy, int, error) {
	var all []*models.Galaxy
	for _, g := range m.galaxies {
		all = append(all, g)
	}
	return all, len(all), nil
}

func (m *mockGalaxyRepo) Create(ctx context.Context, galaxy *models.Galaxy) error {
	return nil
}

type mockCandidateRepo struct {
	candidates map[int64]*models.Candidate
}

var _ repositories.CandidateRepository = (*mockCandidateRepo)(nil)

func (m *mockCandidateRepo) GetByID(ctx context.Context, id int64) (*models.Candidate, error) {
	c, ok := m.candidates[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return c, nil
}

func (m *mockCandidateRepo) List(ctx context.Context, f *query.Filters, limit, offset int) ([]*models.Candidate, int, error) {
	var all []*models.Candidate
	for _, c := range m.candidates {
		all = append(all, c)
	}
	return all, len(all), nil
}

func (m *mockCandidateRepo) CreateBatch(ctx context.Context, candidates []*models.Candidate) error {
	return nil
}

func (m *mockCandidateRepo) ExistsForSubtraction(ctx context.Context, subID int64, isPos bool) (bool, error) {
	return false, nil
}

type mockSourceRepo struct {
	sources   []*models.Source
	createErr error
	nextID    int64
}

var _ repositories.SourceRepository = (*mockSourceRepo)(nil)

func (m *mockSourceRepo) GetByID(ctx context.Context, id int64) (*models.Source, error) {
	for _, s := range m.sources {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockSourceRepo) List(ctx context.Context, f *query.Filters, limit, offset int) ([]*models.Source, int, error) {
	return m.sources, len(m.sources), nil
}

func (m *mockSourceRepo) ListByGalaxy(ctx context.Context, galaxyID int64) ([]*models.Source, error) {
	var out []*models.Source
	for _, s := range m.sources {
		if s.GalaxyID == galaxyID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSourceRepo) CountByGalaxy(ctx context.Context, galaxyID int64) (int, error) {
	count := 0
	for _, s := range m.sources {
		if s.GalaxyID == galaxyID {
			count++
		}
	}
	return count, nil
}

func (m *mockSourceRepo) Create(ctx context.Context, source *models.Source) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, s := range m.sources {
		if s.GalaxyID == source.GalaxyID && s.Name == source.Name {
			return fmt.Errorf("source %q: %w", source.Name, apperrors.ErrDuplicateName)
		}
	}
	m.nextID++
	source.ID = m.nextID
	m.sources = append(m.sources, source)
	return nil
}

type mockSubtractionRepo struct {
	subs map[int64]*models.Subtraction
}

var _ repositories.SubtractionRepository = (*mockSubtractionRepo)(nil)

func (m *mockSubtractionRepo) GetByID(ctx context.Context, id int64) (*models.Subtraction, error) {
	s, ok := m.subs[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return s, nil
}

func (m *mockSubtractionRepo) GetByLocation(ctx context.Context, baseDir, filename, version string) (*models.Subtraction, error) {
	for _, s := range m.subs {
		if s.BaseDir == baseDir && s.Filename == filename && s.Version == version {
			return s, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockSubtractionRepo) List(ctx context.Context, f *query.Filters, limit, offset int) ([]*models.Subtraction, int, error) {
	var all []*models.Subtraction
	for _, s := range m.subs {
		all = append(all, s)
	}
	return all, len(all), nil
}

func (m *mockSubtractionRepo) Create(ctx context.Context, sub *models.Subtraction) error {
	return nil
}
