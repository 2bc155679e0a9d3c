// Package ingest loads survey products into the catalog: the fixed-width
// galaxy table and the per-subtraction candidate catalogs produced by the
// difference-imaging pipeline.
package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/disparu-project/disparu-engine/pkg/apperrors"
	"github.com/disparu-project/disparu-engine/pkg/models"
	"github.com/disparu-project/disparu-engine/pkg/repositories"
)

// field is one column of a fixed-width catalog line, addressed by byte
// offsets into the line.
type field struct {
	start, end int
}

func (f field) cut(line string) string {
	if f.start >= len(line) {
		return ""
	}
	end := f.end
	if end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(line[f.start:end])
}

func (f field) float(line string) (float64, error) {
	raw := f.cut(line)
	if raw == "" {
		return 0, fmt.Errorf("empty field at bytes %d:%d", f.start, f.end)
	}
	return strconv.ParseFloat(raw, 64)
}

// optFloat returns nil for an empty column.
func (f field) optFloat(line string) (*float64, error) {
	raw := f.cut(line)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// optString returns nil for an empty column.
func (f field) optString(line string) *string {
	raw := f.cut(line)
	if raw == "" {
		return nil
	}
	return &raw
}

// Byte layout of the HST galaxy table.
var galaxyFields = struct {
	name, pgc, ra, dec, redshift, dm, dmErr, dmMethod, dmRef field
}{
	name:     field{0, 7},
	pgc:      field{8, 17},
	ra:       field{18, 27},
	dec:      field{28, 37},
	redshift: field{38, 46},
	dm:       field{47, 54},
	dmErr:    field{55, 59},
	dmMethod: field{60, 72},
	dmRef:    field{73, 92},
}

// ParseGalaxies reads a fixed-width galaxy table. Blank lines are skipped;
// a line with an unparsable coordinate fails the whole parse.
func ParseGalaxies(r io.Reader) ([]*models.Galaxy, error) {
	scanner := bufio.NewScanner(r)
	var galaxies []*models.Galaxy
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		galaxy := &models.Galaxy{
			Name:     galaxyFields.name.cut(line),
			PGC:      galaxyFields.pgc.optString(line),
			DMMethod: galaxyFields.dmMethod.optString(line),
			DMRef:    galaxyFields.dmRef.optString(line),
		}
		if galaxy.Name == "" {
			return nil, fmt.Errorf("line %d: missing galaxy name", lineNo)
		}

		var err error
		if galaxy.RA, err = galaxyFields.ra.float(line); err != nil {
			return nil, fmt.Errorf("line %d: bad ra: %w", lineNo, err)
		}
		if galaxy.Dec, err = galaxyFields.dec.float(line); err != nil {
			return nil, fmt.Errorf("line %d: bad dec: %w", lineNo, err)
		}
		if galaxy.Redshift, err = galaxyFields.redshift.optFloat(line); err != nil {
			return nil, fmt.Errorf("line %d: bad redshift: %w", lineNo, err)
		}
		if galaxy.DM, err = galaxyFields.dm.optFloat(line); err != nil {
			return nil, fmt.Errorf("line %d: bad dm: %w", lineNo, err)
		}
		if galaxy.DMErr, err = galaxyFields.dmErr.optFloat(line); err != nil {
			return nil, fmt.Errorf("line %d: bad dm_err: %w", lineNo, err)
		}

		galaxies = append(galaxies, galaxy)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read galaxy table: %w", err)
	}
	return galaxies, nil
}

// GalaxyIngestor loads parsed galaxy tables into the catalog.
type GalaxyIngestor struct {
	galaxies repositories.GalaxyRepository
	logger   *zap.Logger
}

// NewGalaxyIngestor creates a new GalaxyIngestor.
func NewGalaxyIngestor(galaxies repositories.GalaxyRepository, logger *zap.Logger) *GalaxyIngestor {
	return &GalaxyIngestor{galaxies: galaxies, logger: logger}
}

// Run inserts every galaxy from the table. Galaxies already present by name
// are skipped, so re-running an ingest converges instead of failing halfway.
func (g *GalaxyIngestor) Run(ctx context.Context, r io.Reader) (int, error) {
	galaxies, err := ParseGalaxies(r)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, galaxy := range galaxies {
		if err := g.galaxies.Create(ctx, galaxy); err != nil {
			if errors.Is(err, apperrors.ErrDuplicateName) {
				g.logger.Info("galaxy already present, skipping",
					zap.String("name", galaxy.Name))
				continue
			}
			return inserted, fmt.Errorf("failed to insert galaxy %q: %w", galaxy.Name, err)
		}
		g.logger.Info("inserted galaxy",
			zap.String("name", galaxy.Name),
			zap.Int64("id", galaxy.ID))
		inserted++
	}
	return inserted, nil
}
