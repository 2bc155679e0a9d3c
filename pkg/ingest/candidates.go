package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"path"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/disparu-project/disparu-engine/pkg/models"
	"github.com/disparu-project/disparu-engine/pkg/repositories"
)

// Byte layout of a SExtractor candidate catalog line. The leading index
// column is parsed but discarded; the database assigns its own ids.
var candidateFields = struct {
	num, xpos, ypos, ra, dec, flags, snr        field
	fluxAper, fluxErrAper, magAper, magErrAper  field
	elongation, fwhmImage, classStar, scorrPeak field
	sciFlux, diff2SciFlux                       field
}{
	num:          field{0, 6},
	xpos:         field{7, 17},
	ypos:         field{18, 28},
	ra:           field{29, 43},
	dec:          field{44, 58},
	flags:        field{59, 64},
	snr:          field{65, 73},
	fluxAper:     field{75, 84},
	fluxErrAper:  field{85, 97},
	magAper:      field{98, 106},
	magErrAper:   field{107, 118},
	elongation:   field{119, 129},
	fwhmImage:    field{130, 140},
	classStar:    field{141, 151},
	scorrPeak:    field{152, 162},
	sciFlux:      field{163, 173},
	diff2SciFlux: field{174, 186},
}

// CatalogLocation identifies where a candidate catalog file sits in the
// survey data tree and which subtraction produced it. The layout is
// .../{galaxy}/{instrument}/{version}/{name}_cand.cat, with negative-image
// catalogs carrying a _negsub suffix that the subtraction filename drops.
type CatalogLocation struct {
	BaseDir    string
	Filename   string
	SubFile    string
	GalaxyName string
	Version    string
}

// ParseCatalogPath derives the catalog's location from its file path.
func ParseCatalogPath(file string) (CatalogLocation, error) {
	baseDir := path.Dir(file)
	filename := path.Base(file)
	if !strings.HasSuffix(filename, "_cand.cat") {
		return CatalogLocation{}, fmt.Errorf("not a candidate catalog: %s", filename)
	}
	subFile := strings.Replace(filename, "_cand.cat", ".fits", 1)
	subFile = strings.Replace(subFile, "_negsub", "", 1)

	parts := strings.Split(baseDir, "/")
	if len(parts) < 3 {
		return CatalogLocation{}, fmt.Errorf("catalog path too shallow: %s", file)
	}
	return CatalogLocation{
		BaseDir:    baseDir,
		Filename:   filename,
		SubFile:    subFile,
		GalaxyName: parts[len(parts)-3],
		Version:    parts[len(parts)-1],
	}, nil
}

// ParseCandidates reads a candidate catalog, skipping the header line. Empty
// numeric columns become NaN (or -1 for the flag column), preserving what
// the pipeline wrote.
func ParseCandidates(r io.Reader) ([]*models.Candidate, error) {
	scanner := bufio.NewScanner(r)
	var candidates []*models.Candidate
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 {
			continue // header
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		cand := &models.Candidate{}
		var err error
		if cand.RA, err = candidateFields.ra.float(line); err != nil {
			return nil, fmt.Errorf("line %d: bad ra: %w", lineNo, err)
		}
		if cand.Dec, err = candidateFields.dec.float(line); err != nil {
			return nil, fmt.Errorf("line %d: bad dec: %w", lineNo, err)
		}
		cand.XPos = looseFloat(candidateFields.xpos, line)
		cand.YPos = looseFloat(candidateFields.ypos, line)
		cand.PhotFlags = looseInt(candidateFields.flags, line)
		cand.SNR = looseFloat(candidateFields.snr, line)
		cand.FluxAper = looseFloat(candidateFields.fluxAper, line)
		cand.FluxErrAper = looseFloat(candidateFields.fluxErrAper, line)
		cand.MagAper = looseFloat(candidateFields.magAper, line)
		cand.MagErrAper = looseFloat(candidateFields.magErrAper, line)
		cand.Elongation = looseFloat(candidateFields.elongation, line)
		cand.FWHMImage = looseFloat(candidateFields.fwhmImage, line)
		cand.ClassStar = looseFloat(candidateFields.classStar, line)
		cand.ScorrPeak = looseFloat(candidateFields.scorrPeak, line)
		cand.SciFlux = looseFloat(candidateFields.sciFlux, line)
		cand.Diff2SciFlux = looseFloat(candidateFields.diff2SciFlux, line)

		candidates = append(candidates, cand)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidate catalog: %w", err)
	}
	return candidates, nil
}

func looseFloat(f field, line string) float64 {
	raw := f.cut(line)
	if raw == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func looseInt(f field, line string) int {
	raw := f.cut(line)
	if raw == "" {
		return -1
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return v
}

// CandidateIngestor loads candidate catalogs into the database, resolving
// each catalog against its galaxy and subtraction.
type CandidateIngestor struct {
	galaxies     repositories.GalaxyRepository
	subtractions repositories.SubtractionRepository
	candidates   repositories.CandidateRepository
	logger       *zap.Logger
}

// NewCandidateIngestor creates a new CandidateIngestor.
func NewCandidateIngestor(
	galaxies repositories.GalaxyRepository,
	subtractions repositories.SubtractionRepository,
	candidates repositories.CandidateRepository,
	logger *zap.Logger,
) *CandidateIngestor {
	return &CandidateIngestor{
		galaxies:     galaxies,
		subtractions: subtractions,
		candidates:   candidates,
		logger:       logger,
	}
}

// Run loads the candidate catalog at file into the database. isPos marks the
// polarity of the subtraction the catalog came from. A catalog whose
// polarity was already loaded for its subtraction is skipped whole.
func (c *CandidateIngestor) Run(ctx context.Context, file string, r io.Reader, isPos bool) (int, error) {
	loc, err := ParseCatalogPath(file)
	if err != nil {
		return 0, err
	}

	galaxy, err := c.galaxies.GetByName(ctx, loc.GalaxyName)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve galaxy %q: %w", loc.GalaxyName, err)
	}
	sub, err := c.subtractions.GetByLocation(ctx, loc.BaseDir, loc.SubFile, loc.Version)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve subtraction %s: %w", loc.SubFile, err)
	}

	exists, err := c.candidates.ExistsForSubtraction(ctx, sub.ID, isPos)
	if err != nil {
		return 0, err
	}
	if exists {
		c.logger.Info("candidate catalog already loaded, skipping",
			zap.String("filename", loc.Filename),
			zap.String("version", loc.Version))
		return 0, nil
	}

	candidates, err := ParseCandidates(r)
	if err != nil {
		return 0, err
	}
	for _, cand := range candidates {
		cand.SubID = sub.ID
		cand.GalaxyID = galaxy.ID
		cand.IsPos = isPos
	}
	if err := c.candidates.CreateBatch(ctx, candidates); err != nil {
		return 0, fmt.Errorf("failed to load candidate catalog %s: %w", loc.Filename, err)
	}

	c.logger.Info("loaded candidate catalog",
		zap.String("galaxy", loc.GalaxyName),
		zap.String("filename", loc.Filename),
		zap.String("version", loc.Version),
		zap.Int("candidates", len(candidates)))
	return len(candidates), nil
}
