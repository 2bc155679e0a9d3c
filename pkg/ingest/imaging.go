package ingest

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/disparu-project/disparu-engine/pkg/apperrors"
	"github.com/disparu-project/disparu-engine/pkg/models"
	"github.com/disparu-project/disparu-engine/pkg/repositories"
)

// ImageLocation identifies where a FITS image sits in the survey data tree,
// laid out as .../{galaxy}/{instrument}/{version}/{name}.fits.
type ImageLocation struct {
	BaseDir    string
	Filename   string
	GalaxyName string
	Inst       string
	Version    string
}

// ParseImagePath derives an image's location from its file path.
func ParseImagePath(file string) (ImageLocation, error) {
	baseDir := path.Dir(file)
	filename := path.Base(file)
	if !strings.HasSuffix(filename, ".fits") {
		return ImageLocation{}, fmt.Errorf("not a FITS image: %s", filename)
	}

	parts := strings.Split(baseDir, "/")
	if len(parts) < 3 {
		return ImageLocation{}, fmt.Errorf("image path too shallow: %s", file)
	}
	return ImageLocation{
		BaseDir:    baseDir,
		Filename:   filename,
		GalaxyName: parts[len(parts)-3],
		Inst:       parts[len(parts)-2],
		Version:    parts[len(parts)-1],
	}, nil
}

// EpochMeta carries the header metadata of one imaging epoch. Nil fields
// were absent from the header and stay NULL.
type EpochMeta struct {
	MJDStart *float64
	MJDEnd   *float64
	ExpTime  *float64
	Tel      *string
	Filter   *string
}

// ImagingIngestor registers reference images, science observations and the
// subtraction built from them. Registration is idempotent: images already
// known by location are reused, and a subtraction that already exists is
// returned untouched.
type ImagingIngestor struct {
	galaxies     repositories.GalaxyRepository
	refs         repositories.RefRepository
	observations repositories.ObservationRepository
	subtractions repositories.SubtractionRepository
	logger       *zap.Logger
}

// NewImagingIngestor creates a new ImagingIngestor.
func NewImagingIngestor(
	galaxies repositories.GalaxyRepository,
	refs repositories.RefRepository,
	observations repositories.ObservationRepository,
	subtractions repositories.SubtractionRepository,
	logger *zap.Logger,
) *ImagingIngestor {
	return &ImagingIngestor{
		galaxies:     galaxies,
		refs:         refs,
		observations: observations,
		subtractions: subtractions,
		logger:       logger,
	}
}

// Register records the subtraction at subFile, built from refFile and
// obsFile, under its galaxy. The epoch metadata is attached to the
// subtraction row; the instrument comes from the data tree layout.
func (i *ImagingIngestor) Register(ctx context.Context, refFile, obsFile, subFile string, meta EpochMeta) (*models.Subtraction, error) {
	loc, err := ParseImagePath(subFile)
	if err != nil {
		return nil, err
	}

	galaxy, err := i.galaxies.GetByName(ctx, loc.GalaxyName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve galaxy %q: %w", loc.GalaxyName, err)
	}

	existing, err := i.subtractions.GetByLocation(ctx, loc.BaseDir, loc.Filename, loc.Version)
	if err == nil {
		i.logger.Info("subtraction already registered, skipping",
			zap.String("filename", loc.Filename),
			zap.String("version", loc.Version))
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	ref, err := i.ensureRef(ctx, galaxy.ID, refFile, meta)
	if err != nil {
		return nil, err
	}
	obs, err := i.ensureObservation(ctx, galaxy.ID, obsFile, meta)
	if err != nil {
		return nil, err
	}

	sub := &models.Subtraction{
		GalaxyID: galaxy.ID,
		ObsID:    obs.ID,
		RefID:    ref.ID,
		MJDStart: meta.MJDStart,
		MJDEnd:   meta.MJDEnd,
		ExpTime:  meta.ExpTime,
		Tel:      meta.Tel,
		Inst:     &loc.Inst,
		Filter:   meta.Filter,
		BaseDir:  loc.BaseDir,
		Filename: loc.Filename,
		Version:  loc.Version,
	}
	if err := i.subtractions.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to register subtraction %s: %w", loc.Filename, err)
	}

	i.logger.Info("registered subtraction",
		zap.String("galaxy", loc.GalaxyName),
		zap.String("filename", loc.Filename),
		zap.String("version", loc.Version))
	return sub, nil
}

func (i *ImagingIngestor) ensureRef(ctx context.Context, galaxyID int64, file string, meta EpochMeta) (*models.Ref, error) {
	loc, err := ParseImagePath(file)
	if err != nil {
		return nil, err
	}
	ref, err := i.refs.GetByLocation(ctx, loc.BaseDir, loc.Filename, loc.Version)
	if err == nil {
		return ref, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	ref = &models.Ref{
		GalaxyID: galaxyID,
		ExpTime:  meta.ExpTime,
		Tel:      meta.Tel,
		Inst:     &loc.Inst,
		Filter:   meta.Filter,
		BaseDir:  loc.BaseDir,
		Filename: loc.Filename,
		Version:  loc.Version,
	}
	if err := i.refs.Create(ctx, ref); err != nil {
		return nil, fmt.Errorf("failed to register ref %s: %w", loc.Filename, err)
	}
	return ref, nil
}

func (i *ImagingIngestor) ensureObservation(ctx context.Context, galaxyID int64, file string, meta EpochMeta) (*models.Observation, error) {
	loc, err := ParseImagePath(file)
	if err != nil {
		return nil, err
	}
	obs, err := i.observations.GetByLocation(ctx, loc.BaseDir, loc.Filename, loc.Version)
	if err == nil {
		return obs, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	obs = &models.Observation{
		GalaxyID: galaxyID,
		MJDStart: meta.MJDStart,
		MJDEnd:   meta.MJDEnd,
		ExpTime:  meta.ExpTime,
		Tel:      meta.Tel,
		Inst:     &loc.Inst,
		Filter:   meta.Filter,
		BaseDir:  loc.BaseDir,
		Filename: loc.Filename,
		Version:  loc.Version,
	}
	if err := i.observations.Create(ctx, obs); err != nil {
		return nil, fmt.Errorf("failed to register observation %s: %w", loc.Filename, err)
	}
	return obs, nil
}
