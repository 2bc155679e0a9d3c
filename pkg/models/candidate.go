package models

import "time"

// NoSciFlux is the sentinel written by the subtraction pipeline when a
// detection has no archival counterpart in the science image.
const NoSciFlux = -99.99

// Candidate is a single detection in a subtraction image. IsPos
// distinguishes disappearing detections (science minus reference) from
// appearing ones (reference minus science). Rows are written once per
// catalog ingestion and never mutated.
type Candidate struct {
	ID           int64     `json:"id"`
	SubID        int64     `json:"sub_id"`
	GalaxyID     int64     `json:"galaxy_id"`
	CreationDate time.Time `json:"creation_date"`
	XPos         float64   `json:"xpos"`
	YPos         float64   `json:"ypos"`
	RA           float64   `json:"ra"`
	Dec          float64   `json:"dec"`
	PhotFlags    int       `json:"photflags"`
	SNR          float64   `json:"snr"`
	FluxAper     float64   `json:"flux_aper"`
	FluxErrAper  float64   `json:"fluxerr_aper"`
	MagAper      float64   `json:"mag_aper"`
	MagErrAper   float64   `json:"magerr_aper"`
	Elongation   float64   `json:"elongation"`
	FWHMImage    float64   `json:"fwhm_image"`
	ClassStar    float64   `json:"class_star"`
	ScorrPeak    float64   `json:"scorr_peak"`
	SciFlux      float64   `json:"sciflux"`
	Diff2SciFlux float64   `json:"diff2sciflux"`
	IsPos        bool      `json:"ispos"`
}

// SourceType classifies the candidate's photometric time-behavior from its
// flux-ratio measurements and polarity flag. The procedure is total over all
// finite inputs and never yields TypeJunk; that label is reserved for manual
// curation.
func (c *Candidate) SourceType() SourceType {
	if c.IsPos {
		// Disappearing detection: faded by at least half relative to the
		// archival counterpart means a vanished star.
		if c.Diff2SciFlux >= 0.5 {
			return TypeDispStar
		}
		return TypeVarStar
	}
	// Appearing detection: no archival counterpart, or at least doubled
	// in flux, means a genuine transient.
	if c.SciFlux == NoSciFlux || c.Diff2SciFlux >= 1.0 {
		return TypeTransient
	}
	return TypeVarStar
}
