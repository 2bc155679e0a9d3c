package models

import "time"

// Ref is a reference-epoch image for one galaxy.
type Ref struct {
	ID           int64     `json:"id"`
	GalaxyID     int64     `json:"galaxy_id"`
	CreationDate time.Time `json:"creation_date"`
	MJDStart     *float64  `json:"mjdstart"`
	MJDEnd       *float64  `json:"mjdend"`
	ExpTime      *float64  `json:"exptime"`
	Tel          *string   `json:"tel"`
	Inst         *string   `json:"inst"`
	Filter       *string   `json:"filter"`
	BaseDir      string    `json:"base_dir"`
	Filename     string    `json:"filename"`
	Version      string    `json:"version"`
}

// Observation is a science-epoch image for one galaxy.
type Observation struct {
	ID           int64     `json:"id"`
	GalaxyID     int64     `json:"galaxy_id"`
	CreationDate time.Time `json:"creation_date"`
	MJDStart     *float64  `json:"mjdstart"`
	MJDEnd       *float64  `json:"mjdend"`
	ExpTime      *float64  `json:"exptime"`
	Tel          *string   `json:"tel"`
	Inst         *string   `json:"inst"`
	Filter       *string   `json:"filter"`
	BaseDir      string    `json:"base_dir"`
	Filename     string    `json:"filename"`
	Version      string    `json:"version"`
}

// Subtraction is a difference image (observation minus reference, or the
// reverse) for one galaxy at one epoch/version. Created by ingestion and
// never mutated.
type Subtraction struct {
	ID           int64     `json:"id"`
	GalaxyID     int64     `json:"galaxy_id"`
	ObsID        int64     `json:"obs_id"`
	RefID        int64     `json:"ref_id"`
	CreationDate time.Time `json:"creation_date"`
	MJDStart     *float64  `json:"mjdstart"`
	MJDEnd       *float64  `json:"mjdend"`
	ExpTime      *float64  `json:"exptime"`
	Tel          *string   `json:"tel"`
	Inst         *string   `json:"inst"`
	Filter       *string   `json:"filter"`
	BaseDir      string    `json:"base_dir"`
	Filename     string    `json:"filename"`
	Version      string    `json:"version"`
}
