// Package models contains domain types for the disparu catalog.
package models

// Galaxy is one surveyed host galaxy. Rows are created by catalog ingestion
// and never mutated afterwards; every other entity references a galaxy by id.
type Galaxy struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	PGC      *string  `json:"pgc"`
	RA       float64  `json:"ra"`
	Dec      float64  `json:"dec"`
	Redshift *float64 `json:"redshift"`
	DM       *float64 `json:"dm"`
	DMErr    *float64 `json:"dm_err"`
	DMMethod *string  `json:"dm_method"`
	DMRef    *string  `json:"dm_ref"`
}
