package models

import (
	"fmt"
	"time"
)

// SourceType is the fixed enumeration of catalog source types.
type SourceType string

const (
	TypeVarStar   SourceType = "VarStar"
	TypeTransient SourceType = "Transient"
	TypeDispStar  SourceType = "DispStar"
	TypeJunk      SourceType = "Junk"
)

// SourceTypes lists all valid source type labels.
var SourceTypes = []SourceType{TypeVarStar, TypeTransient, TypeDispStar, TypeJunk}

// ParseSourceType validates a source type label.
func ParseSourceType(s string) (SourceType, bool) {
	for _, t := range SourceTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Source is a promoted, permanently named catalog entry. Exactly one row is
// written per promotion event; at most one source references any given
// candidate as its origin.
type Source struct {
	ID             int64      `json:"id"`
	SubID          *int64     `json:"sub_id"`
	CandID         *int64     `json:"cand_id"`
	GalaxyID       int64      `json:"galaxy_id"`
	CreationDate   time.Time  `json:"creation_date"`
	Name           string     `json:"name"`
	RA             float64    `json:"ra"`
	Dec            float64    `json:"dec"`
	Type           SourceType `json:"type"`
	Classification *string    `json:"classification"`
	Redshift       *float64   `json:"redshift"`
}

// NextSourceName derives the designation for the next source promoted within
// a galaxy's namespace. The sequence number is the count of currently
// existing sources plus one; numbers are not reserved, so callers must hold
// the uniqueness constraint on (galaxy_id, name) as the backstop against
// concurrent promotions.
func NextSourceName(galaxyName string, existingCount int) string {
	return fmt.Sprintf("%s_DS%d", galaxyName, existingCount+1)
}
