package astro

import (
	"fmt"
	"strings"
	"time"
)

// mjdEpoch is 1858-11-17T00:00:00 UTC, the zero point of the Modified
// Julian Date scale.
var mjdEpoch = time.Date(1858, time.November, 17, 0, 0, 0, 0, time.UTC)

// MJDFromTime converts a time to a Modified Julian Date.
func MJDFromTime(t time.Time) float64 {
	return t.UTC().Sub(mjdEpoch).Seconds() / 86400.0
}

// TimeFromMJD converts a Modified Julian Date to a UTC time.
func TimeFromMJD(mjd float64) time.Time {
	return mjdEpoch.Add(time.Duration(mjd * float64(24*time.Hour)))
}

// ParseObsDates parses an observation-date filter literal: an 8-digit
// YYYYMMDD selecting one UTC day, or YYYYMMDD-YYYYMMDD selecting
// [start, end) with the end day excluded. It returns the half-open MJD
// interval [mjdMin, mjdMax).
func ParseObsDates(literal string) (mjdMin, mjdMax float64, err error) {
	literal = strings.TrimSpace(literal)
	switch len(literal) {
	case 8:
		start, err := parseYYYYMMDD(literal)
		if err != nil {
			return 0, 0, err
		}
		mjdMin = MJDFromTime(start)
		return mjdMin, mjdMin + 1.0, nil
	case 17:
		if literal[8] != '-' {
			return 0, 0, fmt.Errorf("malformed date range %q", literal)
		}
		start, err := parseYYYYMMDD(literal[:8])
		if err != nil {
			return 0, 0, err
		}
		end, err := parseYYYYMMDD(literal[9:])
		if err != nil {
			return 0, 0, err
		}
		return MJDFromTime(start), MJDFromTime(end), nil
	default:
		return 0, 0, fmt.Errorf("malformed date literal %q", literal)
	}
}

func parseYYYYMMDD(s string) (time.Time, error) {
	t, err := time.ParseInLocation("20060102", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
