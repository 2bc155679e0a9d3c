// Package query translates named catalog filter parameters into SQL
// predicates, orderings and in-process spatial refinements. Every collection
// exposes an explicit table of recognized options; anything outside the
// table is ignored, and a recognized option whose value fails to parse is
// skipped rather than failing the query. That fail-open behavior is kept
// deliberately for compatibility with the survey's existing tooling.
package query

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/disparu-project/disparu-engine/pkg/astro"
	"github.com/disparu-project/disparu-engine/pkg/resolver"
)

// SortOrders are the accepted sort_order literals. The first two are
// prefixes of the latter two, so prefix matching covers all four.
var SortOrders = []string{"asc", "desc", "ascending", "descending"}

// option maps one filter parameter to a column comparison.
type option struct {
	param string
	expr  string // SQL fragment with ? placeholders
	parse func(string) ([]any, error)
}

// Spec is the enumerated filter configuration for one collection.
type Spec struct {
	options []option
	// sortFields is the allow-list of sort_value literals, each mapping
	// to the column to order by.
	sortFields map[string]string
	// spatial enables cone/astrocone/ellipse filters against the
	// collection's ra/dec columns.
	spatial bool
	// dateColumn, when set, enables the sub_obs_dates filter against an
	// MJD start column.
	dateColumn string
}

// cond is one rendered predicate.
type cond struct {
	expr string
	args []any
}

// Filters is the outcome of building a filter set: SQL predicates plus any
// spatial regions that must be refined in-process after the bounding-box
// prefilter.
type Filters struct {
	conds   []cond
	regions []astro.Region

	sortColumn string
	sortDesc   bool
	hasSort    bool
}

// Build translates the given parameter values against the spec. Unrecognized
// parameters and unparsable values are skipped. The resolver is only
// consulted for astrocone filters; a nil resolver or a failed resolution
// skips that filter silently.
func (s *Spec) Build(ctx context.Context, values map[string]string, res resolver.Resolver) *Filters {
	f := &Filters{}

	for _, opt := range s.options {
		raw, ok := values[opt.param]
		if !ok || raw == "" {
			continue
		}
		args, err := opt.parse(raw)
		if err != nil {
			continue
		}
		f.conds = append(f.conds, cond{expr: opt.expr, args: args})
	}

	if s.spatial {
		f.applySpatial(ctx, values, res)
	}

	if s.dateColumn != "" {
		if raw := values["sub_obs_dates"]; raw != "" {
			if mjdMin, mjdMax, err := astro.ParseObsDates(raw); err == nil {
				f.conds = append(f.conds, cond{
					expr: fmt.Sprintf("%s >= ? AND %s < ?", s.dateColumn, s.dateColumn),
					args: []any{mjdMin, mjdMax},
				})
			}
		}
	}

	s.applySort(f, values)
	return f
}

// applySpatial handles the cone, astrocone and ellipse parameters. Each
// region contributes a bounding-box SQL predicate and is kept for exact
// in-process refinement.
func (f *Filters) applySpatial(ctx context.Context, values map[string]string, res resolver.Resolver) {
	if raw := values["cone"]; raw != "" {
		if region, err := parseCone(raw); err == nil {
			f.addRegion(region)
		}
	}
	if raw := values["astrocone"]; raw != "" {
		if region, err := parseAstrocone(ctx, raw, res); err == nil {
			f.addRegion(region)
		}
	}
	if raw := values["ellipse"]; raw != "" {
		if region, err := parseEllipse(raw); err == nil {
			f.addRegion(region)
		}
	}
}

func (f *Filters) addRegion(region astro.Region) {
	raMin, raMax, decMin, decMax, wraps := region.BoundingBox()
	if wraps {
		f.conds = append(f.conds, cond{
			expr: "(ra >= ? OR ra <= ?) AND dec >= ? AND dec <= ?",
			args: []any{raMin, raMax, decMin, decMax},
		})
	} else {
		f.conds = append(f.conds, cond{
			expr: "ra >= ? AND ra <= ? AND dec >= ? AND dec <= ?",
			args: []any{raMin, raMax, decMin, decMax},
		})
	}
	f.regions = append(f.regions, region)
}

// applySort resolves sort_value/sort_order against the allow-list. A missing
// sort_value defaults to id; an unrecognized sort_value or sort_order leaves
// the collection's base ordering untouched.
func (s *Spec) applySort(f *Filters, values map[string]string) {
	sortValue := strings.ToLower(values["sort_value"])
	if sortValue == "" {
		sortValue = "id"
	}
	sortOrder := strings.ToLower(values["sort_order"])
	if sortOrder == "" {
		sortOrder = "asc"
	}

	column, ok := s.sortFields[sortValue]
	if !ok {
		return
	}
	switch {
	case strings.HasPrefix(sortOrder, "asc"):
		f.sortColumn, f.sortDesc, f.hasSort = column, false, true
	case strings.HasPrefix(sortOrder, "desc"):
		f.sortColumn, f.sortDesc, f.hasSort = column, true, true
	}
}

// Where renders the combined predicate with positional placeholders starting
// at $start. It returns an empty clause when no filters applied.
func (f *Filters) Where(start int) (string, []any) {
	if len(f.conds) == 0 {
		return "", nil
	}
	var sb strings.Builder
	var args []any
	n := start
	for i, c := range f.conds {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString("(")
		for _, ch := range c.expr {
			if ch == '?' {
				fmt.Fprintf(&sb, "$%d", n)
				n++
			} else {
				sb.WriteRune(ch)
			}
		}
		sb.WriteString(")")
		args = append(args, c.args...)
	}
	return sb.String(), args
}

// OrderBy returns the ORDER BY expression, or defaultExpr when no valid sort
// was requested.
func (f *Filters) OrderBy(defaultExpr string) string {
	if !f.hasSort {
		return defaultExpr
	}
	if f.sortDesc {
		return f.sortColumn + " DESC"
	}
	return f.sortColumn + " ASC"
}

// Regions returns the spatial regions that must be refined in-process.
func (f *Filters) Regions() []astro.Region {
	return f.regions
}

// NeedsRefinement reports whether rows surviving the SQL predicate must
// still be checked against spatial regions.
func (f *Filters) NeedsRefinement() bool {
	return len(f.regions) > 0
}

// Matches applies the in-process spatial refinement to one row position.
func (f *Filters) Matches(p astro.Position) bool {
	for _, region := range f.regions {
		if !region.Contains(p) {
			return false
		}
	}
	return true
}

// ============================================================================
// Literal parsers
// ============================================================================

func parseCone(raw string) (astro.Region, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("cone literal needs ra,dec,radius")
	}
	ra, err1 := parseFloatField(parts[0])
	dec, err2 := parseFloatField(parts[1])
	radius, err3 := parseFloatField(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, fmt.Errorf("malformed cone literal %q", raw)
	}
	return astro.Cone{Center: astro.Position{RA: ra, Dec: dec}, RadiusArcsec: radius}, nil
}

func parseAstrocone(ctx context.Context, raw string, res resolver.Resolver) (astro.Region, error) {
	if res == nil {
		return nil, fmt.Errorf("no resolver configured")
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("astrocone literal needs name,radius")
	}
	radius, err := parseFloatField(parts[1])
	if err != nil {
		return nil, fmt.Errorf("malformed astrocone literal %q", raw)
	}
	center, err := res.Resolve(ctx, parts[0])
	if err != nil {
		return nil, err
	}
	return astro.Cone{Center: center, RadiusArcsec: radius}, nil
}

func parseEllipse(raw string) (astro.Region, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 5 {
		return nil, fmt.Errorf("ellipse literal needs ra,dec,major,ratio,pa")
	}
	vals := make([]float64, 5)
	for i, p := range parts {
		v, err := parseFloatField(p)
		if err != nil {
			return nil, fmt.Errorf("malformed ellipse literal %q", raw)
		}
		vals[i] = v
	}
	return astro.Ellipse{
		Center:        astro.Position{RA: vals[0], Dec: vals[1]},
		MajorDeg:      vals[2],
		AxisRatio:     vals[3],
		PositionAngle: vals[4],
	}, nil
}

func parseFloatField(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// ============================================================================
// Option constructors
// ============================================================================

func floatRange(column string) []option {
	return []option{
		{param: column + "__gte", expr: column + " >= ?", parse: oneFloat},
		{param: column + "__lte", expr: column + " <= ?", parse: oneFloat},
	}
}

func intRange(column string) []option {
	return []option{
		{param: column + "__gte", expr: column + " >= ?", parse: oneInt},
		{param: column + "__lte", expr: column + " <= ?", parse: oneInt},
	}
}

func exactInt(param, column string) option {
	return option{param: param, expr: column + " = ?", parse: oneInt}
}

func exactFloat(param, column string) option {
	return option{param: param, expr: column + " = ?", parse: oneFloat}
}

func exactString(param, column string) option {
	return option{param: param, expr: column + " = ?", parse: oneString}
}

func exactBool(param, column string) option {
	return option{param: param, expr: column + " = ?", parse: oneBool}
}

func oneFloat(raw string) ([]any, error) {
	v, err := parseFloatField(raw)
	if err != nil {
		return nil, err
	}
	return []any{v}, nil
}

func oneInt(raw string) ([]any, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil, err
	}
	return []any{v}, nil
}

func oneString(raw string) ([]any, error) {
	return []any{raw}, nil
}

// oneBool accepts the True/False literals the survey tooling sends as well
// as ordinary Go booleans.
func oneBool(raw string) ([]any, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		return []any{true}, nil
	case "false":
		return []any{false}, nil
	default:
		return nil, fmt.Errorf("invalid boolean %q", raw)
	}
}
