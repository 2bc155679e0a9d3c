// Package resolver resolves astronomical object names to sky positions via
// the CDS Sesame service, with an optional Redis cache in front.
package resolver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/disparu-project/disparu-engine/pkg/apperrors"
	"github.com/disparu-project/disparu-engine/pkg/astro"
	"github.com/disparu-project/disparu-engine/pkg/retry"
)

// Resolver resolves an object name to a sky position. A failed resolution is
// an error for the caller to treat as "no resolution"; it must never be
// fatal for the surrounding query.
type Resolver interface {
	Resolve(ctx context.Context, name string) (astro.Position, error)
}

// DefaultSesameURL is the CDS Sesame plain-text endpoint, querying Simbad,
// NED and VizieR in order.
const DefaultSesameURL = "https://cds.unistra.fr/cgi-bin/nph-sesame/-op/SNV"

// Sesame resolves names against the CDS Sesame service.
type Sesame struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewSesame creates a Sesame resolver. Every request is bounded by the given
// timeout; an empty baseURL selects DefaultSesameURL.
func NewSesame(baseURL string, timeout time.Duration, logger *zap.Logger) *Sesame {
	if baseURL == "" {
		baseURL = DefaultSesameURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sesame{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

var _ Resolver = (*Sesame)(nil)

// Resolve queries Sesame for the given name. Names are upper-cased and
// trimmed first, matching how the catalog's object names are written.
func (s *Sesame) Resolve(ctx context.Context, name string) (astro.Position, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return astro.Position{}, fmt.Errorf("%w: empty object name", apperrors.ErrNoResolution)
	}

	reqURL := s.baseURL + "?" + url.QueryEscape(name)

	var pos astro.Position
	err := retry.Do(ctx, nil, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("failed to build sesame request: %w", err)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("sesame request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("sesame returned status %d", resp.StatusCode)
		}

		pos, err = parseSesame(resp.Body)
		return err
	})
	if err != nil {
		s.logger.Debug("Sesame resolution failed",
			zap.String("name", name),
			zap.Error(err))
		return astro.Position{}, err
	}
	return pos, nil
}

// parseSesame extracts the first J2000 position line (%J ra dec ...) from a
// Sesame plain-text response.
func parseSesame(r io.Reader) (astro.Position, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "%J ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		ra, errRA := strconv.ParseFloat(fields[1], 64)
		dec, errDec := strconv.ParseFloat(fields[2], 64)
		if errRA != nil || errDec != nil {
			continue
		}
		return astro.Position{RA: ra, Dec: dec}, nil
	}
	if err := scanner.Err(); err != nil {
		return astro.Position{}, fmt.Errorf("failed to read sesame response: %w", err)
	}
	return astro.Position{}, apperrors.ErrNoResolution
}
