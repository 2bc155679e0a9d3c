// ingest-imaging registers a reference image, a science observation and the
// subtraction built from them, so candidate catalogs for that subtraction
// can be loaded afterwards.
//
// Usage: go run ./scripts/ingest-imaging -ref <ref.fits> -obs <obs.fits> <sub.fits>
//
// Database connection: Uses standard PG* environment variables via
// config.yaml overrides.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/disparu-project/disparu-engine/pkg/config"
	"github.com/disparu-project/disparu-engine/pkg/database"
	"github.com/disparu-project/disparu-engine/pkg/ingest"
	"github.com/disparu-project/disparu-engine/pkg/logging"
	"github.com/disparu-project/disparu-engine/pkg/repositories"
)

func main() {
	refFile := flag.String("ref", "", "reference image path")
	obsFile := flag.String("obs", "", "science observation path")
	mjdStart := flag.Float64("mjdstart", math.NaN(), "observation start MJD")
	mjdEnd := flag.Float64("mjdend", math.NaN(), "observation end MJD")
	expTime := flag.Float64("exptime", math.NaN(), "exposure time in seconds")
	tel := flag.String("tel", "", "telescope name")
	filter := flag.String("filter", "", "filter name")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 || *refFile == "" || *obsFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -ref <ref.fits> -obs <obs.fits> [options] <sub.fits>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load("dev")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %s\n", logging.SanitizeError(err))
		os.Exit(1)
	}
	defer db.Close()

	subFile, err := filepath.Abs(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad subtraction path: %v\n", err)
		os.Exit(1)
	}
	refAbs, err := filepath.Abs(*refFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad reference path: %v\n", err)
		os.Exit(1)
	}
	obsAbs, err := filepath.Abs(*obsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad observation path: %v\n", err)
		os.Exit(1)
	}

	ingestor := ingest.NewImagingIngestor(
		repositories.NewGalaxyRepository(db),
		repositories.NewRefRepository(db),
		repositories.NewObservationRepository(db),
		repositories.NewSubtractionRepository(db),
		logger,
	)

	meta := ingest.EpochMeta{
		MJDStart: optFloat(*mjdStart),
		MJDEnd:   optFloat(*mjdEnd),
		ExpTime:  optFloat(*expTime),
		Tel:      optString(*tel),
		Filter:   optString(*filter),
	}
	sub, err := ingestor.Register(ctx, refAbs, obsAbs, subFile, meta)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Registered subtraction %d (%s)\n", sub.ID, sub.Filename)
}

func optFloat(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
