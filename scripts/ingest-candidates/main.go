// ingest-candidates loads a difference-imaging candidate catalog into the
// database. The catalog's galaxy and subtraction are derived from its path,
// which must follow the survey layout .../{galaxy}/{instrument}/{version}/.
//
// Usage: go run ./scripts/ingest-candidates [-neg] <catalog-file>
//
// Flags:
//
//	-neg  The catalog comes from a negative (ref - sci) subtraction
package main

import (
	"context"
	"flag"
	"fmt"
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
	neg := flag.Bool("neg", false, "The catalog comes from a negative (ref - sci) subtraction")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-neg] <catalog-file>\n", os.Args[0])
		os.Exit(1)
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid catalog path: %v\n", err)
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

	file, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open catalog file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	ingestor := ingest.NewCandidateIngestor(
		repositories.NewGalaxyRepository(db),
		repositories.NewSubtractionRepository(db),
		repositories.NewCandidateRepository(db),
		logger)
	loaded, err := ingestor.Run(ctx, path, file, !*neg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d candidates\n", loaded)
}
