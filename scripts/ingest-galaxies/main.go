// ingest-galaxies populates the galaxies table from a fixed-width galaxy
// catalog file.
//
// Usage: go run ./scripts/ingest-galaxies <table-file>
//
// Database connection: Uses standard PG* environment variables via
// config.yaml overrides.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/disparu-project/disparu-engine/pkg/config"
	"github.com/disparu-project/disparu-engine/pkg/database"
	"github.com/disparu-project/disparu-engine/pkg/ingest"
	"github.com/disparu-project/disparu-engine/pkg/logging"
	"github.com/disparu-project/disparu-engine/pkg/repositories"
)

func main() {
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s <table-file>\n", os.Args[0])
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

	file, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open table file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	ingestor := ingest.NewGalaxyIngestor(repositories.NewGalaxyRepository(db), logger)
	inserted, err := ingestor.Run(ctx, file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Inserted %d galaxies\n", inserted)
}
