// Command import validates a bundle of table, score and latest documents and
// upserts it into the configured store.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"time"

	"efi-app/internal/config"
	"efi-app/internal/importer"
	"efi-app/internal/logging"
	"efi-app/internal/model"
	"efi-app/internal/store"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

func main() {
	path := flag.String("file", "-", "bundle to import, - for stdin")
	dryRun := flag.Bool("dry-run", false, "validate without writing")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall import timeout")
	flag.Parse()

	config.LoadDotEnv()
	cfg := config.Load()
	logger := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	if err := run(logger, cfg, *path, *dryRun, *timeout); err != nil {
		level.Error(logger).Log("msg", "import failed", "err", err)
		os.Exit(1)
	}
}

func run(logger log.Logger, cfg *config.Config, path string, dryRun bool, timeout time.Duration) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	catalog, err := model.LoadCatalog(cfg.CompetitionsFile)
	if err != nil {
		return err
	}
	bundle, err := importer.Decode(r)
	if err != nil {
		return err
	}
	if err := importer.Validate(bundle, catalog); err != nil {
		return err
	}
	level.Info(logger).Log("msg", "bundle valid", "tables", len(bundle.Tables), "scores", len(bundle.Scores), "latest", len(bundle.Latest))
	if dryRun {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s, backend, err := store.Open(ctx, store.Options{
		Backend:               cfg.StoreBackend,
		MongoURI:              cfg.MongoURI,
		MongoDatabase:         cfg.MongoDatabase,
		PostgresDSN:           cfg.PostgresDSN,
		PostgresMigrationsDir: cfg.PostgresMigrationsDir,
		SQLitePath:            cfg.SQLitePath,
		SQLiteMigrationsDir:   cfg.SQLiteMigrationsDir,
		MaxOpenConns:          cfg.MaxOpenConns,
		MaxIdleConns:          cfg.MaxIdleConns,
	})
	if err != nil {
		return err
	}
	defer s.Close()
	if backend == store.BackendMemory {
		level.Warn(logger).Log("msg", "no database configured, import will not persist")
	}

	sum, err := importer.Apply(ctx, s, bundle)
	if err != nil {
		return err
	}
	level.Info(logger).Log("msg", "import complete", "backend", backend, "tables", sum.Tables, "scores", sum.Scores, "latest", sum.Latest)
	return nil
}
