package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"efi-app/internal/model"
)

var (
	ErrUnknownBackend = errors.New("unknown store backend")
	ErrInvalidInput   = errors.New("invalid input")
)

// Store reads and writes the pre-computed documents served by the API.
// Absence is reported through the bool result, never as an error.
type Store interface {
	GetLatest(ctx context.Context, competitionID int) (model.Latest, bool, error)
	GetTable(ctx context.Context, competitionID, season, matchweek int) (model.Table, bool, error)
	// ListScores returns matches of the round or displayed with it, ordered by
	// kickoff then id.
	ListScores(ctx context.Context, competitionID, season, matchweek int) ([]model.MatchEvent, error)

	PutLatest(ctx context.Context, latest model.Latest) error
	PutTable(ctx context.Context, table model.Table) error
	PutScores(ctx context.Context, matches []model.MatchEvent) error

	Close() error
}

const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

type Options struct {
	// Backend forces a backend; empty picks the first configured one in the
	// order mongo, postgres, sqlite, memory.
	Backend string

	MongoURI      string
	MongoDatabase string

	PostgresDSN           string
	PostgresMigrationsDir string

	SQLitePath          string
	SQLiteMigrationsDir string

	MaxOpenConns int
	MaxIdleConns int

	// Seed fills the memory backend with demo data.
	Seed bool
	Now  func() time.Time
}

// ResolveBackend names the backend Open would use for opts.
func ResolveBackend(opts Options) (string, error) {
	switch b := strings.ToLower(strings.TrimSpace(opts.Backend)); b {
	case BackendMongo, BackendPostgres, BackendSQLite, BackendMemory:
		return b, nil
	case "":
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	switch {
	case strings.TrimSpace(opts.MongoURI) != "":
		return BackendMongo, nil
	case strings.TrimSpace(opts.PostgresDSN) != "":
		return BackendPostgres, nil
	case strings.TrimSpace(opts.SQLitePath) != "":
		return BackendSQLite, nil
	}
	return BackendMemory, nil
}

// Open connects the backend selected by opts.
func Open(ctx context.Context, opts Options) (Store, string, error) {
	backend, err := ResolveBackend(opts)
	if err != nil {
		return nil, "", err
	}
	var s Store
	switch backend {
	case BackendMongo:
		s, err = NewMongoStore(ctx, opts.MongoURI, MongoOptions{Database: opts.MongoDatabase})
	case BackendPostgres:
		s, err = NewPostgresStore(ctx, opts.PostgresDSN, PostgresOptions{
			MigrationsDir: opts.PostgresMigrationsDir,
			MaxOpenConns:  opts.MaxOpenConns,
			MaxIdleConns:  opts.MaxIdleConns,
		})
	case BackendSQLite:
		s, err = NewSQLiteStore(ctx, opts.SQLitePath, SQLiteOptions{
			MigrationsDir: opts.SQLiteMigrationsDir,
		})
	default:
		mem := NewMemoryStore()
		if opts.Seed {
			now := time.Now
			if opts.Now != nil {
				now = opts.Now
			}
			if err := Seed(ctx, mem, now()); err != nil {
				return nil, "", fmt.Errorf("seed memory store: %w", err)
			}
		}
		s = mem
	}
	if err != nil {
		return nil, "", fmt.Errorf("open %s store: %w", backend, err)
	}
	return s, backend, nil
}

func validateScores(matches []model.MatchEvent) error {
	for _, m := range matches {
		if m.ID == 0 {
			return fmt.Errorf("%w: match without id", ErrInvalidInput)
		}
		if m.CompetitionID == 0 || m.Season == 0 {
			return fmt.Errorf("%w: match %d has no competition or season", ErrInvalidInput, m.ID)
		}
	}
	return nil
}
