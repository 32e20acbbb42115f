package auth

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"path"
	"sync"

	"github.com/goliatone/go-errors"
	"github.com/pressly/goose/v3"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// MigrationSource is a tree of goose migrations with one directory per dialect
type MigrationSource struct {
	FS   fs.FS
	Root string
}

// goose keeps its base FS and dialect in package state
var gooseMu sync.Mutex

// GetMigrationsSource returns the users and refresh token migrations
func GetMigrationsSource() MigrationSource {
	return MigrationSource{FS: migrationsFS, Root: "data/sql/migrations"}
}

// RunMigrations applies every source in order against db.
// Versions across sources must not collide.
func RunMigrations(ctx context.Context, db *sql.DB, dialect string, sources ...MigrationSource) error {
	gooseDialect, err := gooseDialectFor(dialect)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()
	defer goose.SetBaseFS(nil)

	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(gooseDialect); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to set migration dialect")
	}

	for _, src := range sources {
		goose.SetBaseFS(src.FS)
		dir := path.Join(src.Root, dialect)
		if err := goose.UpContext(ctx, db, dir, goose.WithAllowMissing()); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to run migrations").
				WithMetadata(map[string]any{"dir": dir, "dialect": dialect})
		}
	}

	return nil
}

func gooseDialectFor(dialect string) (string, error) {
	switch dialect {
	case DialectSQLite:
		return "sqlite3", nil
	case DialectPostgres:
		return "postgres", nil
	default:
		return "", errors.New("unsupported database dialect", errors.CategoryBadInput).
			WithMetadata(map[string]any{"dialect": dialect})
	}
}
