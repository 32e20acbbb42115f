package blog

import (
	"embed"

	"github.com/goliatone/go-blog-auth"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsSource returns the blog content migrations. They reference
// the users table created by auth.GetMigrationsSource.
func GetMigrationsSource() auth.MigrationSource {
	return auth.MigrationSource{FS: migrationsFS, Root: "data/sql/migrations"}
}
