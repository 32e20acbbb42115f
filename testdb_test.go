package auth_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/goliatone/go-blog-auth"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	_, err = sqldb.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	require.NoError(t, auth.RunMigrations(context.Background(), sqldb, auth.DialectSQLite, auth.GetMigrationsSource()))

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func insertUser(t *testing.T, db *bun.DB, username string) *auth.User {
	t.Helper()

	user, err := auth.NewUsersRepository(db).Create(context.Background(), &auth.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	})
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	return user
}
