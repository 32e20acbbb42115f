package blog_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/goliatone/go-blog-auth"
	"github.com/goliatone/go-blog-auth/blog"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type fixture struct {
	db      *bun.DB
	users   auth.Users
	service *blog.Service
	alice   *auth.Identity
	bob     *auth.Identity
	admin   *auth.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	_, err = sqldb.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	require.NoError(t, auth.RunMigrations(context.Background(), sqldb, auth.DialectSQLite,
		auth.GetMigrationsSource(),
		blog.GetMigrationsSource(),
	))

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	users := auth.NewUsersRepository(db)
	f := &fixture{
		db:      db,
		users:   users,
		service: blog.NewService(blog.NewStore(db), users),
	}
	f.alice = f.createUser(t, "alice")
	f.bob = f.createUser(t, "bob")
	f.admin = f.createUser(t, "root", auth.RoleAdmin)
	return f
}

func (f *fixture) createUser(t *testing.T, username string, roles ...string) *auth.Identity {
	t.Helper()

	user, err := f.users.Create(context.Background(), &auth.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Roles:        roles,
	})
	require.NoError(t, err)
	return user.Identity()
}

func as(identity *auth.Identity) context.Context {
	return auth.WithIdentity(context.Background(), identity)
}

func (f *fixture) createPost(t *testing.T, identity *auth.Identity, title string) *blog.PostResponse {
	t.Helper()

	post, err := f.service.CreatePost(as(identity), blog.PostRequest{
		Title:   title,
		Content: "content of " + title,
	})
	require.NoError(t, err)
	return post
}
