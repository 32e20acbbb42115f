package blog

import (
	"time"

	"github.com/goliatone/go-blog-auth"
	"github.com/uptrace/bun"
)

type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	Title         string     `bun:"title,notnull" json:"title"`
	Content       string     `bun:"content,notnull" json:"content"`
	AuthorID      int64      `bun:"author_id,notnull" json:"author_id"`
	Author        *auth.User `bun:"rel:belongs-to,join:author_id=id" json:"-"`
	CreatedAt     time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at,notnull" json:"updated_at"`
}

// OwnerID returns the author of the post
func (p *Post) OwnerID() int64 {
	if p == nil {
		return 0
	}
	return p.AuthorID
}

type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:c"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	PostID        int64      `bun:"post_id,notnull" json:"post_id"`
	AuthorID      int64      `bun:"author_id,notnull" json:"author_id"`
	Author        *auth.User `bun:"rel:belongs-to,join:author_id=id" json:"-"`
	Content       string     `bun:"content,notnull" json:"content"`
	CreatedAt     time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at,notnull" json:"updated_at"`
}

func (c *Comment) OwnerID() int64 {
	if c == nil {
		return 0
	}
	return c.AuthorID
}

type Like struct {
	bun.BaseModel `bun:"table:likes,alias:l"`
	UserID        int64     `bun:"user_id,pk"`
	PostID        int64     `bun:"post_id,pk"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

type Favorite struct {
	bun.BaseModel `bun:"table:favorites,alias:f"`
	UserID        int64     `bun:"user_id,pk"`
	PostID        int64     `bun:"post_id,pk"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:t"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	Name          string `bun:"name,notnull,unique" json:"name"`
}

type PostTag struct {
	bun.BaseModel `bun:"table:post_tags,alias:pt"`
	PostID        int64 `bun:"post_id,pk"`
	TagID         int64 `bun:"tag_id,pk"`
}

var (
	_ auth.Owned = (*Post)(nil)
	_ auth.Owned = (*Comment)(nil)
)
