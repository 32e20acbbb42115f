package blog

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-blog-auth"
	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Store runs the blog queries
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreatePost(ctx context.Context, post *Post) error {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	if _, err := s.db.NewInsert().Model(post).Exec(ctx); err != nil {
		return storeError(err, "failed to create post")
	}
	return nil
}

func (s *Store) GetPost(ctx context.Context, id int64) (*Post, error) {
	post := &Post{}
	err := s.db.NewSelect().
		Model(post).
		Relation("Author").
		Where("p.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("post", id)
		}
		return nil, storeError(err, "failed to load post")
	}
	return post, nil
}

func (s *Store) ensurePost(ctx context.Context, id int64) error {
	exists, err := s.db.NewSelect().Model((*Post)(nil)).Where("id = ?", id).Exists(ctx)
	if err != nil {
		return storeError(err, "failed to check post")
	}
	if !exists {
		return notFound("post", id)
	}
	return nil
}

// ListPosts returns posts newest first. The filter may narrow the query.
func (s *Store) ListPosts(ctx context.Context, filter func(*bun.SelectQuery) *bun.SelectQuery) ([]*Post, error) {
	posts := make([]*Post, 0)
	q := s.db.NewSelect().
		Model(&posts).
		Relation("Author").
		Order("p.id DESC")
	if filter != nil {
		q = filter(q)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, storeError(err, "failed to list posts")
	}
	return posts, nil
}

func (s *Store) PostsByAuthor(ctx context.Context, authorID int64) ([]*Post, error) {
	return s.ListPosts(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("p.author_id = ?", authorID)
	})
}

func (s *Store) PostsByTag(ctx context.Context, tagID int64) ([]*Post, error) {
	return s.ListPosts(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("p.id IN (SELECT post_id FROM post_tags WHERE tag_id = ?)", tagID)
	})
}

func (s *Store) FavoritePosts(ctx context.Context, userID int64) ([]*Post, error) {
	return s.ListPosts(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("p.id IN (SELECT post_id FROM favorites WHERE user_id = ?)", userID)
	})
}

func (s *Store) UpdatePost(ctx context.Context, post *Post) error {
	post.UpdatedAt = time.Now().UTC()
	_, err := s.db.NewUpdate().
		Model(post).
		Column("title", "content", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return storeError(err, "failed to update post")
	}
	return nil
}

// DeletePost removes the post and every record that references it
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []any{(*Comment)(nil), (*Like)(nil), (*Favorite)(nil), (*PostTag)(nil)} {
			if _, err := tx.NewDelete().Model(model).Where("post_id = ?", id).Exec(ctx); err != nil {
				return err
			}
		}
		_, err := tx.NewDelete().Model((*Post)(nil)).Where("id = ?", id).Exec(ctx)
		return err
	})
	if err != nil {
		return storeError(err, "failed to delete post")
	}
	return nil
}

func (s *Store) CreateComment(ctx context.Context, comment *Comment) error {
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	if _, err := s.db.NewInsert().Model(comment).Exec(ctx); err != nil {
		return storeError(err, "failed to create comment")
	}
	return nil
}

// GetComment loads a comment only when it belongs to postID
func (s *Store) GetComment(ctx context.Context, postID, id int64) (*Comment, error) {
	comment := &Comment{}
	err := s.db.NewSelect().
		Model(comment).
		Relation("Author").
		Where("c.id = ?", id).
		Where("c.post_id = ?", postID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("comment", id)
		}
		return nil, storeError(err, "failed to load comment")
	}
	return comment, nil
}

// CommentsFor returns the comments of every post keyed by post id, oldest first
func (s *Store) CommentsFor(ctx context.Context, postIDs ...int64) (map[int64][]*Comment, error) {
	out := map[int64][]*Comment{}
	if len(postIDs) == 0 {
		return out, nil
	}

	comments := make([]*Comment, 0)
	err := s.db.NewSelect().
		Model(&comments).
		Relation("Author").
		Where("c.post_id IN (?)", bun.In(postIDs)).
		Order("c.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list comments")
	}

	for _, c := range comments {
		out[c.PostID] = append(out[c.PostID], c)
	}
	return out, nil
}

func (s *Store) UpdateComment(ctx context.Context, comment *Comment) error {
	comment.UpdatedAt = time.Now().UTC()
	_, err := s.db.NewUpdate().
		Model(comment).
		Column("content", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return storeError(err, "failed to update comment")
	}
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	if _, err := s.db.NewDelete().Model((*Comment)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
		return storeError(err, "failed to delete comment")
	}
	return nil
}

// AddLike is a no-op when the like exists
func (s *Store) AddLike(ctx context.Context, userID, postID int64) error {
	_, err := s.db.NewInsert().
		Model(&Like{UserID: userID, PostID: postID, CreatedAt: time.Now().UTC()}).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return storeError(err, "failed to like post")
	}
	return nil
}

func (s *Store) RemoveLike(ctx context.Context, userID, postID int64) error {
	_, err := s.db.NewDelete().
		Model((*Like)(nil)).
		Where("user_id = ?", userID).
		Where("post_id = ?", postID).
		Exec(ctx)
	if err != nil {
		return storeError(err, "failed to unlike post")
	}
	return nil
}

type postCount struct {
	PostID int64 `bun:"post_id"`
	Count  int64 `bun:"count"`
}

// LikeCounts returns the number of likes per post id
func (s *Store) LikeCounts(ctx context.Context, postIDs ...int64) (map[int64]int64, error) {
	out := map[int64]int64{}
	if len(postIDs) == 0 {
		return out, nil
	}

	var rows []postCount
	err := s.db.NewSelect().
		Model((*Like)(nil)).
		Column("post_id").
		ColumnExpr("COUNT(*) AS count").
		Where("post_id IN (?)", bun.In(postIDs)).
		Group("post_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, storeError(err, "failed to count likes")
	}

	for _, row := range rows {
		out[row.PostID] = row.Count
	}
	return out, nil
}

// AddFavorite is a no-op when the favorite exists
func (s *Store) AddFavorite(ctx context.Context, userID, postID int64) error {
	_, err := s.db.NewInsert().
		Model(&Favorite{UserID: userID, PostID: postID, CreatedAt: time.Now().UTC()}).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return storeError(err, "failed to add favorite")
	}
	return nil
}

func (s *Store) RemoveFavorite(ctx context.Context, userID, postID int64) error {
	_, err := s.db.NewDelete().
		Model((*Favorite)(nil)).
		Where("user_id = ?", userID).
		Where("post_id = ?", postID).
		Exec(ctx)
	if err != nil {
		return storeError(err, "failed to remove favorite")
	}
	return nil
}

func (s *Store) CreateTag(ctx context.Context, tag *Tag) error {
	if _, err := s.db.NewInsert().Model(tag).Exec(ctx); err != nil {
		if auth.IsUniqueViolation(err) {
			return ErrTagNameTaken
		}
		return storeError(err, "failed to create tag")
	}
	return nil
}

func (s *Store) GetTag(ctx context.Context, id int64) (*Tag, error) {
	tag := &Tag{}
	err := s.db.NewSelect().Model(tag).Where("t.id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("tag", id)
		}
		return nil, storeError(err, "failed to load tag")
	}
	return tag, nil
}

func (s *Store) ListTags(ctx context.Context) ([]*Tag, error) {
	tags := make([]*Tag, 0)
	if err := s.db.NewSelect().Model(&tags).Order("t.name ASC").Scan(ctx); err != nil {
		return nil, storeError(err, "failed to list tags")
	}
	return tags, nil
}

func (s *Store) UpdateTag(ctx context.Context, tag *Tag) error {
	_, err := s.db.NewUpdate().Model(tag).Column("name").WherePK().Exec(ctx)
	if err != nil {
		if auth.IsUniqueViolation(err) {
			return ErrTagNameTaken
		}
		return storeError(err, "failed to update tag")
	}
	return nil
}

func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*PostTag)(nil)).Where("tag_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().Model((*Tag)(nil)).Where("id = ?", id).Exec(ctx)
		return err
	})
	if err != nil {
		return storeError(err, "failed to delete tag")
	}
	return nil
}

// AddPostTag is a no-op when the post already carries the tag
func (s *Store) AddPostTag(ctx context.Context, postID, tagID int64) error {
	_, err := s.db.NewInsert().
		Model(&PostTag{PostID: postID, TagID: tagID}).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return storeError(err, "failed to tag post")
	}
	return nil
}

func (s *Store) RemovePostTag(ctx context.Context, postID, tagID int64) error {
	_, err := s.db.NewDelete().
		Model((*PostTag)(nil)).
		Where("post_id = ?", postID).
		Where("tag_id = ?", tagID).
		Exec(ctx)
	if err != nil {
		return storeError(err, "failed to untag post")
	}
	return nil
}

func (s *Store) TagsFor(ctx context.Context, postID int64) ([]*Tag, error) {
	tags := make([]*Tag, 0)
	err := s.db.NewSelect().
		Model(&tags).
		Where("t.id IN (SELECT tag_id FROM post_tags WHERE post_id = ?)", postID).
		Order("t.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list post tags")
	}
	return tags, nil
}
