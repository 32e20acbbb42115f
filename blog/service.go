package blog

import (
	"context"
	"strings"

	"github.com/goliatone/go-blog-auth"
	"github.com/goliatone/go-repository-bun"
)

// Service implements the blog use cases. Every mutation checks the
// identity bound to ctx.
type Service struct {
	store *Store
	users auth.Users
}

func NewService(store *Store, users auth.Users) *Service {
	return &Service{store: store, users: users}
}

func currentIdentity(ctx context.Context) (*auth.Identity, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, auth.ErrAuthenticationRequired
	}
	return identity, nil
}

func (s *Service) hydrate(ctx context.Context, posts []*Post) ([]PostResponse, error) {
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	comments, err := s.store.CommentsFor(ctx, ids...)
	if err != nil {
		return nil, err
	}

	likes, err := s.store.LikeCounts(ctx, ids...)
	if err != nil {
		return nil, err
	}

	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, newPostResponse(p, comments[p.ID], likes[p.ID]))
	}
	return out, nil
}

func (s *Service) hydrateOne(ctx context.Context, post *Post) (*PostResponse, error) {
	res, err := s.hydrate(ctx, []*Post{post})
	if err != nil {
		return nil, err
	}
	return &res[0], nil
}

func (s *Service) CreatePost(ctx context.Context, req PostRequest) (*PostResponse, error) {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}

	post := &Post{
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		AuthorID: identity.ID,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	created, err := s.store.GetPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return s.hydrateOne(ctx, created)
}

func (s *Service) GetPost(ctx context.Context, id int64) (*PostResponse, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.hydrateOne(ctx, post)
}

// Feed returns every post newest first
func (s *Service) Feed(ctx context.Context) ([]PostResponse, error) {
	posts, err := s.store.ListPosts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, posts)
}

func (s *Service) UpdatePost(ctx context.Context, id int64, req PostRequest) (*PostResponse, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := auth.AssertContextOwner(ctx, post); err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(req.Title)
	post.Content = req.Content
	if err := s.store.UpdatePost(ctx, post); err != nil {
		return nil, err
	}
	return s.hydrateOne(ctx, post)
}

func (s *Service) DeletePost(ctx context.Context, id int64) error {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return err
	}

	if err := auth.AssertContextOwner(ctx, post); err != nil {
		return err
	}

	return s.store.DeletePost(ctx, id)
}

func (s *Service) MyPosts(ctx context.Context) ([]PostResponse, error) {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}

	posts, err := s.store.PostsByAuthor(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, posts)
}

func (s *Service) AddComment(ctx context.Context, postID int64, req CommentRequest) (*CommentResponse, error) {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.store.ensurePost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &Comment{
		PostID:   postID,
		AuthorID: identity.ID,
		Content:  req.Content,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	created, err := s.store.GetComment(ctx, postID, comment.ID)
	if err != nil {
		return nil, err
	}
	res := newCommentResponse(created)
	return &res, nil
}

func (s *Service) GetComment(ctx context.Context, postID, id int64) (*CommentResponse, error) {
	comment, err := s.store.GetComment(ctx, postID, id)
	if err != nil {
		return nil, err
	}
	res := newCommentResponse(comment)
	return &res, nil
}

func (s *Service) ListComments(ctx context.Context, postID int64) ([]CommentResponse, error) {
	if err := s.store.ensurePost(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.store.CommentsFor(ctx, postID)
	if err != nil {
		return nil, err
	}

	out := make([]CommentResponse, 0, len(comments[postID]))
	for _, c := range comments[postID] {
		out = append(out, newCommentResponse(c))
	}
	return out, nil
}

func (s *Service) UpdateComment(ctx context.Context, postID, id int64, req CommentRequest) (*CommentResponse, error) {
	comment, err := s.store.GetComment(ctx, postID, id)
	if err != nil {
		return nil, err
	}

	if err := auth.AssertContextOwner(ctx, comment); err != nil {
		return nil, err
	}

	comment.Content = req.Content
	if err := s.store.UpdateComment(ctx, comment); err != nil {
		return nil, err
	}
	res := newCommentResponse(comment)
	return &res, nil
}

func (s *Service) DeleteComment(ctx context.Context, postID, id int64) error {
	comment, err := s.store.GetComment(ctx, postID, id)
	if err != nil {
		return err
	}

	if err := auth.AssertContextOwner(ctx, comment); err != nil {
		return err
	}

	return s.store.DeleteComment(ctx, id)
}

// LikePost is idempotent
func (s *Service) LikePost(ctx context.Context, postID int64) error {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return err
	}
	if err := s.store.ensurePost(ctx, postID); err != nil {
		return err
	}
	return s.store.AddLike(ctx, identity.ID, postID)
}

// UnlikePost is a no-op when the post was not liked
func (s *Service) UnlikePost(ctx context.Context, postID int64) error {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return err
	}
	return s.store.RemoveLike(ctx, identity.ID, postID)
}

func (s *Service) LikeCount(ctx context.Context, postID int64) (*LikeCountResponse, error) {
	if err := s.store.ensurePost(ctx, postID); err != nil {
		return nil, err
	}
	counts, err := s.store.LikeCounts(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &LikeCountResponse{PostID: postID, Count: counts[postID]}, nil
}

// AddFavorite is idempotent
func (s *Service) AddFavorite(ctx context.Context, postID int64) error {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return err
	}
	if err := s.store.ensurePost(ctx, postID); err != nil {
		return err
	}
	return s.store.AddFavorite(ctx, identity.ID, postID)
}

// RemoveFavorite deletes the favorite. Removing an absent favorite is a no-op.
func (s *Service) RemoveFavorite(ctx context.Context, postID int64) error {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return err
	}
	if err := s.store.ensurePost(ctx, postID); err != nil {
		return err
	}
	return s.store.RemoveFavorite(ctx, identity.ID, postID)
}

func (s *Service) MyFavorites(ctx context.Context) ([]PostResponse, error) {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}

	posts, err := s.store.FavoritePosts(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, posts)
}

func (s *Service) requireAdmin(ctx context.Context) error {
	return auth.AssertRole(auth.CurrentIdentity(ctx), auth.RoleAdmin)
}

func (s *Service) CreateTag(ctx context.Context, req TagRequest) (*TagResponse, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	tag := &Tag{Name: strings.TrimSpace(req.Name)}
	if err := s.store.CreateTag(ctx, tag); err != nil {
		return nil, err
	}
	res := newTagResponse(tag)
	return &res, nil
}

func (s *Service) GetTag(ctx context.Context, id int64) (*TagResponse, error) {
	tag, err := s.store.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	res := newTagResponse(tag)
	return &res, nil
}

func (s *Service) ListTags(ctx context.Context) ([]TagResponse, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, newTagResponse(t))
	}
	return out, nil
}

func (s *Service) UpdateTag(ctx context.Context, id int64, req TagRequest) (*TagResponse, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	tag, err := s.store.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}

	tag.Name = strings.TrimSpace(req.Name)
	if err := s.store.UpdateTag(ctx, tag); err != nil {
		return nil, err
	}
	res := newTagResponse(tag)
	return &res, nil
}

func (s *Service) DeleteTag(ctx context.Context, id int64) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	if _, err := s.store.GetTag(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteTag(ctx, id)
}

func (s *Service) PostsByTag(ctx context.Context, tagID int64) ([]PostResponse, error) {
	if _, err := s.store.GetTag(ctx, tagID); err != nil {
		return nil, err
	}
	posts, err := s.store.PostsByTag(ctx, tagID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, posts)
}

func (s *Service) postTagTargets(ctx context.Context, postID, tagID int64) error {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if err := auth.AssertContextOwner(ctx, post); err != nil {
		return err
	}
	_, err = s.store.GetTag(ctx, tagID)
	return err
}

// AddTagToPost is idempotent and restricted to the post author
func (s *Service) AddTagToPost(ctx context.Context, postID, tagID int64) error {
	if err := s.postTagTargets(ctx, postID, tagID); err != nil {
		return err
	}
	return s.store.AddPostTag(ctx, postID, tagID)
}

func (s *Service) RemoveTagFromPost(ctx context.Context, postID, tagID int64) error {
	if err := s.postTagTargets(ctx, postID, tagID); err != nil {
		return err
	}
	return s.store.RemovePostTag(ctx, postID, tagID)
}

func (s *Service) PostTags(ctx context.Context, postID int64) ([]TagResponse, error) {
	if err := s.store.ensurePost(ctx, postID); err != nil {
		return nil, err
	}
	tags, err := s.store.TagsFor(ctx, postID)
	if err != nil {
		return nil, err
	}
	out := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, newTagResponse(t))
	}
	return out, nil
}

// Me returns the account behind the current identity
func (s *Service) Me(ctx context.Context) (*UserResponse, error) {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, identity.ID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, auth.ErrIdentityGone
		}
		return nil, storeError(err, "failed to load current user")
	}
	res := newUserResponse(user)
	return &res, nil
}

// ListUsers returns every account. Admin only.
func (s *Service) ListUsers(ctx context.Context) ([]UserResponse, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list users")
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	return out, nil
}
