package blog

import (
	"net/http"
	"strconv"

	"github.com/goliatone/go-blog-auth"
	"github.com/goliatone/go-router"
)

type validatable interface {
	Validate() error
}

type Controller struct {
	Logger       auth.Logger
	Service      *Service
	ErrorHandler func(router.Context, error) error
}

type ControllerOption func(*Controller)

func WithLogger(logger auth.Logger) ControllerOption {
	return func(c *Controller) {
		c.Logger = logger
	}
}

func WithErrorHandler(handler func(router.Context, error) error) ControllerOption {
	return func(c *Controller) {
		if handler != nil {
			c.ErrorHandler = handler
		}
	}
}

func NewController(service *Service, opts ...ControllerOption) *Controller {
	if service == nil {
		panic("Missing Service in blog controller...")
	}

	c := &Controller{Service: service}
	for _, opt := range opts {
		opt(c)
	}

	if c.ErrorHandler == nil {
		logger := c.Logger
		c.ErrorHandler = func(ctx router.Context, err error) error {
			return auth.WriteError(ctx, err, logger)
		}
	}
	return c
}

// RegisterRoutes mounts the blog endpoints on group. Reads are public,
// writes need an identity and tag management needs the admin role.
func (c *Controller) RegisterRoutes(group auth.RouteRegistrar, ra *auth.RouteAuthenticator) {
	authed := ra.RequireIdentity()
	admin := ra.RequireRole(auth.RoleAdmin)

	group.Get("/feed", c.Feed).SetName("blog.feed")

	group.Get("/posts", c.Feed).SetName("posts.list")
	group.Post("/posts", c.CreatePost, authed).SetName("posts.create")
	group.Get("/posts/:postId", c.GetPost).SetName("posts.get")
	group.Put("/posts/:postId", c.UpdatePost, authed).SetName("posts.update")
	group.Delete("/posts/:postId", c.DeletePost, authed).SetName("posts.delete")

	group.Get("/posts/:postId/comments", c.ListComments).SetName("comments.list")
	group.Post("/posts/:postId/comments", c.AddComment, authed).SetName("comments.create")
	group.Get("/posts/:postId/comments/:commentId", c.GetComment).SetName("comments.get")
	group.Put("/posts/:postId/comments/:commentId", c.UpdateComment, authed).SetName("comments.update")
	group.Delete("/posts/:postId/comments/:commentId", c.DeleteComment, authed).SetName("comments.delete")

	group.Get("/posts/:postId/likes", c.LikeCount).SetName("likes.count")
	group.Post("/posts/:postId/likes", c.LikePost, authed).SetName("likes.create")
	group.Delete("/posts/:postId/likes", c.UnlikePost, authed).SetName("likes.delete")

	group.Get("/posts/:postId/tags", c.PostTags).SetName("post_tags.list")
	group.Post("/posts/:postId/tags/:tagId", c.AddTagToPost, authed).SetName("post_tags.create")
	group.Delete("/posts/:postId/tags/:tagId", c.RemoveTagFromPost, authed).SetName("post_tags.delete")

	group.Get("/tags", c.ListTags).SetName("tags.list")
	group.Post("/tags", c.CreateTag, authed, admin).SetName("tags.create")
	group.Get("/tags/:tagId", c.GetTag).SetName("tags.get")
	group.Put("/tags/:tagId", c.UpdateTag, authed, admin).SetName("tags.update")
	group.Delete("/tags/:tagId", c.DeleteTag, authed, admin).SetName("tags.delete")
	group.Get("/tags/:tagId/posts", c.PostsByTag).SetName("tags.posts")

	group.Post("/users/favorites", c.AddFavorite, authed).SetName("favorites.create")
	group.Delete("/users/favorites", c.RemoveFavorite, authed).SetName("favorites.delete")

	group.Get("/users", c.ListUsers, authed, admin).SetName("users.list")

	group.Get("/me", c.Me, authed).SetName("me.get")
	group.Get("/me/posts", c.MyPosts, authed).SetName("me.posts")
	group.Get("/me/favorites", c.MyFavorites, authed).SetName("me.favorites")
}

func (c *Controller) bind(ctx router.Context, payload validatable) error {
	if err := ctx.Bind(payload); err != nil {
		return auth.NewValidationError(err)
	}
	if err := payload.Validate(); err != nil {
		return auth.NewValidationError(err)
	}
	return nil
}

func idParam(ctx router.Context, name string) (int64, error) {
	raw := ctx.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalidParam(name, raw)
	}
	return id, nil
}

func (c *Controller) respond(ctx router.Context, status int, res any, err error) error {
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	return ctx.JSON(status, res)
}

func (c *Controller) noContent(ctx router.Context, err error) error {
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (c *Controller) Feed(ctx router.Context) error {
	res, err := c.Service.Feed(ctx.Context())
	return c.respond(ctx, router.StatusOK, res, err)
}

func (c *Controller) CreatePost(ctx router.Context) error {
	payload := new(PostRequest)
	if err := c.bind(ctx, payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}
	res, err := c.Service.CreatePost(ctx.Context(), *payload)
	return c.respond(ctx, http.StatusCreated, res, err)
}

func (c *Controller) GetPost(ctx router.Context) error {
	id, err := idParam(ctx, "postId")
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	res, err := c.Service.GetPost(ctx.Context(), id)
	return c.respond(ctx, router.StatusOK, res, err)
}

func (c *Controller) UpdatePost(ctx router.Context) error {
	id, err := idParam(ctx, "postId")
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	payload := new(PostRequest)
	if err := c.bind(ctx, payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}
	res, err := c.Service.UpdatePost(ctx.Context(), id, *payload)
	return c.respond(ctx, router.StatusOK, res, err)
}

func (c *Controller) DeletePost(ctx router.Context) error {
	id, err := idParam(ctx, "postId")
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	return c.noContent(ctx, c.Service.DeletePost(ctx.Context(), id))
}

func (c *Controller) ListComments(ctx router.Context) error {
	postID, err := idParam(ctx, "postId")
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	res, err := c.Service.ListComments(ctx.Context(), postID)
	return c.respond(ctx, router.StatusOK, res, err)
}

func (c *Controller) AddComment(ctx router.Context) error {
	postID, err := idParam(ctx, "postId")
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	payload := new(CommentRequest)
	if err := c.bind(ctx, payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}
	res, err := c.Service.AddComment(ctx.Context(), postID, *payload)
	return c.respond(ctx, http.StatusCreated, res, err)
}

func (c *Controller) commentIDs(ctx router.Context) (int64, int64, error) {
	postID, err := idParam(ctx, "postId")
	if err != nil {
		return 0, 0, err
	}
	commentID, err := idParam(ctx, "commentId")
	if err != nil {
		return 0, 0, err
	}
	return postID, commentID, nil
}

func (c *Controller) GetComment(ctx router.Context) error {
	postID, commentID, err := c.commentIDs(ctx)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	res, err := c.Service.GetComment(ctx.Context(), postID, commentID)
	return c.respond(ctx, router.StatusOK, res, err)
}

func (c *Controller) UpdateComment(ctx router.Context) error {
	postID, commentID, err := c.commentIDs(ctx)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	payload := new(CommentRequest)
	if err := c.bind(ctx, payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}
	res, err := c.Service.UpdateComment(ctx.Context(), postID, commentID, *payload)
	return c.respond(ctx, router.StatusOK, res, err)
}

func (c *Controller) DeleteComment(ctx router.Context) error {
	postID, commentID, err := c.commentIDs(ctx)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	return c.noContent(ctx, c.Service.DeleteComment(ctx.Context(), postID, commentID))
}

func (c *Controller) LikeCount(ctx router.Context) error {
	postID, err := idParam(ctx, "postId")
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	res, err := c.Service.LikeCount(ctx.Context(), postID)
	return c.respond(ctx, router.StatusOK, res, err)
}

func (c *Controller) LikePost(ctx router.Context) error {
	postID, err := idParam(ctx, "postId")
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	if err := c.Service.LikePost(ctx.Context(), postID); err != nil {
		return c.ErrorHandler(ctx, err)
	}
	res, err := c.Service.LikeCount(ctx.Context(), postID)
	return c.respond(ctx, router.StatusOK, res, err)
}

func (c *Controller) UnlikePost(ctx router.Context) error {
	postID, err := idParam(ctx, "postId")
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	return c.noContent(ctx, c.Service.UnlikePost(ctx.Context(), postID))
}

func (c *Controller) PostTags(ctx router.Context) error {
	postID, err := idParam(ctx, "postId")
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	res, err := c.Service.PostTags(ctx.Context(), postID)
	return c.respond(ctx, router.StatusOK, res, err)
}

func (c *Controller) postTagIDs(ctx router.Context) (int64, int64, error) {
	postID, err := idParam(ctx, "postId")
	if err != nil {
		return 0, 0, err
	}
	tagID, err := idParam(ctx, "tagId")
	if err != nil {
		return 0, 0, err
	}
	return postID, tagID, nil
}

func (c *Controller) AddTagToPost(ctx router.Context) error {
	postID, tagID, err := c.postTagIDs(ctx)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	if err := c.Service.AddTagToPost(ctx.Context(), postID, tagID); err != nil {
		return c.ErrorHandler(ctx, err)
	}
	res, err := c.Service.PostTags(ctx.Context(), postID)
	return c.respond(ctx, router.StatusOK, res, err)
}

func (c *Controller) RemoveTagFromPost(ctx router.Context) error {
	postID, tagID, err := c.postTagIDs(ctx)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	return c.noContent(ctx, c.Service.RemoveTagFromPost(ctx.Context(), postID, tagID))
}

func (c *Controller) ListTags(ctx router.Context) error {
	res, err := c.Service.ListTags(ctx.Context())
	return c.respond(ctx, router.StatusOK, res, err)
}

func (c *Controller) CreateTag(ctx router.Context) error {
	payload := new(TagRequest)
	if err := c.bind(ctx, payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}
	res, err := c.Service.CreateTag(ctx.Context(), *payload)
	return c.respond(ctx, http.StatusCreated, res, err)
}

func (c *Controller) GetTag(ctx router.Context) error {
	id, err := idParam(ctx, "tagId")
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	res, err := c.Service.GetTag(ctx.Context(), id)
	return c.respond(ctx, router.StatusOK, res, err)
}

func (c *Controller) UpdateTag(ctx router.Context) error {
	id, err := idParam(ctx, "tagId")
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	payload := new(TagRequest)
	if err := c.bind(ctx, payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}
	res, err := c.Service.UpdateTag(ctx.Context(), id, *payload)
	return c.respond(ctx, router.StatusOK, res, err)
}

func (c *Controller) DeleteTag(ctx router.Context) error {
	id, err := idParam(ctx, "tagId")
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	return c.noContent(ctx, c.Service.DeleteTag(ctx.Context(), id))
}

func (c *Controller) PostsByTag(ctx router.Context) error {
	id, err := idParam(ctx, "tagId")
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	res, err := c.Service.PostsByTag(ctx.Context(), id)
	return c.respond(ctx, router.StatusOK, res, err)
}

func (c *Controller) AddFavorite(ctx router.Context) error {
	payload := new(FavoriteRequest)
	if err := c.bind(ctx, payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}
	if err := c.Service.AddFavorite(ctx.Context(), payload.PostID); err != nil {
		return c.ErrorHandler(ctx, err)
	}
	res, err := c.Service.MyFavorites(ctx.Context())
	return c.respond(ctx, router.StatusOK, res, err)
}

func (c *Controller) RemoveFavorite(ctx router.Context) error {
	payload := new(FavoriteRequest)
	if err := c.bind(ctx, payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}
	return c.noContent(ctx, c.Service.RemoveFavorite(ctx.Context(), payload.PostID))
}

func (c *Controller) ListUsers(ctx router.Context) error {
	res, err := c.Service.ListUsers(ctx.Context())
	return c.respond(ctx, router.StatusOK, res, err)
}

func (c *Controller) Me(ctx router.Context) error {
	res, err := c.Service.Me(ctx.Context())
	return c.respond(ctx, router.StatusOK, res, err)
}

func (c *Controller) MyPosts(ctx router.Context) error {
	res, err := c.Service.MyPosts(ctx.Context())
	return c.respond(ctx, router.StatusOK, res, err)
}

func (c *Controller) MyFavorites(ctx router.Context) error {
	res, err := c.Service.MyFavorites(ctx.Context())
	return c.respond(ctx, router.StatusOK, res, err)
}
