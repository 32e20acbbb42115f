package blog

import (
	"time"

	"github.com/goliatone/go-blog-auth"
)

type CommentResponse struct {
	ID             int64     `json:"id"`
	Content        string    `json:"content"`
	AuthorUsername string    `json:"authorUsername"`
	PostID         int64     `json:"postId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PostResponse is returned for single posts and every post listing
type PostResponse struct {
	ID             int64             `json:"id"`
	Title          string            `json:"title"`
	Content        string            `json:"content"`
	AuthorID       int64             `json:"authorId"`
	AuthorUsername string            `json:"authorUsername"`
	Comments       []CommentResponse `json:"comments"`
	LikeCount      int64             `json:"likeCount"`
	CommentCount   int64             `json:"commentCount"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

type TagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type UserResponse struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

type LikeCountResponse struct {
	PostID int64 `json:"postId"`
	Count  int64 `json:"count"`
}

func newCommentResponse(c *Comment) CommentResponse {
	res := CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		PostID:    c.PostID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Author != nil {
		res.AuthorUsername = c.Author.Username
	}
	return res
}

func newPostResponse(p *Post, comments []*Comment, likes int64) PostResponse {
	res := PostResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		AuthorID:  p.AuthorID,
		Comments:  make([]CommentResponse, 0, len(comments)),
		LikeCount: likes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Author != nil {
		res.AuthorUsername = p.Author.Username
	}
	for _, c := range comments {
		res.Comments = append(res.Comments, newCommentResponse(c))
	}
	res.CommentCount = int64(len(res.Comments))
	return res
}

func newTagResponse(t *Tag) TagResponse {
	return TagResponse{ID: t.ID, Name: t.Name}
}

func newUserResponse(u *auth.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Roles:    u.Roles,
	}
}
