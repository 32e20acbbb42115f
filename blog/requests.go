package blog

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type PostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (r PostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.Content, validation.Required, validation.Length(10, 0)),
	)
}

type CommentRequest struct {
	Content string `json:"content"`
}

func (r CommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required, validation.Length(1, 256)),
	)
}

type TagRequest struct {
	Name string `json:"name"`
}

func (r TagRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 64)),
	)
}

type FavoriteRequest struct {
	PostID int64 `json:"postId"`
}

func (r FavoriteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PostID, validation.Required, validation.Min(int64(1))),
	)
}
