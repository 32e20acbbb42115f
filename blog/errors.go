package blog

import (
	"fmt"

	"github.com/goliatone/go-blog-auth"
	"github.com/goliatone/go-errors"
)

// ErrTagNameTaken is returned when a tag name is already in use
var ErrTagNameTaken = errors.New("tag name already exists", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode(auth.TextCodeConflict)

func notFound(resource string, id int64) *errors.Error {
	return errors.New(fmt.Sprintf("%s not found with id %d", resource, id), errors.CategoryNotFound).
		WithCode(errors.CodeNotFound).
		WithTextCode(auth.TextCodeResourceNotFound).
		WithMetadata(map[string]any{"resource": resource, "id": id})
}

func storeError(err error, msg string) *errors.Error {
	return errors.Wrap(err, errors.CategoryInternal, msg).
		WithCode(errors.CodeInternal).
		WithTextCode(auth.TextCodeInternal)
}

func invalidParam(name, value string) *errors.Error {
	return errors.New(fmt.Sprintf("invalid %s: %q", name, value), errors.CategoryBadInput).
		WithCode(errors.CodeBadRequest).
		WithTextCode(auth.TextCodeValidationFailed)
}
