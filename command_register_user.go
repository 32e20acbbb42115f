package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles,omitempty"`
	// Output receives the persisted user when set
	Output *User `json:"-"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserHandler creates accounts in a single transaction
type RegisterUserHandler struct {
	repo    RepositoryManager
	hasher  PasswordHasher
	timeout time.Duration
	admins  map[string]struct{}
}

var _ command.Commander[RegisterUserMessage] = (*RegisterUserHandler)(nil)

func NewRegisterUserHandler(repo RepositoryManager, hasher PasswordHasher) *RegisterUserHandler {
	if hasher == nil {
		hasher = NewBcryptHasher(0)
	}
	return &RegisterUserHandler{
		repo:    repo,
		hasher:  hasher,
		timeout: 10 * time.Second,
	}
}

// WithAdminUsernames grants RoleAdmin to accounts registered under one of
// the given usernames
func (h *RegisterUserHandler) WithAdminUsernames(usernames ...string) *RegisterUserHandler {
	if h.admins == nil {
		h.admins = make(map[string]struct{}, len(usernames))
	}
	for _, name := range usernames {
		if name != "" {
			h.admins[name] = struct{}{}
		}
	}
	return h
}

func (h *RegisterUserHandler) rolesFor(event RegisterUserMessage) []string {
	if _, ok := h.admins[event.Username]; !ok {
		return event.Roles
	}
	roles := append([]string{RoleUser}, event.Roles...)
	return append(roles, RoleAdmin)
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	taken, err := h.repo.Users().ExistsByUsername(ctx, event.Username)
	if err != nil {
		return internalError(err, "failed to check username availability")
	}
	if taken {
		return ErrUsernameTaken
	}

	hash, err := h.hasher.HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Category != goerrors.CategoryInternal {
			return richErr
		}
		return internalError(err, "failed to hash password")
	}

	user := &User{
		Username:     event.Username,
		Email:        event.Email,
		PasswordHash: hash,
		Roles:        h.rolesFor(event),
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := h.repo.Users().CreateTx(ctx, tx, user)
		if err != nil {
			return err
		}
		user = created
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return internalError(err, "user registration transaction failed")
	}

	if event.Output != nil {
		*event.Output = *user
	}

	return nil
}
