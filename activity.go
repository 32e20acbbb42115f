package auth

import (
	"context"
	"errors"
	"time"
)

// ActivityEventType enumerates the auth flows that emit activity
type ActivityEventType string

const (
	ActivityEventLoginSuccess   ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure   ActivityEventType = "auth.login.failure"
	ActivityEventRefreshSuccess ActivityEventType = "auth.refresh.success"
	ActivityEventRefreshFailure ActivityEventType = "auth.refresh.failure"
	ActivityEventSignupSuccess  ActivityEventType = "auth.signup.success"
	ActivityEventSignupFailure  ActivityEventType = "auth.signup.failure"
	ActivityEventLogout         ActivityEventType = "auth.logout"
)

// ActivityEvent captures audit information about an auth action.
// TextCode is set on failures and holds the error text code.
type ActivityEvent struct {
	EventType  ActivityEventType
	UserID     int64
	Username   string
	TextCode   string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

// MultiActivitySink fans events out to every sink and joins their errors
type MultiActivitySink []ActivitySink

func (m MultiActivitySink) Record(ctx context.Context, event ActivityEvent) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Record(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoggerActivitySink writes events to a Logger
type LoggerActivitySink struct {
	Logger Logger
}

func (s LoggerActivitySink) Record(_ context.Context, event ActivityEvent) error {
	logger := normalizeLogger(s.Logger)
	if event.TextCode != "" {
		logger.Warn("auth activity", "event", event.EventType, "username", event.Username, "code", event.TextCode)
		return nil
	}
	logger.Info("auth activity", "event", event.EventType, "username", event.Username, "user_id", event.UserID)
	return nil
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

// errorTextCode returns the text code carried by err or INTERNAL_ERROR
func errorTextCode(err error) string {
	if err == nil {
		return ""
	}
	for _, code := range []string{
		TextCodeUserNotFound,
		TextCodeTokenNotFound,
		TextCodeBadCredentials,
		TextCodeConflict,
		TextCodeTokenExpired,
		TextCodeValidationFailed,
		TextCodeAuthError,
	} {
		if HasTextCode(err, code) {
			return code
		}
	}
	return TextCodeInternal
}
