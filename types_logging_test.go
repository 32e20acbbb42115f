package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatLine(t *testing.T) {
	tests := []struct {
		name   string
		format string
		args   []any
		want   string
	}{
		{
			name:   "printf verbs",
			format: "user %s has %d roles",
			args:   []any{"alice", 2},
			want:   "[INF] AUTH user alice has 2 roles\n",
		},
		{
			name:   "key value pairs",
			format: "login failed",
			args:   []any{"username", "alice", "code", TextCodeBadCredentials},
			want:   "[INF] AUTH login failed username=alice code=BAD_CREDENTIALS\n",
		},
		{
			name:   "odd trailing arg",
			format: "refresh",
			args:   []any{"user_id", 7, "dangling"},
			want:   "[INF] AUTH refresh user_id=7 dangling\n",
		},
		{
			name:   "message only",
			format: "ready\n",
			want:   "[INF] AUTH ready\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatLine("[INF] AUTH ", tt.format, tt.args...))
		})
	}
}

type spyLogger struct {
	messages []string
}

func (s *spyLogger) Debug(format string, args ...any) { s.messages = append(s.messages, format) }
func (s *spyLogger) Info(format string, args ...any)  { s.messages = append(s.messages, format) }
func (s *spyLogger) Warn(format string, args ...any)  { s.messages = append(s.messages, format) }
func (s *spyLogger) Error(format string, args ...any) { s.messages = append(s.messages, format) }

func TestNormalizeLogger(t *testing.T) {
	assert.IsType(t, defLogger{}, normalizeLogger(nil))

	spy := &spyLogger{}
	assert.Same(t, spy, normalizeLogger(spy))
}

func TestUserProviderWithNilLoggerFallsBack(t *testing.T) {
	provider := NewUserProvider(nil, nil).WithLogger(nil)
	assert.IsType(t, defLogger{}, provider.logger)
}

func TestLoggerActivitySinkLevels(t *testing.T) {
	spy := &spyLogger{}
	sink := LoggerActivitySink{Logger: spy}

	assert.NoError(t, sink.Record(context.Background(), ActivityEvent{EventType: ActivityEventLoginSuccess, Username: "alice"}))
	assert.NoError(t, sink.Record(context.Background(), ActivityEvent{EventType: ActivityEventLoginFailure, TextCode: TextCodeBadCredentials}))
	assert.Equal(t, []string{"auth activity", "auth activity"}, spy.messages)
}
