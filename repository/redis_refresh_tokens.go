package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goliatone/go-blog-auth"
	"github.com/goliatone/go-errors"
)

const defaultKeyPrefix = "blog:refresh"

// RedisRefreshTokens stores refresh tokens in redis. Keys expire natively
// and the stored expiry is still checked against the clock.
type RedisRefreshTokens struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
	clock  auth.Clock
	newID  func() string
}

var _ auth.RefreshTokenStore = (*RedisRefreshTokens)(nil)

type RedisOption func(*RedisRefreshTokens)

func WithKeyPrefix(prefix string) RedisOption {
	return func(r *RedisRefreshTokens) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

func WithClock(clock auth.Clock) RedisOption {
	return func(r *RedisRefreshTokens) {
		if clock != nil {
			r.clock = clock
		}
	}
}

func NewRedisRefreshTokens(client redis.Cmdable, ttl time.Duration, opts ...RedisOption) *RedisRefreshTokens {
	r := &RedisRefreshTokens{
		client: client,
		ttl:    ttl,
		prefix: defaultKeyPrefix,
		clock:  auth.ClockFunc(time.Now),
		newID:  auth.NewRefreshTokenValue,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

type redisRecord struct {
	Token      string    `json:"token"`
	UserID     int64     `json:"user_id"`
	ExpiryDate time.Time `json:"expiry_date"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r *RedisRefreshTokens) tokenKey(token string) string {
	return fmt.Sprintf("%s:token:%s", r.prefix, token)
}

func (r *RedisRefreshTokens) userKey(userID int64) string {
	return fmt.Sprintf("%s:user:%d", r.prefix, userID)
}

func (r *RedisRefreshTokens) Create(ctx context.Context, identity *auth.Identity) (*auth.RefreshToken, error) {
	if identity == nil {
		return nil, errors.New("identity must not be nil", errors.CategoryInternal)
	}

	now := r.clock.Now()
	record := redisRecord{
		Token:      r.newID(),
		UserID:     identity.ID,
		ExpiryDate: now.Add(r.ttl),
		CreatedAt:  now,
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to encode refresh token")
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.tokenKey(record.Token), payload, r.ttl)
		pipe.SAdd(ctx, r.userKey(record.UserID), record.Token)
		pipe.Expire(ctx, r.userKey(record.UserID), r.ttl)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist refresh token")
	}

	return record.model(), nil
}

func (r *RedisRefreshTokens) FindByToken(ctx context.Context, token string) (*auth.RefreshToken, error) {
	if token == "" {
		return nil, auth.ErrRefreshTokenNotFound
	}

	data, err := r.client.Get(ctx, r.tokenKey(token)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, auth.ErrRefreshTokenNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load refresh token")
	}

	var record redisRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to decode refresh token")
	}

	return record.model(), nil
}

func (r *RedisRefreshTokens) VerifyNotExpired(ctx context.Context, token *auth.RefreshToken) (*auth.RefreshToken, error) {
	if token == nil {
		return nil, auth.ErrRefreshTokenNotFound
	}

	if !token.IsExpired(r.clock.Now()) {
		return token, nil
	}

	if err := r.delete(ctx, token.Token, token.UserID); err != nil {
		return nil, err
	}

	return nil, auth.ErrTokenExpired
}

func (r *RedisRefreshTokens) Delete(ctx context.Context, token string) error {
	record, err := r.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshTokenNotFound) {
			return nil
		}
		return err
	}
	return r.delete(ctx, record.Token, record.UserID)
}

func (r *RedisRefreshTokens) DeleteByUser(ctx context.Context, userID int64) error {
	tokens, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil && err != redis.Nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to list user refresh tokens")
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, r.tokenKey(token))
	}
	keys = append(keys, r.userKey(userID))

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete user refresh tokens").
			WithMetadata(map[string]any{"user_id": userID})
	}
	return nil
}

func (r *RedisRefreshTokens) delete(ctx context.Context, token string, userID int64) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.tokenKey(token))
		pipe.SRem(ctx, r.userKey(userID), token)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete refresh token")
	}
	return nil
}

func (rec redisRecord) model() *auth.RefreshToken {
	created := rec.CreatedAt
	return &auth.RefreshToken{
		Token:      rec.Token,
		UserID:     rec.UserID,
		ExpiryDate: rec.ExpiryDate,
		CreatedAt:  &created,
	}
}
