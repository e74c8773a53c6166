package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session not found")

const keyPrefix = "sess:"

// Store keeps opaque session tokens in Redis. Tokens are random UUIDs; all
// session state lives server-side, so logout takes effect immediately.
type Store struct {
	rdb     *redis.Client
	ttl     time.Duration
	sliding bool
}

type Config struct {
	TTL time.Duration
	// Sliding renews the TTL on every successful lookup instead of expiring
	// a fixed interval after login.
	Sliding bool
}

func NewStore(rdb *redis.Client, cfg Config) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Store{rdb: rdb, ttl: cfg.TTL, sliding: cfg.Sliding}
}

func (s *Store) Create(ctx context.Context, actor Actor) (string, error) {
	payload, err := json.Marshal(actor)
	if err != nil {
		return "", err
	}
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, keyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *Store) Get(ctx context.Context, token string) (Actor, error) {
	if token == "" {
		return Actor{}, ErrNotFound
	}
	payload, err := s.rdb.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return Actor{}, ErrNotFound
	}
	if err != nil {
		return Actor{}, err
	}

	var actor Actor
	if err := json.Unmarshal(payload, &actor); err != nil {
		return Actor{}, err
	}

	if s.sliding {
		// Best effort; a failed renewal only shortens the session.
		_ = s.rdb.Expire(ctx, keyPrefix+token, s.ttl).Err()
	}
	return actor, nil
}

func (s *Store) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.rdb.Del(ctx, keyPrefix+token).Err()
}

// TTL reports the configured session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (s *Store) ReadyCheck() func(context.Context) error {
	return func(ctx context.Context) error {
		return s.rdb.Ping(ctx).Err()
	}
}

// TokenFromRequest reads the session token from the session_token cookie or
// an Authorization: Bearer header, in that order.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie("session_token"); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}
