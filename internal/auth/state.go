package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StateTTL bounds how long a user may sit on the consent screen.
const StateTTL = 10 * time.Minute

var ErrInvalidState = errors.New("invalid or expired oauth state")

// StateStore issues and consumes the OAuth state parameter.
type StateStore interface {
	Issue(ctx context.Context) (string, error)
	// Consume validates state and invalidates it where the store supports it.
	Consume(ctx context.Context, state string) error
}

// RedisStateStore keeps nonces in Redis so they are single-use across instances.
type RedisStateStore struct {
	client *redis.Client
	prefix string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// NewRedisStateStore connects and pings Redis.
func NewRedisStateStore(ctx context.Context, cfg RedisConfig) (*RedisStateStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}
	return &RedisStateStore{client: rdb, prefix: "oauth:state:"}, nil
}

func (s *RedisStateStore) Issue(ctx context.Context) (string, error) {
	state := uuid.NewString()
	if err := s.client.Set(ctx, s.prefix+state, "1", StateTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}
	return state, nil
}

func (s *RedisStateStore) Consume(ctx context.Context, state string) error {
	if state == "" {
		return ErrInvalidState
	}
	n, err := s.client.Del(ctx, s.prefix+state).Result()
	if err != nil {
		return fmt.Errorf("failed to consume oauth state: %w", err)
	}
	if n == 0 {
		return ErrInvalidState
	}
	return nil
}

func (s *RedisStateStore) Close() error {
	return s.client.Close()
}

// SignedStateStore needs no shared storage: the state is a short-lived JWT
// with a random ID. It cannot enforce single use.
type SignedStateStore struct {
	secret []byte
	now    func() time.Time
}

func NewSignedStateStore(secret string) *SignedStateStore {
	return &SignedStateStore{secret: []byte("oauth-state:" + secret), now: time.Now}
}

func (s *SignedStateStore) Issue(_ context.Context) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{"oauth-state"},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(StateTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign oauth state: %w", err)
	}
	return signed, nil
}

func (s *SignedStateStore) Consume(_ context.Context, state string) error {
	_, err := jwt.ParseWithClaims(state, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience("oauth-state"),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return nil
}
