package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/meshauth/pkg/cryptox"
	"github.com/redis/go-redis/v9"
)

// DefaultOpTimeout bounds every backing-store call. A slow redis must
// surface as a retriable ErrTimeout, never hang a request.
const DefaultOpTimeout = 2 * time.Second

// RedisStore implements Store on redis. Redemption rides on GETDEL, a
// single command, so concurrent redeemers of one token get exactly one
// winner without any locking on our side. TTL expiry is enforced by redis
// itself via SET EX.
type RedisStore struct {
	client    *redis.Client
	prefix    string
	opTimeout time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a redis-backed store. Keys are namespaced as
// "<prefix>:email:verify:<fingerprint>".
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "meshauth"
	}
	return &RedisStore{
		client:    client,
		prefix:    prefix,
		opTimeout: DefaultOpTimeout,
	}
}

func (s *RedisStore) key(fingerprint string) string {
	return s.prefix + ":email:verify:" + fingerprint
}

func (s *RedisStore) Put(ctx context.Context, principalID string, ttl time.Duration) (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	key := s.key(cryptox.FingerprintToken(token))
	if err := s.client.Set(ctx, key, principalID, ttl).Err(); err != nil {
		return "", mapRedisError("set", err)
	}

	return token, nil
}

func (s *RedisStore) Redeem(ctx context.Context, token string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	// GETDEL is the atomic check-and-delete: one command, one winner.
	principalID, err := s.client.GetDel(ctx, s.key(cryptox.FingerprintToken(token))).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", mapRedisError("getdel", err)
	}

	return principalID, nil
}

func (s *RedisStore) Invalidate(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(cryptox.FingerprintToken(token))).Err(); err != nil {
		return mapRedisError("del", err)
	}
	return nil
}

func mapRedisError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("verification: %s: %w", op, ErrTimeout)
	}
	return fmt.Errorf("verification: %s failed: %w", op, err)
}
