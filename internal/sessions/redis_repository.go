package sessions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps each session in a hash under "<prefix><sha256(refresh)>"
// so raw refresh tokens never appear in key names. The key expires with the session.
type RedisRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "session:"
	}
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) key(refresh string) string {
	sum := sha256.Sum256([]byte(refresh))
	return r.prefix + hex.EncodeToString(sum[:])
}

func (r *RedisRepository) Create(ctx context.Context, s *Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl < time.Second {
		ttl = time.Second
	}
	k := r.key(s.RefreshToken)
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, k,
			"userId", s.UserID,
			"createdAt", s.CreatedAt.UTC().Format(time.RFC3339Nano),
			"expiresAt", s.ExpiresAt.UTC().Format(time.RFC3339Nano),
		)
		p.Expire(ctx, k, ttl)
		return nil
	})
	return err
}

func (r *RedisRepository) GetByRefresh(ctx context.Context, refresh string) (*Session, error) {
	fields, err := r.client.HGetAll(ctx, r.key(refresh)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	s := &Session{RefreshToken: refresh, UserID: fields["userId"]}
	s.CreatedAt, _ = time.Parse(time.RFC3339Nano, fields["createdAt"])
	if s.ExpiresAt, err = time.Parse(time.RFC3339Nano, fields["expiresAt"]); err != nil {
		// unreadable expiry: treat as already expired
		s.ExpiresAt = time.Time{}
	}
	return s, nil
}

func (r *RedisRepository) DeleteByRefresh(ctx context.Context, refresh string) error {
	return r.client.Del(ctx, r.key(refresh)).Err()
}
