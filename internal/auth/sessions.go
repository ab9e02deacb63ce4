package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ariefcatur/go-marketplace/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Sessions stores session tokens in redis with a rolling TTL.
type Sessions struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewSessions(rdb redis.Cmdable, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = redisx.TTLSession
	}
	return &Sessions{rdb: rdb, ttl: ttl}
}

func (s *Sessions) TTL() time.Duration { return s.ttl }

func sessionKey(token string) string { return fmt.Sprintf(redisx.KeySession, token) }
func userKey(userID int64) string    { return fmt.Sprintf(redisx.KeyUserSessions, userID) }

func (s *Sessions) Create(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, sessionKey(token), userID, s.ttl)
		p.SAdd(ctx, userKey(userID), token)
		p.Expire(ctx, userKey(userID), s.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

// Lookup resolves a token and extends its lifetime. ok is false for unknown
// or expired tokens.
func (s *Sessions) Lookup(ctx context.Context, token string) (userID int64, ok bool, err error) {
	if token == "" {
		return 0, false, nil
	}
	v, err := s.rdb.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup session: %w", err)
	}
	userID, err = strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("session %s holds %q", token, v)
	}
	_, err = s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Expire(ctx, sessionKey(token), s.ttl)
		p.Expire(ctx, userKey(userID), s.ttl)
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("refresh session: %w", err)
	}
	return userID, true, nil
}

func (s *Sessions) Destroy(ctx context.Context, token string) error {
	userID, ok, err := s.Lookup(ctx, token)
	if err != nil || !ok {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, sessionKey(token))
		p.SRem(ctx, userKey(userID), token)
		return nil
	})
	return err
}

// DestroyAll logs the user out everywhere.
func (s *Sessions) DestroyAll(ctx context.Context, userID int64) error {
	tokens, err := s.rdb.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, sessionKey(t))
	}
	keys = append(keys, userKey(userID))
	return s.rdb.Del(ctx, keys...).Err()
}
