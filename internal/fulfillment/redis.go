package fulfillment

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-marketplace/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// RedisProjection stores pending lines in one set per vendor.
type RedisProjection struct {
	rdb redis.Cmdable
}

func NewRedisProjection(rdb redis.Cmdable) *RedisProjection {
	return &RedisProjection{rdb: rdb}
}

func vendorKey(vendorID int64) string { return fmt.Sprintf(redisx.KeyVendorPending, vendorID) }

func members(entries []Entry) []any {
	out := make([]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.member())
	}
	return out
}

func (p *RedisProjection) Add(ctx context.Context, vendorID int64, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return p.rdb.SAdd(ctx, vendorKey(vendorID), members(entries)...).Err()
}

func (p *RedisProjection) Remove(ctx context.Context, vendorID int64, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return p.rdb.SRem(ctx, vendorKey(vendorID), members(entries)...).Err()
}

func (p *RedisProjection) Pending(ctx context.Context, vendorID int64) ([]Entry, error) {
	ms, err := p.rdb.SMembers(ctx, vendorKey(vendorID)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(ms))
	for _, m := range ms {
		e, err := parseMember(m)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	sortEntries(out)
	return out, nil
}

// RedisDedup marks event ids under dedup:{service}:{event_id} for TTLDedup.
type RedisDedup struct {
	rdb     redis.Cmdable
	service string
}

func NewRedisDedup(rdb redis.Cmdable, service string) *RedisDedup {
	return &RedisDedup{rdb: rdb, service: service}
}

func (d *RedisDedup) key(eventID string) string {
	return fmt.Sprintf(redisx.KeyDedup, d.service, eventID)
}

func (d *RedisDedup) Seen(ctx context.Context, eventID string) (bool, error) {
	return redisx.Exists(ctx, d.rdb, d.key(eventID))
}

func (d *RedisDedup) Mark(ctx context.Context, eventID string) error {
	return d.rdb.Set(ctx, d.key(eventID), "1", redisx.TTLDedup).Err()
}
