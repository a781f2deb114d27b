// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/relabs-tech/inertial_radar/internal/geo"
)

// RedisStore keeps the preferences in a Redis hash named "prefs:<name>".
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore wraps an existing client. Close closes the client.
func NewRedisStore(rdb *redis.Client, name string) *RedisStore {
	return &RedisStore{rdb: rdb, key: "prefs:" + name}
}

// Key returns the hash key.
func (s *RedisStore) Key() string { return s.key }

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context) (geo.E6, bool, error) {
	vals, err := s.rdb.HMGet(ctx, s.key, KeyLatitude, KeyLongitude).Result()
	if err != nil {
		return geo.E6{}, false, fmt.Errorf("store: redis HMGET %s: %w", s.key, err)
	}
	return decodeHash(s.key, vals)
}

// decodeHash turns the HMGET reply into a destination. A hash holding only
// one of the two fields is reported as an error.
func decodeHash(key string, vals []any) (geo.E6, bool, error) {
	if len(vals) != 2 || (vals[0] == nil && vals[1] == nil) {
		return geo.E6{}, false, nil
	}
	if vals[0] == nil || vals[1] == nil {
		return geo.E6{}, false, fmt.Errorf("store: redis %s: incomplete destination %v", key, vals)
	}
	lat, err := parseInt32(vals[0])
	if err != nil {
		return geo.E6{}, false, fmt.Errorf("store: redis %s.%s: %w", key, KeyLatitude, err)
	}
	lon, err := parseInt32(vals[1])
	if err != nil {
		return geo.E6{}, false, fmt.Errorf("store: redis %s.%s: %w", key, KeyLongitude, err)
	}
	return geo.E6{LatitudeE6: lat, LongitudeE6: lon}, true, nil
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, p geo.E6) error {
	if err := s.rdb.HSet(ctx, s.key, KeyLatitude, p.LatitudeE6, KeyLongitude, p.LongitudeE6).Err(); err != nil {
		return fmt.Errorf("store: redis HSET %s: %w", s.key, err)
	}
	return nil
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.rdb.HDel(ctx, s.key, KeyLatitude, KeyLongitude).Err(); err != nil {
		return fmt.Errorf("store: redis HDEL %s: %w", s.key, err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func parseInt32(v interface{}) (int32, error) {
	str, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected type %T", v)
	}
	n, err := strconv.ParseInt(str, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}
