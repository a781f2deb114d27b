// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package store persists the radar destination as a pair of fixed point
// integers under a named preference store.
package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/relabs-tech/inertial_radar/internal/geo"
)

// Preference keys, shared by every backend.
const (
	KeyLatitude  = "latitude"
	KeyLongitude = "longitude"
)

// Store holds at most one destination. Load reports ok=false when no
// destination was ever saved (or it was cleared); that is not an error.
type Store interface {
	Load(ctx context.Context) (p geo.E6, ok bool, err error)
	Save(ctx context.Context, p geo.E6) error
	Clear(ctx context.Context) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend   string // "file" or "redis"
	Name      string // preference store name
	Dir       string // file backend directory
	RedisAddr string
}

// Open returns the configured backend.
func Open(opts Options) (Store, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("store: preference store name is required")
	}
	switch opts.Backend {
	case "", "file":
		return NewFileStore(opts.Dir, opts.Name), nil
	case "redis":
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("store: REDIS_ADDR is required for the redis backend")
		}
		return NewRedisStore(redis.NewClient(&redis.Options{Addr: opts.RedisAddr}), opts.Name), nil
	default:
		return nil, fmt.Errorf("store: unknown backend %q", opts.Backend)
	}
}
