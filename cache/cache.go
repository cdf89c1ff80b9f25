// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/danielhkuo/campus-vote/logger"
	"github.com/danielhkuo/campus-vote/models"
)

// TallyCache stores computed tallies of completed elections. A completed
// election receives no more ballots, so its tally only changes through
// reconciliation or deletion, which invalidate it.
type TallyCache interface {
	Get(ctx context.Context, electionID uuid.UUID) (*models.TallyResult, bool, error)
	Set(ctx context.Context, electionID uuid.UUID, result *models.TallyResult) error
	Invalidate(ctx context.Context, electionID uuid.UUID) error
}

const keyPrefix = "campus-vote:tally:"

type RedisTallyCache struct {
	rdb *goredis.Client
	ttl time.Duration
	log *logger.Logger
}

// Dial connects to redis and verifies the connection with a ping.
func Dial(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func NewRedisTallyCache(rdb *goredis.Client, ttl time.Duration, log *logger.Logger) *RedisTallyCache {
	return &RedisTallyCache{rdb: rdb, ttl: ttl, log: log.With("service", "RedisTallyCache")}
}

func key(electionID uuid.UUID) string {
	return keyPrefix + electionID.String()
}

func (c *RedisTallyCache) Get(ctx context.Context, electionID uuid.UUID) (*models.TallyResult, bool, error) {
	raw, err := c.rdb.Get(ctx, key(electionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var result models.TallyResult
	if err := json.Unmarshal(raw, &result); err != nil {
		// Drop entries written by an incompatible version.
		c.log.Warn("discarding unreadable tally cache entry", "election_id", electionID, "error", err)
		_ = c.rdb.Del(ctx, key(electionID)).Err()
		return nil, false, nil
	}
	return &result, true, nil
}

func (c *RedisTallyCache) Set(ctx context.Context, electionID uuid.UUID, result *models.TallyResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, key(electionID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisTallyCache) Invalidate(ctx context.Context, electionID uuid.UUID) error {
	if err := c.rdb.Del(ctx, key(electionID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (c *RedisTallyCache) Close() error {
	return c.rdb.Close()
}

// NopTallyCache never stores anything. Used when no redis address is configured.
type NopTallyCache struct{}

func (NopTallyCache) Get(context.Context, uuid.UUID) (*models.TallyResult, bool, error) {
	return nil, false, nil
}

func (NopTallyCache) Set(context.Context, uuid.UUID, *models.TallyResult) error { return nil }

func (NopTallyCache) Invalidate(context.Context, uuid.UUID) error { return nil }
