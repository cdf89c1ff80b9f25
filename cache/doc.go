// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package cache keeps computed tallies of completed elections in redis.
//
// Only completed elections are cached; live tallies are always computed
// from the database. The cache is optional: without REDIS_ADDR the server
// uses NopTallyCache.
package cache
