// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags and Environment Variables

	-p                   PORT                default 3318
	-d                   DATABASE_URL        required for postgres, default file:campus_vote.db
	-t                   DATABASE_TYPE       sqlite (default) or postgres
	-jwt-secret          JWT_SECRET          required
	-ip-salt             IP_HASH_SALT        required
	-redis               REDIS_ADDR          optional results cache
	-cors                CORS_ORIGINS        comma-separated
	-log                 LOG_MODE            development, production or test
	-token-ttl           TOKEN_TTL           default 720h
	-cache-ttl           CACHE_TTL           default 10m
	-allow-admin-signup  ALLOW_ADMIN_SIGNUP  default false

CLI flags take precedence over environment variables. Before parsing, an
optional .env file (or the file named by ENV_FILE) is loaded with godotenv;
it never overrides variables already set in the environment.
*/
package cliparse
