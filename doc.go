// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the campus-vote API server.

campus-vote runs student elections: admins create elections and approve
candidates, verified students cast one ballot per election, and results are
published once an election is completed.

# Starting the Server

The server reads flags, then environment variables, then an optional .env
file:

	JWT_SECRET=... IP_HASH_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -jwt-secret ... -ip-salt ...

# Configuration

Required settings:

  - JWT_SECRET (-jwt-secret): HMAC key for session tokens
  - IP_HASH_SALT (-ip-salt): Salt for hashing voter IP addresses

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): DSN (default: file:campus_vote.db; required for postgres)
  - REDIS_ADDR (-redis): Enables the completed-results cache
  - CACHE_TTL (-cache-ttl), TOKEN_TTL (-token-ttl)
  - CORS_ORIGINS (-cors): Comma-separated origin list
  - LOG_MODE (-log): development, production or test
  - ALLOW_ADMIN_SIGNUP (-allow-admin-signup)
  - OTEL_ENABLED, OTEL_EXPORTER_OTLP_ENDPOINT: Tracing

# Architecture

  - handlers, router, middleware: gin HTTP layer
  - services: accounts, elections, candidates
  - voting: ballot casting, tallies, eligibility, ledger reports
  - repos, db, models: gorm storage
  - auth: passwords, JWTs, roles and capabilities
  - cache: redis results cache
  - tracing, logger, cliparse: ambient plumbing

SIGINT and SIGTERM trigger a graceful shutdown.
*/
package main
