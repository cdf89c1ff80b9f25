// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides gin middleware and response helpers.

# Request Logging

	r.Use(middleware.RequestLogger(log))

Logs method, route, status, duration, request ID and user ID. 5xx responses
log at error level, 4xx at warn, the rest at info.

# CORS

	r.Use(middleware.CORS(cfg.CORSOrigins))

An empty origin list allows every origin without credentials.

# Authentication

	api := r.Group("/api", middleware.Auth(tokens, log))
	admin := api.Group("", middleware.RequireCapability(auth.CapManageElections, log))

Auth parses the bearer JWT and stores the principal; handlers read it with
GetPrincipal. Services check capabilities again on entry.

# Errors

WriteError maps apperr kinds to status codes:

	Invalid, Precondition  400
	Unauthorized           401
	Forbidden              403 (also results_not_ready)
	NotFound               404
	Conflict               409
	anything else          500, generic message
*/
package middleware
