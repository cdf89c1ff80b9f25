// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router wires services and handlers into a gin engine.

	r := router.NewRouter(gdb, cfg, log, tallyCache)

Every request passes through panic recovery, an otelgin span, the request
logger and CORS. Everything under /api except register and login needs a
bearer token; admin routes are also gated on a capability.

# Routes

	GET    /health
	GET    /

	POST   /api/auth/register
	POST   /api/auth/login
	GET    /api/auth/profile
	PUT    /api/auth/profile
	GET    /api/auth/users                      admin
	PUT    /api/auth/verify/:userId             admin

	GET    /api/elections/active
	GET    /api/elections/:id
	GET    /api/elections                       admin
	POST   /api/elections                       admin
	PUT    /api/elections/:id                   admin
	PUT    /api/elections/:id/toggle            admin
	PUT    /api/elections/:id/complete          admin
	DELETE /api/elections/:id                   admin
	POST   /api/elections/:id/reconcile         admin
	GET    /api/elections/:id/snapshot          admin

	GET    /api/candidates/election/:electionId
	GET    /api/candidates/:id
	POST   /api/candidates/nominate
	GET    /api/candidates                      admin
	POST   /api/candidates                      admin
	PUT    /api/candidates/:id                  admin
	PUT    /api/candidates/:id/approve          admin
	DELETE /api/candidates/:id                  admin

	POST   /api/votes/cast
	GET    /api/votes/history
	GET    /api/votes/results/:electionId
	GET    /api/votes                           admin
	GET    /api/votes/statistics/:electionId    admin
*/
package router
