// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains gin handlers for the campus voting API.

# Handler Types

Each handler is a struct over the service it fronts:

  - AuthHandler: registration, login, profile, user verification
  - ElectionHandler: election lifecycle, eligibility listing, reconciliation
  - CandidateHandler: nomination, approval and candidate management
  - VoteHandler: casting, history, results and ledger reports

Handlers decode the request, read the principal placed by middleware.Auth,
call one service method and write its result. Domain errors go through
middleware.WriteError, so status mapping lives in one place.

# Election Lifecycle

Elections start inactive. Admins toggle them active, and complete them once
voting is over:

	POST /api/elections               → Create
	PUT  /api/elections/:id/toggle    → Toggle
	PUT  /api/elections/:id/complete  → Complete (writes a result snapshot)

Completed elections are frozen.

# Voting Flow

	GET  /api/elections/active           → Active (filtered by department and year)
	GET  /api/candidates/election/:id    → ListByElection
	POST /api/votes/cast                 → Cast

Cast records a salted hash of the client IP and the User-Agent with the
ballot. Neither affects whether the vote is accepted.

# Results

	GET /api/votes/results/:electionId

Students get 403 results_not_ready until the election is completed; admins
see live tallies.
*/
package handlers
