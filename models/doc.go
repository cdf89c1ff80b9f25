// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines persisted, request, and response types for the API.

# Domain Types

Persisted with gorm, keyed by UUIDs assigned in BeforeCreate hooks:

  - User: identity, role, verification and has-voted flags
  - Election: scheduling window, lifecycle flags, eligibility filters, total_votes counter
  - Candidate: contested position, approval flag, vote_count counter
  - Ballot: one immutable vote, unique per (voter_id, election_id)
  - ResultSnapshot: frozen tally written on election completion

Election.AllowedDepartments and Election.AllowedYears are JSON columns. An
empty list is a wildcard.

# Counters

Candidate.VoteCount and Election.TotalVotes are denormalized caches of the
ballot ledger. They are rebuilt from ballots by reconciliation.

# Request Types

  - RegisterRequest, LoginRequest, UpdateProfileRequest
  - CreateElectionRequest, UpdateElectionRequest
  - CreateCandidateRequest, NominateRequest, UpdateCandidateRequest
  - CastVoteRequest

Update requests use pointer fields; nil means "leave unchanged".

# Response Types

  - AuthResponse: token, user
  - CastVoteResponse: ballot_id, message
  - TallyResult: election summary, counted_votes, ranked results
  - CompleteElectionResponse: election, snapshot
  - ErrorResponse: error, code, message

# Constants

Roles:

	RoleStudent = "student"
	RoleAdmin   = "admin"
*/
package models
