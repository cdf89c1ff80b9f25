// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and manages the schema.

# Connections

Open selects a gorm dialector by database type:

	gdb, err := db.Open(ctx, "postgres", "postgres://...", false)
	gdb, err := db.Open(ctx, "sqlite", "file:campus.db", false)

Postgres uses the lib/pq driver and sqlite uses the pure-Go modernc driver,
so the binary builds without cgo.

# Schema Creation

CreateSchema migrates every model:

	if err := db.CreateSchema(gdb); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times.

# Tables

  - users: unique email, unique student_id (nullable)
  - elections: window, flags, JSON eligibility filters, total_votes
  - candidates: unique (election_id, student_id), vote_count
  - ballots: unique (voter_id, election_id)
  - result_snapshots: frozen tallies with an inputs hash

# Relationships

	election 1──* candidate
	election 1──* ballot
	election 1──* result_snapshot
	user     1──* ballot

Election deletion cascades in application code inside a transaction.

# Constraint Errors

IsUniqueViolation recognizes duplicate-key errors from both drivers. The
voting protocol relies on it to turn a lost insert race into an
"already voted" failure.
*/
package db
