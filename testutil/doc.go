// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package testutil provides the test database, fixtures and HTTP helpers.

SetupTestDB returns a migrated database. It is an in-memory sqlite database
private to the calling test unless TEST_DATABASE_URL names a postgres
database, in which case every table is dropped and recreated first.

Fixtures insert rows directly and default to the happy path: a verified
student, an active election whose window contains now, an approved
candidate. Mutators adjust them:

	voter := testutil.CreateTestUser(t, gdb, func(u *models.User) { u.IsVerified = false })
*/
package testutil
