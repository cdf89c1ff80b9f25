// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/campus-vote/models"
)

func TestOpenRejectsUnknownType(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "root@/x", true)
	assert.Error(t, err)
}

func TestCreateSchemaIsIdempotent(t *testing.T) {
	gdb, err := Open(context.Background(), TypeSQLite, "file:schema_test?mode=memory&cache=shared", true)
	require.NoError(t, err)
	defer Close(gdb)

	require.NoError(t, CreateSchema(gdb))
	require.NoError(t, CreateSchema(gdb))

	for _, m := range models.AllModels() {
		assert.True(t, gdb.Migrator().HasTable(m))
	}
	assert.True(t, gdb.Migrator().HasIndex(&models.Ballot{}, "idx_ballot_voter_election"))
	assert.True(t, gdb.Migrator().HasIndex(&models.Candidate{}, "idx_candidate_election_student"))

	require.NoError(t, DropSchema(gdb))
	assert.False(t, gdb.Migrator().HasTable(&models.Ballot{}))
}
