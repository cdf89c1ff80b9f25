// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/campus-vote/apperr"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/testutil"
)

// TestConcurrentDuplicateVotes fires many simultaneous ballots from one
// voter; exactly one may land.
func TestConcurrentDuplicateVotes(t *testing.T) {
	gdb, svc := newTestService(t)

	election := testutil.CreateTestElection(t, gdb)
	candidate := testutil.CreateTestCandidate(t, gdb, election.ID, "Alice")
	voter := testutil.CreateTestUser(t, gdb)
	p := testutil.Principal(voter)

	const n = 20
	var wg sync.WaitGroup
	var successes, duplicates, other atomic.Int32
	start := make(chan struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.CastVote(context.Background(), p, CastVoteInput{ElectionID: election.ID, CandidateID: candidate.ID})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, apperr.ErrAlreadyVoted):
				duplicates.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
				other.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(n-1), duplicates.Load())
	assert.Equal(t, int32(0), other.Load())

	var ballots int64
	require.NoError(t, gdb.Model(&models.Ballot{}).Where("voter_id = ?", voter.ID).Count(&ballots).Error)
	assert.Equal(t, int64(1), ballots)
	assert.Equal(t, int64(1), reload[models.Candidate](t, gdb, candidate.ID).VoteCount)
	assert.Equal(t, int64(1), reload[models.Election](t, gdb, election.ID).TotalVotes)
}

// TestConcurrentDistinctVoters checks that counters stay exact when many
// voters cast at once.
func TestConcurrentDistinctVoters(t *testing.T) {
	gdb, svc := newTestService(t)

	election := testutil.CreateTestElection(t, gdb)
	alice := testutil.CreateTestCandidate(t, gdb, election.ID, "Alice")
	bob := testutil.CreateTestCandidate(t, gdb, election.ID, "Bob")

	const n = 12
	voters := make([]*models.User, n)
	for i := range voters {
		voters[i] = testutil.CreateTestUser(t, gdb)
	}

	var wg sync.WaitGroup
	var failures atomic.Int32
	for i, v := range voters {
		target := alice
		if i%3 == 0 {
			target = bob
		}
		wg.Add(1)
		go func(v *models.User, c *models.Candidate) {
			defer wg.Done()
			if _, err := svc.CastVote(context.Background(), testutil.Principal(v), CastVoteInput{ElectionID: election.ID, CandidateID: c.ID}); err != nil {
				t.Errorf("vote failed: %v", err)
				failures.Add(1)
			}
		}(v, target)
	}
	wg.Wait()

	require.Equal(t, int32(0), failures.Load())
	assert.Equal(t, int64(8), reload[models.Candidate](t, gdb, alice.ID).VoteCount)
	assert.Equal(t, int64(4), reload[models.Candidate](t, gdb, bob.ID).VoteCount)
	assert.Equal(t, int64(n), reload[models.Election](t, gdb, election.ID).TotalVotes)
}
