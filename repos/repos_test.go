// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package repos_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/danielhkuo/campus-vote/db"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/repos"
	"github.com/danielhkuo/campus-vote/testutil"
)

func setup(t *testing.T) (*gorm.DB, *repos.Repos) {
	gdb := testutil.SetupTestDB(t)
	return gdb, repos.New(gdb)
}

func TestBallotUniquePerVoterAndElection(t *testing.T) {
	gdb, r := setup(t)
	ctx := context.Background()

	voter := testutil.CreateTestUser(t, gdb)
	election := testutil.CreateTestElection(t, gdb)
	alice := testutil.CreateTestCandidate(t, gdb, election.ID, "Alice")
	bob := testutil.CreateTestCandidate(t, gdb, election.ID, "Bob")

	first := &models.Ballot{VoterID: voter.ID, ElectionID: election.ID, CandidateID: alice.ID, Position: "President", VotedAt: time.Now()}
	require.NoError(t, r.Ballots.Create(ctx, nil, first))

	second := &models.Ballot{VoterID: voter.ID, ElectionID: election.ID, CandidateID: bob.ID, Position: "President", VotedAt: time.Now()}
	err := r.Ballots.Create(ctx, nil, second)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err), "expected unique violation, got %v", err)

	exists, err := r.Ballots.Exists(ctx, nil, voter.ID, election.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	// Same voter, different election is fine.
	other := testutil.CreateTestElection(t, gdb)
	carol := testutil.CreateTestCandidate(t, gdb, other.ID, "Carol")
	third := &models.Ballot{VoterID: voter.ID, ElectionID: other.ID, CandidateID: carol.ID, Position: "President", VotedAt: time.Now()}
	assert.NoError(t, r.Ballots.Create(ctx, nil, third))
}

func TestIsUniqueViolationIgnoresOtherErrors(t *testing.T) {
	assert.False(t, db.IsUniqueViolation(nil))
	assert.False(t, db.IsUniqueViolation(gorm.ErrRecordNotFound))
	assert.True(t, db.IsUniqueViolation(gorm.ErrDuplicatedKey))
}

func TestCountsPerCandidateAndPosition(t *testing.T) {
	gdb, r := setup(t)
	ctx := context.Background()

	election := testutil.CreateTestElection(t, gdb)
	alice := testutil.CreateTestCandidate(t, gdb, election.ID, "Alice")
	bob := testutil.CreateTestCandidate(t, gdb, election.ID, "Bob")
	treasurer := testutil.CreateTestCandidate(t, gdb, election.ID, "Tess", func(c *models.Candidate) { c.Position = "Treasurer" })

	for i := 0; i < 3; i++ {
		testutil.CreateTestBallot(t, gdb, uuid.New(), alice)
	}
	testutil.CreateTestBallot(t, gdb, uuid.New(), bob)
	testutil.CreateTestBallot(t, gdb, uuid.New(), treasurer)

	counts, err := r.Ballots.CountsPerCandidate(ctx, nil, election.ID)
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]int64{alice.ID: 3, bob.ID: 1, treasurer.ID: 1}, counts)

	byPosition, err := r.Ballots.CountsPerPosition(ctx, nil, election.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.PositionCount{{Position: "President", Votes: 4}, {Position: "Treasurer", Votes: 1}}, byPosition)

	total, err := r.Ballots.CountByElection(ctx, nil, election.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
}

func TestCounterIncrements(t *testing.T) {
	gdb, r := setup(t)
	ctx := context.Background()

	election := testutil.CreateTestElection(t, gdb)
	alice := testutil.CreateTestCandidate(t, gdb, election.ID, "Alice")

	require.NoError(t, r.Candidates.IncrementVoteCount(ctx, nil, alice.ID))
	require.NoError(t, r.Candidates.IncrementVoteCount(ctx, nil, alice.ID))
	require.NoError(t, r.Elections.IncrementTotalVotes(ctx, nil, election.ID))

	got, err := r.Candidates.GetByID(ctx, nil, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.VoteCount)

	e, err := r.Elections.GetByID(ctx, nil, election.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.TotalVotes)

	assert.ErrorIs(t, r.Candidates.IncrementVoteCount(ctx, nil, uuid.New()), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, r.Elections.IncrementTotalVotes(ctx, nil, uuid.New()), gorm.ErrRecordNotFound)
}

func TestListRunningSkipsInactiveAndCompleted(t *testing.T) {
	gdb, r := setup(t)
	ctx := context.Background()

	running := testutil.CreateTestElection(t, gdb)
	testutil.CreateTestElection(t, gdb, func(e *models.Election) { e.IsActive = false })
	testutil.CreateTestElection(t, gdb, func(e *models.Election) { e.IsCompleted = true })

	got, err := r.Elections.ListRunning(ctx, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, running.ID, got[0].ID)
}

func TestElectionFiltersRoundTrip(t *testing.T) {
	gdb, r := setup(t)
	ctx := context.Background()

	restricted := testutil.CreateTestElection(t, gdb, func(e *models.Election) {
		e.AllowedDepartments = []string{"CS", "EE"}
		e.AllowedYears = []int{3, 4}
	})
	open := testutil.CreateTestElection(t, gdb)

	got, err := r.Elections.GetByID(ctx, nil, restricted.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"CS", "EE"}, []string(got.AllowedDepartments))
	assert.Equal(t, []int{3, 4}, []int(got.AllowedYears))

	got, err = r.Elections.GetByID(ctx, nil, open.ID)
	require.NoError(t, err)
	assert.Empty(t, got.AllowedDepartments)
	assert.Empty(t, got.AllowedYears)
}

func TestElectionWritesSkipCompleted(t *testing.T) {
	gdb, r := setup(t)
	ctx := context.Background()

	election := testutil.CreateTestElection(t, gdb)
	stale, err := r.Elections.GetByID(ctx, nil, election.ID)
	require.NoError(t, err)

	require.NoError(t, r.Elections.MarkCompleted(ctx, nil, election.ID))
	assert.True(t, db.IsNotFound(r.Elections.MarkCompleted(ctx, nil, election.ID)))

	// A copy loaded before completion cannot reopen the election.
	stale.Title = "Reopened"
	stale.IsActive = true
	assert.True(t, db.IsNotFound(r.Elections.Update(ctx, nil, stale)))

	got, err := r.Elections.GetByID(ctx, nil, election.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.False(t, got.IsActive)
	assert.Equal(t, election.Title, got.Title)
}

func TestElectionUpdateLeavesCompletionAlone(t *testing.T) {
	gdb, r := setup(t)
	ctx := context.Background()

	election := testutil.CreateTestElection(t, gdb, func(e *models.Election) { e.TotalVotes = 4 })
	stale, err := r.Elections.GetByID(ctx, nil, election.ID)
	require.NoError(t, err)
	stale.IsCompleted = true
	stale.TotalVotes = 0
	stale.Description = "Edited"
	require.NoError(t, r.Elections.Update(ctx, nil, stale))

	got, err := r.Elections.GetByID(ctx, nil, election.ID)
	require.NoError(t, err)
	assert.False(t, got.IsCompleted)
	assert.Equal(t, int64(4), got.TotalVotes)
	assert.Equal(t, "Edited", got.Description)
}

func TestApprovedListingOrders(t *testing.T) {
	gdb, r := setup(t)
	ctx := context.Background()

	election := testutil.CreateTestElection(t, gdb)
	base := time.Now().UTC().Add(-time.Minute)
	zed := testutil.CreateTestCandidate(t, gdb, election.ID, "Zed", func(c *models.Candidate) { c.CreatedAt = base })
	amy := testutil.CreateTestCandidate(t, gdb, election.ID, "Amy", func(c *models.Candidate) { c.CreatedAt = base.Add(time.Second) })
	testutil.CreateTestCandidate(t, gdb, election.ID, "Pending", func(c *models.Candidate) { c.IsApproved = false })

	inserted, err := r.Candidates.ListApproved(ctx, nil, election.ID)
	require.NoError(t, err)
	require.Len(t, inserted, 2)
	assert.Equal(t, []uuid.UUID{zed.ID, amy.ID}, []uuid.UUID{inserted[0].ID, inserted[1].ID})

	byName, err := r.Candidates.ListApprovedByName(ctx, nil, election.ID)
	require.NoError(t, err)
	require.Len(t, byName, 2)
	assert.Equal(t, "Amy", byName[0].Name)

	all, err := r.Candidates.ListByElection(ctx, nil, election.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	approved, err := r.Candidates.CountApproved(ctx, nil, election.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), approved)
}

func TestUserLookups(t *testing.T) {
	gdb, r := setup(t)
	ctx := context.Background()

	student := testutil.CreateTestUser(t, gdb)
	admin := testutil.CreateTestAdmin(t, gdb)

	got, err := r.Users.GetByStudentID(ctx, nil, *student.StudentID)
	require.NoError(t, err)
	assert.Equal(t, student.ID, got.ID)

	exists, err := r.Users.EmailExists(ctx, nil, admin.Email)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = r.Users.GetByID(ctx, nil, uuid.New())
	assert.True(t, db.IsNotFound(err))

	require.NoError(t, r.Users.MarkVoted(ctx, nil, student.ID))
	require.NoError(t, r.Users.MarkVoted(ctx, nil, student.ID))
	got, err = r.Users.GetByID(ctx, nil, student.ID)
	require.NoError(t, err)
	assert.True(t, got.HasVoted)

	// Two users without a student ID do not collide.
	testutil.CreateTestAdmin(t, gdb)
}
