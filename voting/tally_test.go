// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/campus-vote/apperr"
	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/testutil"
)

func candidatesWith(counts ...int64) []*models.Candidate {
	out := make([]*models.Candidate, len(counts))
	for i, c := range counts {
		out[i] = &models.Candidate{ID: uuid.New(), Name: string(rune('A' + i)), VoteCount: c}
	}
	return out
}

func TestComputeTallyPercentagesSumTo100(t *testing.T) {
	tests := []struct {
		name   string
		counts []int64
	}{
		{"single", []int64{5}},
		{"even split", []int64{1, 1}},
		{"thirds", []int64{1, 1, 1}},
		{"skewed", []int64{7, 2, 1}},
		{"sevenths", []int64{1, 2, 4}},
		{"with zero", []int64{3, 0, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeTally(&models.Election{}, candidatesWith(tt.counts...))

			var total float64
			for _, r := range result.Results {
				total += r.Percentage
			}
			assert.InDelta(t, 100, total, 0.01*float64(len(tt.counts)))
		})
	}
}

func TestComputeTallyZeroVotes(t *testing.T) {
	result := ComputeTally(&models.Election{}, candidatesWith(0, 0, 0))

	assert.Equal(t, int64(0), result.CountedVotes)
	for _, r := range result.Results {
		assert.Zero(t, r.Percentage)
	}

	empty := ComputeTally(&models.Election{}, nil)
	assert.Empty(t, empty.Results)
}

func TestComputeTallyRanksAndTies(t *testing.T) {
	cands := candidatesWith(2, 5, 2, 9, 5)
	result := ComputeTally(&models.Election{TotalVotes: 23}, cands)

	// Ties keep insertion order: B before E, A before C.
	names := make([]string, len(result.Results))
	for i, r := range result.Results {
		names[i] = r.Name
		assert.Equal(t, i+1, r.Rank)
	}
	assert.Equal(t, []string{"D", "B", "E", "A", "C"}, names)

	assert.Equal(t, int64(23), result.CountedVotes)
	assert.Equal(t, int64(23), result.Election.TotalVotes)
	assert.Equal(t, 39.13, result.Results[0].Percentage)
	assert.Equal(t, 8.7, result.Results[4].Percentage)

	// Input order is untouched.
	assert.Equal(t, "A", cands[0].Name)
}

func TestComputeTallyReportsCounterDrift(t *testing.T) {
	result := ComputeTally(&models.Election{TotalVotes: 10}, candidatesWith(3, 4))

	assert.Equal(t, int64(10), result.Election.TotalVotes)
	assert.Equal(t, int64(7), result.CountedVotes)
}

func TestTallyVisibility(t *testing.T) {
	gdb, svc := newTestService(t)
	ctx := context.Background()

	running := testutil.CreateTestElection(t, gdb)
	completed := testutil.CreateTestElection(t, gdb, func(e *models.Election) {
		e.IsActive = false
		e.IsCompleted = true
	})
	testutil.CreateTestCandidate(t, gdb, running.ID, "Alice")
	testutil.CreateTestCandidate(t, gdb, completed.ID, "Bob")

	student := testutil.Principal(testutil.CreateTestUser(t, gdb))
	admin := testutil.Principal(testutil.CreateTestAdmin(t, gdb))

	tests := []struct {
		name      string
		principal auth.Principal
		election  uuid.UUID
		want      error
	}{
		{"student running", student, running.ID, apperr.ErrResultsNotReady},
		{"admin running", admin, running.ID, nil},
		{"student completed", student, completed.ID, nil},
		{"admin completed", admin, completed.ID, nil},
		{"missing election", admin, uuid.New(), apperr.ErrElectionNotFound},
		{"anonymous", auth.Principal{}, completed.ID, apperr.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Tally(ctx, tt.principal, tt.election)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.election, result.Election.ID)
			assert.Len(t, result.Results, 1)
		})
	}
}

func TestTallyExcludesUnapproved(t *testing.T) {
	gdb, svc := newTestService(t)
	election := testutil.CreateTestElection(t, gdb)
	base := time.Now().UTC().Add(-time.Hour)
	testutil.CreateTestCandidate(t, gdb, election.ID, "Alice", func(c *models.Candidate) { c.VoteCount = 3; c.CreatedAt = base })
	testutil.CreateTestCandidate(t, gdb, election.ID, "Bob", func(c *models.Candidate) { c.VoteCount = 1; c.CreatedAt = base.Add(time.Second) })
	testutil.CreateTestCandidate(t, gdb, election.ID, "Pending", func(c *models.Candidate) { c.VoteCount = 50; c.IsApproved = false })

	admin := testutil.Principal(testutil.CreateTestAdmin(t, gdb))
	result, err := svc.Tally(context.Background(), admin, election.ID)
	require.NoError(t, err)

	require.Len(t, result.Results, 2)
	assert.Equal(t, "Alice", result.Results[0].Name)
	assert.Equal(t, 75.0, result.Results[0].Percentage)
	assert.Equal(t, 25.0, result.Results[1].Percentage)
	assert.Equal(t, int64(4), result.CountedVotes)
}

// memoryCache is an in-process TallyCache for exercising cache paths.
type memoryCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*models.TallyResult
	sets    int
}

func (m *memoryCache) Get(_ context.Context, id uuid.UUID) (*models.TallyResult, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.entries[id]
	return r, ok, nil
}

func (m *memoryCache) Set(_ context.Context, id uuid.UUID, r *models.TallyResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = r
	m.sets++
	return nil
}

func (m *memoryCache) Invalidate(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func TestTallyCachesCompletedElectionsOnly(t *testing.T) {
	gdb, svc := newTestService(t)
	mc := &memoryCache{entries: map[uuid.UUID]*models.TallyResult{}}
	svc.cache = mc
	ctx := context.Background()

	running := testutil.CreateTestElection(t, gdb)
	completed := testutil.CreateTestElection(t, gdb, func(e *models.Election) { e.IsCompleted = true })
	testutil.CreateTestCandidate(t, gdb, completed.ID, "Alice", func(c *models.Candidate) { c.VoteCount = 2 })
	admin := testutil.Principal(testutil.CreateTestAdmin(t, gdb))

	_, err := svc.Tally(ctx, admin, running.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, mc.sets)

	first, err := svc.Tally(ctx, admin, completed.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, mc.sets)

	second, err := svc.Tally(ctx, admin, completed.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, mc.sets)
	assert.Same(t, first, second)

	// Reconciliation drops the cached entry.
	_, err = svc.Reconcile(ctx, admin, completed.ID)
	require.NoError(t, err)
	_, ok, _ := mc.Get(ctx, completed.ID)
	assert.False(t, ok)
}
