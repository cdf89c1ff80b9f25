// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/testutil"
)

func TestEligible(t *testing.T) {
	now := time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC)
	base := models.Election{
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
		IsActive:  true,
	}
	cs2 := &models.User{Department: "CS", Year: 2}
	ee4 := &models.User{Department: "EE", Year: 4}

	tests := []struct {
		name   string
		mutate func(*models.Election)
		voter  *models.User
		want   bool
	}{
		{"open to all", nil, cs2, true},
		{"open to all other dept", nil, ee4, true},
		{"inactive", func(e *models.Election) { e.IsActive = false }, cs2, false},
		{"completed", func(e *models.Election) { e.IsCompleted = true }, cs2, false},
		{"not started", func(e *models.Election) { e.StartDate = now.Add(time.Minute) }, cs2, false},
		{"ended", func(e *models.Election) { e.EndDate = now.Add(-time.Minute) }, cs2, false},
		{"starts now", func(e *models.Election) { e.StartDate = now }, cs2, true},
		{"ends now", func(e *models.Election) { e.EndDate = now }, cs2, true},
		{"dept match", func(e *models.Election) { e.AllowedDepartments = []string{"CS"} }, cs2, true},
		{"dept miss", func(e *models.Election) { e.AllowedDepartments = []string{"CS"} }, ee4, false},
		{"year match", func(e *models.Election) { e.AllowedYears = []int{4} }, ee4, true},
		{"year miss", func(e *models.Election) { e.AllowedYears = []int{4} }, cs2, false},
		{"both match", func(e *models.Election) {
			e.AllowedDepartments = []string{"EE", "ME"}
			e.AllowedYears = []int{3, 4}
		}, ee4, true},
		{"dept ok year miss", func(e *models.Election) {
			e.AllowedDepartments = []string{"CS"}
			e.AllowedYears = []int{4}
		}, cs2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := base
			if tt.mutate != nil {
				tt.mutate(&e)
			}
			assert.Equal(t, tt.want, Eligible(&e, tt.voter, now))
		})
	}
}

func TestActiveElections(t *testing.T) {
	gdb, svc := newTestService(t)
	ctx := context.Background()

	everyone := testutil.CreateTestElection(t, gdb, func(e *models.Election) { e.Title = "everyone" })
	csOnly := testutil.CreateTestElection(t, gdb, func(e *models.Election) {
		e.Title = "cs"
		e.AllowedDepartments = []string{"CS"}
	})
	seniors := testutil.CreateTestElection(t, gdb, func(e *models.Election) {
		e.Title = "seniors"
		e.AllowedYears = []int{4}
	})
	testutil.CreateTestElection(t, gdb, func(e *models.Election) { e.IsActive = false })
	testutil.CreateTestElection(t, gdb, func(e *models.Election) { e.IsCompleted = true })
	testutil.CreateTestElection(t, gdb, func(e *models.Election) { e.EndDate = time.Now().UTC().Add(-time.Minute) })

	csSophomore := testutil.CreateTestUser(t, gdb)
	eeSenior := testutil.CreateTestUser(t, gdb, func(u *models.User) {
		u.Department = "EE"
		u.Year = 4
	})

	ids := func(es []*models.Election) []uuid.UUID {
		out := make([]uuid.UUID, len(es))
		for i, e := range es {
			out[i] = e.ID
		}
		return out
	}

	got, err := svc.ActiveElections(ctx, testutil.Principal(csSophomore))
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{everyone.ID, csOnly.ID}, ids(got))

	got, err = svc.ActiveElections(ctx, testutil.Principal(eeSenior))
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{everyone.ID, seniors.ID}, ids(got))
}
