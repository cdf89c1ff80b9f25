// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/danielhkuo/campus-vote/apperr"
	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/models"
)

// Eligible reports whether voter may currently see and take part in
// election. Empty department or year lists match everyone.
func Eligible(election *models.Election, voter *models.User, now time.Time) bool {
	if !election.IsActive || election.IsCompleted || !election.InWindow(now) {
		return false
	}
	if len(election.AllowedDepartments) > 0 && !slices.Contains(election.AllowedDepartments, voter.Department) {
		return false
	}
	if len(election.AllowedYears) > 0 && !slices.Contains(election.AllowedYears, voter.Year) {
		return false
	}
	return true
}

// ActiveElections lists the elections currently open to the caller.
func (s *Service) ActiveElections(ctx context.Context, p auth.Principal) ([]*models.Election, error) {
	if err := auth.Require(p, auth.CapViewActive); err != nil {
		return nil, err
	}

	voter, err := s.users.GetByID(ctx, nil, p.UserID)
	if err != nil {
		return nil, notFound(err, apperr.ErrVoterNotFound, "load voter")
	}

	running, err := s.elections.ListRunning(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list running elections: %w", err)
	}

	now := s.now().UTC()
	open := make([]*models.Election, 0, len(running))
	for _, e := range running {
		if Eligible(e, voter, now) {
			open = append(open, e)
		}
	}
	return open, nil
}
