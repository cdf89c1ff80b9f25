// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielhkuo/campus-vote/apperr"
	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/models"
)

// Reconcile rebuilds an election's candidate vote counts and total from the
// ballot ledger in one transaction and reports what drifted.
func (s *Service) Reconcile(ctx context.Context, p auth.Principal, electionID uuid.UUID) (*models.ReconcileReport, error) {
	if err := auth.Require(p, auth.CapManageElections); err != nil {
		return nil, err
	}

	report := &models.ReconcileReport{ElectionID: electionID, Candidates: []models.CandidateDrift{}}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		election, err := s.elections.GetByID(ctx, tx, electionID)
		if err != nil {
			return notFound(err, apperr.ErrElectionNotFound, "load election")
		}
		candidates, err := s.candidates.ListByElection(ctx, tx, electionID)
		if err != nil {
			return fmt.Errorf("list candidates: %w", err)
		}
		counts, err := s.ballots.CountsPerCandidate(ctx, tx, electionID)
		if err != nil {
			return fmt.Errorf("count ballots: %w", err)
		}

		for _, c := range candidates {
			counted := counts[c.ID]
			if counted == c.VoteCount {
				continue
			}
			if err := s.candidates.SetVoteCount(ctx, tx, c.ID, counted); err != nil {
				return fmt.Errorf("set vote count: %w", err)
			}
			report.Candidates = append(report.Candidates, models.CandidateDrift{
				CandidateID: c.ID,
				Stored:      c.VoteCount,
				Counted:     counted,
			})
		}

		total, err := s.ballots.CountByElection(ctx, tx, electionID)
		if err != nil {
			return fmt.Errorf("count ballots: %w", err)
		}
		report.StoredTotalVotes = election.TotalVotes
		report.CountedTotalVotes = total
		if total != election.TotalVotes {
			if err := s.elections.SetTotalVotes(ctx, tx, electionID, total); err != nil {
				return fmt.Errorf("set total votes: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, electionID)
	if report.Drifted() {
		s.log.Warn("vote counters reconciled", "election_id", electionID,
			"stored_total", report.StoredTotalVotes, "counted_total", report.CountedTotalVotes,
			"candidates_fixed", len(report.Candidates))
	} else {
		s.log.Info("vote counters consistent", "election_id", electionID)
	}
	return report, nil
}
