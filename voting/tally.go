// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/danielhkuo/campus-vote/apperr"
	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/models"
)

// Tally returns ranked results for an election. Results of an uncompleted
// election are visible only to principals allowed to see live results.
func (s *Service) Tally(ctx context.Context, p auth.Principal, electionID uuid.UUID) (result *models.TallyResult, err error) {
	ctx, span := s.tracer.Start(ctx, "voting.Tally", trace.WithAttributes(
		attribute.String("election.id", electionID.String()),
	))
	defer func() { endSpan(span, err) }()

	if err := auth.Require(p, auth.CapViewResults); err != nil {
		return nil, err
	}

	election, err := s.elections.GetByID(ctx, nil, electionID)
	if err != nil {
		return nil, notFound(err, apperr.ErrElectionNotFound, "load election")
	}
	if !election.IsCompleted && !p.Can(auth.CapViewLiveResults) {
		return nil, apperr.ErrResultsNotReady
	}

	if election.IsCompleted {
		cached, ok, err := s.cache.Get(ctx, electionID)
		if err != nil {
			s.log.Warn("tally cache read failed", "election_id", electionID, "error", err)
		} else if ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return cached, nil
		}
	}

	candidates, err := s.candidates.ListApproved(ctx, nil, electionID)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	tally := ComputeTally(election, candidates)

	if election.IsCompleted {
		if err := s.cache.Set(ctx, electionID, &tally); err != nil {
			s.log.Warn("tally cache write failed", "election_id", electionID, "error", err)
		}
	}
	return &tally, nil
}

// ComputeTally ranks candidates by vote count, highest first. Candidates
// must arrive in insertion order; ties keep that order. Percentages are
// shares of the summed candidate counters rounded to two decimals, or 0 when
// nothing was counted.
func ComputeTally(election *models.Election, candidates []*models.Candidate) models.TallyResult {
	ranked := make([]*models.Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].VoteCount > ranked[j].VoteCount
	})

	var sum int64
	for _, c := range ranked {
		sum += c.VoteCount
	}

	results := make([]models.CandidateResult, len(ranked))
	for i, c := range ranked {
		results[i] = models.CandidateResult{
			CandidateID: c.ID,
			Name:        c.Name,
			StudentID:   c.StudentID,
			Department:  c.Department,
			Position:    c.Position,
			VoteCount:   c.VoteCount,
			Percentage:  percentage(c.VoteCount, sum),
			Rank:        i + 1,
		}
	}

	return models.TallyResult{
		Election: models.ElectionSummary{
			ID:          election.ID,
			Title:       election.Title,
			IsCompleted: election.IsCompleted,
			TotalVotes:  election.TotalVotes,
		},
		CountedVotes: sum,
		Results:      results,
	}
}

func percentage(votes, sum int64) float64 {
	if sum == 0 {
		return 0
	}
	return math.Round(float64(votes)/float64(sum)*100*100) / 100
}
