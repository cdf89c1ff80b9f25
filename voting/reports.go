// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielhkuo/campus-vote/apperr"
	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/models"
)

// History lists the caller's own ballots, newest first.
func (s *Service) History(ctx context.Context, p auth.Principal) ([]models.HistoryEntry, error) {
	if err := auth.Require(p, auth.CapViewHistory); err != nil {
		return nil, err
	}

	ballots, err := s.ballots.ListByVoter(ctx, nil, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("list ballots: %w", err)
	}
	titles, names, err := s.labels(ctx, ballots)
	if err != nil {
		return nil, err
	}

	entries := make([]models.HistoryEntry, len(ballots))
	for i, b := range ballots {
		entries[i] = historyEntry(b, titles, names)
	}
	return entries, nil
}

// Ledger lists every ballot with the voter's identity, newest first.
func (s *Service) Ledger(ctx context.Context, p auth.Principal) ([]models.LedgerEntry, error) {
	if err := auth.Require(p, auth.CapViewLedger); err != nil {
		return nil, err
	}

	ballots, err := s.ballots.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list ballots: %w", err)
	}
	titles, names, err := s.labels(ctx, ballots)
	if err != nil {
		return nil, err
	}

	voterIDs := make([]uuid.UUID, 0, len(ballots))
	for _, b := range ballots {
		voterIDs = append(voterIDs, b.VoterID)
	}
	voters, err := s.users.GetByIDs(ctx, nil, uniq(voterIDs))
	if err != nil {
		return nil, fmt.Errorf("load voters: %w", err)
	}
	byID := make(map[uuid.UUID]*models.User, len(voters))
	for _, v := range voters {
		byID[v.ID] = v
	}

	entries := make([]models.LedgerEntry, len(ballots))
	for i, b := range ballots {
		entry := models.LedgerEntry{HistoryEntry: historyEntry(b, titles, names), VoterID: b.VoterID}
		if v, ok := byID[b.VoterID]; ok {
			entry.VoterName = v.Name
			entry.VoterEmail = v.Email
			entry.VoterStudentID = v.StudentID
		}
		entries[i] = entry
	}
	return entries, nil
}

// Statistics summarizes one election from the ledger rather than the counters.
func (s *Service) Statistics(ctx context.Context, p auth.Principal, electionID uuid.UUID) (*models.ElectionStatistics, error) {
	if err := auth.Require(p, auth.CapViewLedger); err != nil {
		return nil, err
	}

	if _, err := s.elections.GetByID(ctx, nil, electionID); err != nil {
		return nil, notFound(err, apperr.ErrElectionNotFound, "load election")
	}

	total, err := s.ballots.CountByElection(ctx, nil, electionID)
	if err != nil {
		return nil, fmt.Errorf("count ballots: %w", err)
	}
	candidates, err := s.candidates.CountApproved(ctx, nil, electionID)
	if err != nil {
		return nil, fmt.Errorf("count candidates: %w", err)
	}
	byPosition, err := s.ballots.CountsPerPosition(ctx, nil, electionID)
	if err != nil {
		return nil, fmt.Errorf("count positions: %w", err)
	}
	if byPosition == nil {
		byPosition = []models.PositionCount{}
	}

	return &models.ElectionStatistics{
		ElectionID:      electionID,
		TotalVotes:      total,
		TotalCandidates: candidates,
		VotesByPosition: byPosition,
	}, nil
}

// labels resolves election titles and candidate names for a set of ballots.
func (s *Service) labels(ctx context.Context, ballots []*models.Ballot) (map[uuid.UUID]string, map[uuid.UUID]string, error) {
	electionIDs := make([]uuid.UUID, 0, len(ballots))
	candidateIDs := make([]uuid.UUID, 0, len(ballots))
	for _, b := range ballots {
		electionIDs = append(electionIDs, b.ElectionID)
		candidateIDs = append(candidateIDs, b.CandidateID)
	}

	elections, err := s.elections.GetByIDs(ctx, nil, uniq(electionIDs))
	if err != nil {
		return nil, nil, fmt.Errorf("load elections: %w", err)
	}
	candidates, err := s.candidates.GetByIDs(ctx, nil, uniq(candidateIDs))
	if err != nil {
		return nil, nil, fmt.Errorf("load candidates: %w", err)
	}

	titles := make(map[uuid.UUID]string, len(elections))
	for _, e := range elections {
		titles[e.ID] = e.Title
	}
	names := make(map[uuid.UUID]string, len(candidates))
	for _, c := range candidates {
		names[c.ID] = c.Name
	}
	return titles, names, nil
}

func historyEntry(b *models.Ballot, titles, names map[uuid.UUID]string) models.HistoryEntry {
	return models.HistoryEntry{
		BallotID:      b.ID,
		ElectionID:    b.ElectionID,
		ElectionTitle: titles[b.ElectionID],
		CandidateID:   b.CandidateID,
		CandidateName: names[b.CandidateID],
		Position:      b.Position,
		VotedAt:       b.VotedAt,
	}
}

func uniq(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
