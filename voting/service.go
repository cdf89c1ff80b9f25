// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/danielhkuo/campus-vote/apperr"
	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/cache"
	"github.com/danielhkuo/campus-vote/db"
	"github.com/danielhkuo/campus-vote/logger"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/repos"
)

const tracerName = "github.com/danielhkuo/campus-vote/voting"

// Service implements vote casting, tallying and ledger reports.
type Service struct {
	db         *gorm.DB
	users      repos.UserRepo
	elections  repos.ElectionRepo
	candidates repos.CandidateRepo
	ballots    repos.BallotRepo
	cache      cache.TallyCache
	log        *logger.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

func NewService(gdb *gorm.DB, r *repos.Repos, tallyCache cache.TallyCache, baseLog *logger.Logger) *Service {
	if tallyCache == nil {
		tallyCache = cache.NopTallyCache{}
	}
	return &Service{
		db:         gdb,
		users:      r.Users,
		elections:  r.Elections,
		candidates: r.Candidates,
		ballots:    r.Ballots,
		cache:      tallyCache,
		log:        baseLog.With("service", "VotingService"),
		tracer:     otel.Tracer(tracerName),
		now:        time.Now,
	}
}

// CastVoteInput is one vote request. IPHash and UserAgent are provenance
// only and never influence the outcome.
type CastVoteInput struct {
	ElectionID  uuid.UUID
	CandidateID uuid.UUID
	IPHash      *string
	UserAgent   *string
}

// CastVote validates and records one ballot. Preconditions are checked in a
// fixed order and each failure is a distinct apperr sentinel:
//
//  1. election exists
//  2. election is active
//  3. now is inside [start, end]
//  4. candidate exists
//  5. candidate is approved
//  6. candidate belongs to the election
//  7. voter has no ballot in the election
//  8. voter is verified
//
// Step 7 is only an early exit. The ballot insert runs first in the write
// transaction and the (voter, election) unique index decides races; a
// violation becomes apperr.ErrAlreadyVoted.
func (s *Service) CastVote(ctx context.Context, p auth.Principal, in CastVoteInput) (ballot *models.Ballot, err error) {
	ctx, span := s.tracer.Start(ctx, "voting.CastVote", trace.WithAttributes(
		attribute.String("election.id", in.ElectionID.String()),
		attribute.String("candidate.id", in.CandidateID.String()),
	))
	defer func() { endSpan(span, err) }()

	if err := auth.Require(p, auth.CapCastVote); err != nil {
		return nil, err
	}
	now := s.now().UTC()

	// 1-3
	election, err := s.elections.GetByID(ctx, nil, in.ElectionID)
	if err != nil {
		return nil, notFound(err, apperr.ErrElectionNotFound, "load election")
	}
	if !election.IsActive {
		return nil, apperr.ErrElectionNotActive
	}
	if !election.InWindow(now) {
		return nil, apperr.ErrVotingClosed
	}

	// 4-6
	candidate, err := s.candidates.GetByID(ctx, nil, in.CandidateID)
	if err != nil {
		return nil, notFound(err, apperr.ErrCandidateNotFound, "load candidate")
	}
	if !candidate.IsApproved {
		return nil, apperr.ErrCandidateNotApproved
	}
	if candidate.ElectionID != election.ID {
		return nil, apperr.ErrCandidateElectionMismatch
	}

	// 7
	voted, err := s.ballots.Exists(ctx, nil, p.UserID, election.ID)
	if err != nil {
		return nil, fmt.Errorf("check existing ballot: %w", err)
	}
	if voted {
		return nil, apperr.ErrAlreadyVoted
	}

	// 8
	voter, err := s.users.GetByID(ctx, nil, p.UserID)
	if err != nil {
		return nil, notFound(err, apperr.ErrVoterNotFound, "load voter")
	}
	if !voter.IsVerified {
		return nil, apperr.ErrVoterNotVerified
	}

	ballot = &models.Ballot{
		VoterID:     voter.ID,
		ElectionID:  election.ID,
		CandidateID: candidate.ID,
		Position:    candidate.Position,
		VotedAt:     now,
		IPHash:      in.IPHash,
		UserAgent:   in.UserAgent,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ballots.Create(ctx, tx, ballot); err != nil {
			if db.IsUniqueViolation(err) {
				return apperr.ErrAlreadyVoted
			}
			return fmt.Errorf("insert ballot: %w", err)
		}
		if err := s.candidates.IncrementVoteCount(ctx, tx, candidate.ID); err != nil {
			return fmt.Errorf("increment vote count: %w", err)
		}
		if err := s.elections.IncrementTotalVotes(ctx, tx, election.ID); err != nil {
			return fmt.Errorf("increment total votes: %w", err)
		}
		if err := s.users.MarkVoted(ctx, tx, voter.ID); err != nil {
			return fmt.Errorf("mark voter: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyVoted) {
			s.log.Info("duplicate ballot rejected by unique index", "election_id", election.ID, "voter_id", voter.ID)
		}
		return nil, err
	}

	s.invalidate(ctx, election.ID)
	s.log.Info("ballot cast", "ballot_id", ballot.ID, "election_id", election.ID, "candidate_id", candidate.ID)
	return ballot, nil
}

func (s *Service) invalidate(ctx context.Context, electionID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, electionID); err != nil {
		s.log.Warn("tally cache invalidate failed", "election_id", electionID, "error", err)
	}
}

// notFound maps gorm's not-found to sentinel and wraps anything else.
func notFound(err error, sentinel *apperr.Error, op string) error {
	if db.IsNotFound(err) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", op, err)
}

// endSpan marks the span failed only for infrastructure errors; domain
// rejections are expected outcomes.
func endSpan(span trace.Span, err error) {
	if err != nil {
		if e, ok := apperr.As(err); ok {
			span.SetAttributes(attribute.String("outcome", e.Code))
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}
