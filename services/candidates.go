// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielhkuo/campus-vote/apperr"
	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/cache"
	"github.com/danielhkuo/campus-vote/db"
	"github.com/danielhkuo/campus-vote/logger"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/repos"
)

// CandidateService manages candidates: admin creation, self-nomination,
// approval and edits. Vote counters are never writable here.
type CandidateService struct {
	db         *gorm.DB
	users      repos.UserRepo
	elections  repos.ElectionRepo
	candidates repos.CandidateRepo
	ballots    repos.BallotRepo
	cache      cache.TallyCache
	log        *logger.Logger
}

func NewCandidateService(gdb *gorm.DB, r *repos.Repos, tallyCache cache.TallyCache, baseLog *logger.Logger) *CandidateService {
	if tallyCache == nil {
		tallyCache = cache.NopTallyCache{}
	}
	return &CandidateService{
		db:         gdb,
		users:      r.Users,
		elections:  r.Elections,
		candidates: r.Candidates,
		ballots:    r.Ballots,
		cache:      tallyCache,
		log:        baseLog.With("service", "CandidateService"),
	}
}

// Create registers a student as a candidate. Identity fields left blank
// are copied from the student's account. New candidates start unapproved.
func (s *CandidateService) Create(ctx context.Context, p auth.Principal, req models.CreateCandidateRequest) (*models.Candidate, error) {
	if err := auth.Require(p, auth.CapManageCandidates); err != nil {
		return nil, err
	}
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.Position = strings.TrimSpace(req.Position)
	if req.ElectionID == uuid.Nil {
		return nil, apperr.Invalid("election_id is required")
	}
	if err := check(req); err != nil {
		return nil, err
	}

	if _, err := s.openElection(ctx, nil, req.ElectionID); err != nil {
		return nil, err
	}

	student, err := s.users.GetByStudentID(ctx, nil, req.StudentID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperr.ErrStudentNotFound
		}
		return nil, fmt.Errorf("load student: %w", err)
	}

	candidate := &models.Candidate{
		ElectionID: req.ElectionID,
		StudentID:  req.StudentID,
		Name:       firstNonEmpty(req.Name, student.Name),
		Email:      firstNonEmpty(req.Email, student.Email),
		Department: firstNonEmpty(req.Department, student.Department),
		Year:       req.Year,
		Position:   req.Position,
		Manifesto:  req.Manifesto,
		Image:      req.Image,
	}
	if candidate.Year == 0 {
		candidate.Year = student.Year
	}
	return s.create(ctx, candidate, p)
}

// Nominate lets a verified student stand in an election. The nomination
// waits for admin approval.
func (s *CandidateService) Nominate(ctx context.Context, p auth.Principal, req models.NominateRequest) (*models.Candidate, error) {
	if err := auth.Require(p, auth.CapNominate); err != nil {
		return nil, err
	}
	req.Position = strings.TrimSpace(req.Position)
	if req.ElectionID == uuid.Nil {
		return nil, apperr.Invalid("election_id is required")
	}
	if err := check(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, nil, p.UserID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsVerified || user.StudentID == nil {
		return nil, apperr.ErrNotNominatable
	}
	if _, err := s.openElection(ctx, nil, req.ElectionID); err != nil {
		return nil, err
	}

	candidate := &models.Candidate{
		ElectionID: req.ElectionID,
		StudentID:  *user.StudentID,
		Name:       user.Name,
		Email:      user.Email,
		Department: user.Department,
		Year:       user.Year,
		Position:   req.Position,
		Manifesto:  req.Manifesto,
		Image:      req.Image,
	}
	return s.create(ctx, candidate, p)
}

func (s *CandidateService) create(ctx context.Context, candidate *models.Candidate, p auth.Principal) (*models.Candidate, error) {
	exists, err := s.candidates.Exists(ctx, nil, candidate.ElectionID, candidate.StudentID)
	if err != nil {
		return nil, fmt.Errorf("check candidate: %w", err)
	}
	if exists {
		return nil, apperr.ErrCandidateExists
	}

	if err := s.candidates.Create(ctx, nil, candidate); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperr.ErrCandidateExists
		}
		return nil, fmt.Errorf("create candidate: %w", err)
	}

	s.log.Info("candidate created", "candidate_id", candidate.ID, "election_id", candidate.ElectionID, "by", p.UserID)
	return candidate, nil
}

// ListByElection returns the approved candidates of an election by name.
func (s *CandidateService) ListByElection(ctx context.Context, p auth.Principal, electionID uuid.UUID) ([]*models.Candidate, error) {
	if err := auth.Require(p, auth.CapViewActive); err != nil {
		return nil, err
	}
	candidates, err := s.candidates.ListApprovedByName(ctx, nil, electionID)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return candidates, nil
}

// ListAll returns every candidate, approved or not, newest first.
func (s *CandidateService) ListAll(ctx context.Context, p auth.Principal) ([]*models.Candidate, error) {
	if err := auth.Require(p, auth.CapManageCandidates); err != nil {
		return nil, err
	}
	candidates, err := s.candidates.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return candidates, nil
}

func (s *CandidateService) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Candidate, error) {
	if err := auth.Require(p, auth.CapViewActive); err != nil {
		return nil, err
	}
	return s.get(ctx, nil, id)
}

func (s *CandidateService) Update(ctx context.Context, p auth.Principal, id uuid.UUID, req models.UpdateCandidateRequest) (*models.Candidate, error) {
	if err := auth.Require(p, auth.CapManageCandidates); err != nil {
		return nil, err
	}
	if err := check(req); err != nil {
		return nil, err
	}

	candidate, err := s.get(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.openElection(ctx, nil, candidate.ElectionID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		candidate.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		candidate.Email = *req.Email
	}
	if req.Department != nil {
		candidate.Department = *req.Department
	}
	if req.Year != nil {
		candidate.Year = *req.Year
	}
	if req.Position != nil {
		candidate.Position = strings.TrimSpace(*req.Position)
	}
	if req.Manifesto != nil {
		candidate.Manifesto = *req.Manifesto
	}
	if req.Image != nil {
		candidate.Image = *req.Image
	}

	if err := s.save(ctx, candidate); err != nil {
		return nil, err
	}
	return candidate, nil
}

// ToggleApproval flips the approval flag.
func (s *CandidateService) ToggleApproval(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Candidate, error) {
	if err := auth.Require(p, auth.CapManageCandidates); err != nil {
		return nil, err
	}

	candidate, err := s.get(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.openElection(ctx, nil, candidate.ElectionID); err != nil {
		return nil, err
	}
	candidate.IsApproved = !candidate.IsApproved
	if err := s.save(ctx, candidate); err != nil {
		return nil, err
	}

	s.log.Info("candidate approval toggled", "candidate_id", id, "approved", candidate.IsApproved)
	return candidate, nil
}

// Delete removes a candidate that has no ballots. Candidates with votes
// leave only with their election.
func (s *CandidateService) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if err := auth.Require(p, auth.CapManageCandidates); err != nil {
		return err
	}

	var electionID uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		candidate, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := s.openElection(ctx, tx, candidate.ElectionID); err != nil {
			return err
		}
		electionID = candidate.ElectionID
		votes, err := s.ballots.CountByCandidate(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("count ballots: %w", err)
		}
		if votes > 0 {
			return apperr.ErrCandidateHasVotes
		}
		if err := s.candidates.Delete(ctx, tx, id); err != nil {
			return fmt.Errorf("delete candidate: %w", err)
		}
		s.log.Info("candidate deleted", "candidate_id", id, "by", p.UserID)
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, electionID)
	return nil
}

func (s *CandidateService) save(ctx context.Context, candidate *models.Candidate) error {
	if err := s.candidates.Update(ctx, nil, candidate); err != nil {
		return fmt.Errorf("update candidate: %w", err)
	}
	s.invalidate(ctx, candidate.ElectionID)
	return nil
}

// invalidate drops the cached tally of an election whose candidates changed.
func (s *CandidateService) invalidate(ctx context.Context, electionID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, electionID); err != nil {
		s.log.Warn("tally cache invalidate failed", "election_id", electionID, "error", err)
	}
}

// openElection loads an election whose candidates may still change.
// Completed elections are frozen by their result snapshot.
func (s *CandidateService) openElection(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Election, error) {
	election, err := s.elections.GetByID(ctx, tx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperr.ErrElectionNotFound
		}
		return nil, fmt.Errorf("load election: %w", err)
	}
	if election.IsCompleted {
		return nil, apperr.ErrElectionCompleted
	}
	return election, nil
}

func (s *CandidateService) get(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Candidate, error) {
	candidate, err := s.candidates.GetByID(ctx, tx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperr.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("load candidate: %w", err)
	}
	return candidate, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
