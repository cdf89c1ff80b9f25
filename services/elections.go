// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/danielhkuo/campus-vote/apperr"
	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/cache"
	"github.com/danielhkuo/campus-vote/db"
	"github.com/danielhkuo/campus-vote/logger"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/repos"
	"github.com/danielhkuo/campus-vote/voting"
)

// ElectionService manages the election lifecycle: create, edit, toggle,
// complete with a result snapshot, and cascading delete.
type ElectionService struct {
	db         *gorm.DB
	elections  repos.ElectionRepo
	candidates repos.CandidateRepo
	ballots    repos.BallotRepo
	snapshots  repos.SnapshotRepo
	cache      cache.TallyCache
	log        *logger.Logger
	now        func() time.Time
}

func NewElectionService(gdb *gorm.DB, r *repos.Repos, tallyCache cache.TallyCache, baseLog *logger.Logger) *ElectionService {
	if tallyCache == nil {
		tallyCache = cache.NopTallyCache{}
	}
	return &ElectionService{
		db:         gdb,
		elections:  r.Elections,
		candidates: r.Candidates,
		ballots:    r.Ballots,
		snapshots:  r.Snapshots,
		cache:      tallyCache,
		log:        baseLog.With("service", "ElectionService"),
		now:        time.Now,
	}
}

// Create stores a new, inactive election owned by the caller.
func (s *ElectionService) Create(ctx context.Context, p auth.Principal, req models.CreateElectionRequest) (*models.Election, error) {
	if err := auth.Require(p, auth.CapManageElections); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := check(req); err != nil {
		return nil, err
	}

	election := &models.Election{
		Title:              req.Title,
		Description:        req.Description,
		StartDate:          req.StartDate.UTC(),
		EndDate:            req.EndDate.UTC(),
		AllowedDepartments: datatypes.JSONSlice[string](nonNil(req.AllowedDepartments)),
		AllowedYears:       datatypes.JSONSlice[int](nonNil(req.AllowedYears)),
		CreatedBy:          p.UserID,
	}
	if err := s.elections.Create(ctx, nil, election); err != nil {
		return nil, fmt.Errorf("create election: %w", err)
	}

	s.log.Info("election created", "election_id", election.ID, "by", p.UserID)
	return election, nil
}

// List returns every election, newest first.
func (s *ElectionService) List(ctx context.Context, p auth.Principal) ([]*models.Election, error) {
	if err := auth.Require(p, auth.CapManageElections); err != nil {
		return nil, err
	}
	elections, err := s.elections.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list elections: %w", err)
	}
	return elections, nil
}

func (s *ElectionService) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Election, error) {
	if err := auth.Require(p, auth.CapViewActive); err != nil {
		return nil, err
	}
	return s.get(ctx, nil, id)
}

// Update applies a partial edit. The window is re-validated against the
// merged values. Completed elections are frozen.
func (s *ElectionService) Update(ctx context.Context, p auth.Principal, id uuid.UUID, req models.UpdateElectionRequest) (*models.Election, error) {
	if err := auth.Require(p, auth.CapManageElections); err != nil {
		return nil, err
	}
	if err := check(req); err != nil {
		return nil, err
	}

	election, err := s.get(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if election.IsCompleted {
		return nil, apperr.ErrElectionCompleted
	}

	if req.Title != nil {
		election.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		election.Description = *req.Description
	}
	if req.StartDate != nil {
		election.StartDate = req.StartDate.UTC()
	}
	if req.EndDate != nil {
		election.EndDate = req.EndDate.UTC()
	}
	if req.AllowedDepartments != nil {
		election.AllowedDepartments = nonNil(*req.AllowedDepartments)
	}
	if req.AllowedYears != nil {
		election.AllowedYears = nonNil(*req.AllowedYears)
	}
	if election.Title == "" {
		return nil, apperr.Invalid("title is required")
	}
	if !election.EndDate.After(election.StartDate) {
		return nil, apperr.Invalid("end_date must be after start_date")
	}

	if err := s.elections.Update(ctx, nil, election); err != nil {
		return nil, s.writeFailed(ctx, id, "update election", err)
	}
	return election, nil
}

// ToggleActive flips the active flag. A completed election cannot be reopened.
func (s *ElectionService) ToggleActive(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Election, error) {
	if err := auth.Require(p, auth.CapManageElections); err != nil {
		return nil, err
	}

	election, err := s.get(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if election.IsCompleted {
		return nil, apperr.ErrElectionCompleted
	}

	election.IsActive = !election.IsActive
	if err := s.elections.Update(ctx, nil, election); err != nil {
		return nil, s.writeFailed(ctx, id, "toggle election", err)
	}

	s.log.Info("election toggled", "election_id", id, "active", election.IsActive)
	return election, nil
}

// Complete closes the election for good and freezes its tally in a result
// snapshot whose inputs hash covers every ballot ID.
func (s *ElectionService) Complete(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.CompleteElectionResponse, error) {
	if err := auth.Require(p, auth.CapManageElections); err != nil {
		return nil, err
	}

	var resp models.CompleteElectionResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		election, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if election.IsCompleted {
			return apperr.ErrElectionCompleted
		}

		if err := s.elections.MarkCompleted(ctx, tx, id); err != nil {
			if db.IsNotFound(err) {
				return apperr.ErrElectionCompleted
			}
			return fmt.Errorf("complete election: %w", err)
		}
		election.IsCompleted = true
		election.IsActive = false

		candidates, err := s.candidates.ListApproved(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("list candidates: %w", err)
		}
		ballots, err := s.ballots.ListByElection(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("list ballots: %w", err)
		}
		ballotIDs := make([]uuid.UUID, len(ballots))
		for i, b := range ballots {
			ballotIDs[i] = b.ID
		}

		tally := voting.ComputeTally(election, candidates)
		payload, err := json.Marshal(tally)
		if err != nil {
			return fmt.Errorf("encode tally: %w", err)
		}

		snapshot := &models.ResultSnapshot{
			ElectionID: id,
			ComputedAt: s.now().UTC(),
			Payload:    datatypes.JSON(payload),
			InputsHash: auth.InputsHash(ballotIDs),
		}
		if err := s.snapshots.Create(ctx, tx, snapshot); err != nil {
			return fmt.Errorf("create snapshot: %w", err)
		}

		resp = models.CompleteElectionResponse{Election: *election, Snapshot: *snapshot}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn("tally cache invalidate failed", "election_id", id, "error", err)
	}
	s.log.Info("election completed", "election_id", id, "snapshot_id", resp.Snapshot.ID, "inputs_hash", resp.Snapshot.InputsHash)
	return &resp, nil
}

// Delete removes the election with its ballots, candidates and snapshots.
func (s *ElectionService) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if err := auth.Require(p, auth.CapManageElections); err != nil {
		return err
	}

	var ballots, candidates int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.get(ctx, tx, id); err != nil {
			return err
		}

		var err error
		if ballots, err = s.ballots.DeleteByElection(ctx, tx, id); err != nil {
			return fmt.Errorf("delete ballots: %w", err)
		}
		if candidates, err = s.candidates.DeleteByElection(ctx, tx, id); err != nil {
			return fmt.Errorf("delete candidates: %w", err)
		}
		if _, err = s.snapshots.DeleteByElection(ctx, tx, id); err != nil {
			return fmt.Errorf("delete snapshots: %w", err)
		}
		if err = s.elections.Delete(ctx, tx, id); err != nil {
			return fmt.Errorf("delete election: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn("tally cache invalidate failed", "election_id", id, "error", err)
	}
	s.log.Info("election deleted", "election_id", id, "ballots", ballots, "candidates", candidates)
	return nil
}

// LatestSnapshot returns the most recent frozen tally of an election.
func (s *ElectionService) LatestSnapshot(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.ResultSnapshot, error) {
	if err := auth.Require(p, auth.CapManageElections); err != nil {
		return nil, err
	}
	if _, err := s.get(ctx, nil, id); err != nil {
		return nil, err
	}

	snapshot, err := s.snapshots.Latest(ctx, nil, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperr.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snapshot, nil
}

// writeFailed explains a guarded election write that matched no row: the
// election was completed or deleted since it was loaded.
func (s *ElectionService) writeFailed(ctx context.Context, id uuid.UUID, op string, err error) error {
	if !db.IsNotFound(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.get(ctx, nil, id); err != nil {
		return err
	}
	return apperr.ErrElectionCompleted
}

func (s *ElectionService) get(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Election, error) {
	election, err := s.elections.GetByID(ctx, tx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperr.ErrElectionNotFound
		}
		return nil, fmt.Errorf("load election: %w", err)
	}
	return election, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
