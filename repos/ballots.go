// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielhkuo/campus-vote/models"
)

// BallotRepo is append-only: ballots leave only with their election.
type BallotRepo interface {
	Create(ctx context.Context, tx *gorm.DB, ballot *models.Ballot) error
	Exists(ctx context.Context, tx *gorm.DB, voterID, electionID uuid.UUID) (bool, error)
	ListByVoter(ctx context.Context, tx *gorm.DB, voterID uuid.UUID) ([]*models.Ballot, error)
	ListByElection(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) ([]*models.Ballot, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Ballot, error)
	CountByElection(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) (int64, error)
	CountByCandidate(ctx context.Context, tx *gorm.DB, candidateID uuid.UUID) (int64, error)
	CountsPerCandidate(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) (map[uuid.UUID]int64, error)
	CountsPerPosition(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) ([]models.PositionCount, error)
	DeleteByElection(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) (int64, error)
}

type BallotStore struct {
	db *gorm.DB
}

func NewBallotStore(db *gorm.DB) *BallotStore {
	return &BallotStore{db: db}
}

// Create inserts a ballot. A second ballot for the same (voter, election)
// fails with a unique violation; see db.IsUniqueViolation.
func (r *BallotStore) Create(ctx context.Context, tx *gorm.DB, ballot *models.Ballot) error {
	return conn(r.db, tx).WithContext(ctx).Create(ballot).Error
}

func (r *BallotStore) Exists(ctx context.Context, tx *gorm.DB, voterID, electionID uuid.UUID) (bool, error) {
	var count int64
	if err := conn(r.db, tx).WithContext(ctx).
		Model(&models.Ballot{}).
		Where("voter_id = ? AND election_id = ?", voterID, electionID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByVoter returns a voter's ballots, newest first.
func (r *BallotStore) ListByVoter(ctx context.Context, tx *gorm.DB, voterID uuid.UUID) ([]*models.Ballot, error) {
	var results []*models.Ballot
	if err := conn(r.db, tx).WithContext(ctx).
		Where("voter_id = ?", voterID).
		Order("voted_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *BallotStore) ListByElection(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) ([]*models.Ballot, error) {
	var results []*models.Ballot
	if err := conn(r.db, tx).WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("voted_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// List returns the whole ledger, newest first.
func (r *BallotStore) List(ctx context.Context, tx *gorm.DB) ([]*models.Ballot, error) {
	var results []*models.Ballot
	if err := conn(r.db, tx).WithContext(ctx).
		Order("voted_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *BallotStore) CountByElection(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) (int64, error) {
	var count int64
	if err := conn(r.db, tx).WithContext(ctx).
		Model(&models.Ballot{}).
		Where("election_id = ?", electionID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *BallotStore) CountByCandidate(ctx context.Context, tx *gorm.DB, candidateID uuid.UUID) (int64, error) {
	var count int64
	if err := conn(r.db, tx).WithContext(ctx).
		Model(&models.Ballot{}).
		Where("candidate_id = ?", candidateID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type candidateCount struct {
	CandidateID uuid.UUID
	Votes       int64
}

// CountsPerCandidate aggregates the ledger of one election by candidate.
// Candidates without ballots are absent from the map.
func (r *BallotStore) CountsPerCandidate(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []candidateCount
	if err := conn(r.db, tx).WithContext(ctx).
		Model(&models.Ballot{}).
		Select("candidate_id, COUNT(*) AS votes").
		Where("election_id = ?", electionID).
		Group("candidate_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.CandidateID] = row.Votes
	}
	return counts, nil
}

func (r *BallotStore) CountsPerPosition(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) ([]models.PositionCount, error) {
	var rows []models.PositionCount
	if err := conn(r.db, tx).WithContext(ctx).
		Model(&models.Ballot{}).
		Select("position, COUNT(*) AS votes").
		Where("election_id = ?", electionID).
		Group("position").
		Order("position ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BallotStore) DeleteByElection(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) (int64, error) {
	res := conn(r.db, tx).WithContext(ctx).
		Where("election_id = ?", electionID).
		Delete(&models.Ballot{})
	return res.RowsAffected, res.Error
}
