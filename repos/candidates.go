// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielhkuo/campus-vote/models"
)

type CandidateRepo interface {
	Create(ctx context.Context, tx *gorm.DB, candidate *models.Candidate) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Candidate, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*models.Candidate, error)
	Exists(ctx context.Context, tx *gorm.DB, electionID uuid.UUID, studentID string) (bool, error)
	ListApproved(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) ([]*models.Candidate, error)
	ListApprovedByName(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) ([]*models.Candidate, error)
	ListByElection(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) ([]*models.Candidate, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Candidate, error)
	CountApproved(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) (int64, error)
	Update(ctx context.Context, tx *gorm.DB, candidate *models.Candidate) error
	IncrementVoteCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	SetVoteCount(ctx context.Context, tx *gorm.DB, id uuid.UUID, count int64) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DeleteByElection(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) (int64, error)
}

type CandidateStore struct {
	db *gorm.DB
}

func NewCandidateStore(db *gorm.DB) *CandidateStore {
	return &CandidateStore{db: db}
}

func (r *CandidateStore) Create(ctx context.Context, tx *gorm.DB, candidate *models.Candidate) error {
	return conn(r.db, tx).WithContext(ctx).Create(candidate).Error
}

func (r *CandidateStore) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := conn(r.db, tx).WithContext(ctx).First(&candidate, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *CandidateStore) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*models.Candidate, error) {
	var results []*models.Candidate
	if len(ids) == 0 {
		return results, nil
	}
	if err := conn(r.db, tx).WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *CandidateStore) Exists(ctx context.Context, tx *gorm.DB, electionID uuid.UUID, studentID string) (bool, error) {
	var count int64
	if err := conn(r.db, tx).WithContext(ctx).
		Model(&models.Candidate{}).
		Where("election_id = ? AND student_id = ?", electionID, studentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListApproved returns approved candidates in insertion order.
func (r *CandidateStore) ListApproved(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) ([]*models.Candidate, error) {
	var results []*models.Candidate
	if err := conn(r.db, tx).WithContext(ctx).
		Where("election_id = ? AND is_approved = ?", electionID, true).
		Order("created_at ASC").
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *CandidateStore) ListApprovedByName(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) ([]*models.Candidate, error) {
	var results []*models.Candidate
	if err := conn(r.db, tx).WithContext(ctx).
		Where("election_id = ? AND is_approved = ?", electionID, true).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListByElection returns every candidate of an election, approved or not.
func (r *CandidateStore) ListByElection(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) ([]*models.Candidate, error) {
	var results []*models.Candidate
	if err := conn(r.db, tx).WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// List returns every candidate, newest first.
func (r *CandidateStore) List(ctx context.Context, tx *gorm.DB) ([]*models.Candidate, error) {
	var results []*models.Candidate
	if err := conn(r.db, tx).WithContext(ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *CandidateStore) CountApproved(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) (int64, error) {
	var count int64
	if err := conn(r.db, tx).WithContext(ctx).
		Model(&models.Candidate{}).
		Where("election_id = ? AND is_approved = ?", electionID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Update writes every editable column. vote_count, election_id and
// student_id are not editable.
func (r *CandidateStore) Update(ctx context.Context, tx *gorm.DB, candidate *models.Candidate) error {
	return affected(conn(r.db, tx).WithContext(ctx).
		Model(candidate).
		Select("name", "email", "department", "year", "position", "manifesto", "image", "is_approved", "updated_at").
		Updates(candidate))
}

func (r *CandidateStore) IncrementVoteCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return affected(conn(r.db, tx).WithContext(ctx).
		Model(&models.Candidate{}).
		Where("id = ?", id).
		UpdateColumn("vote_count", gorm.Expr("vote_count + ?", 1)))
}

func (r *CandidateStore) SetVoteCount(ctx context.Context, tx *gorm.DB, id uuid.UUID, count int64) error {
	return affected(conn(r.db, tx).WithContext(ctx).
		Model(&models.Candidate{}).
		Where("id = ?", id).
		UpdateColumn("vote_count", count))
}

func (r *CandidateStore) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return affected(conn(r.db, tx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Candidate{}))
}

func (r *CandidateStore) DeleteByElection(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) (int64, error) {
	res := conn(r.db, tx).WithContext(ctx).
		Where("election_id = ?", electionID).
		Delete(&models.Candidate{})
	return res.RowsAffected, res.Error
}
