// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielhkuo/campus-vote/models"
)

type ElectionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, election *models.Election) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Election, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*models.Election, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Election, error)
	ListRunning(ctx context.Context, tx *gorm.DB) ([]*models.Election, error)
	Update(ctx context.Context, tx *gorm.DB, election *models.Election) error
	MarkCompleted(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	IncrementTotalVotes(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	SetTotalVotes(ctx context.Context, tx *gorm.DB, id uuid.UUID, total int64) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type ElectionStore struct {
	db *gorm.DB
}

func NewElectionStore(db *gorm.DB) *ElectionStore {
	return &ElectionStore{db: db}
}

func (r *ElectionStore) Create(ctx context.Context, tx *gorm.DB, election *models.Election) error {
	return conn(r.db, tx).WithContext(ctx).Create(election).Error
}

func (r *ElectionStore) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Election, error) {
	var election models.Election
	if err := conn(r.db, tx).WithContext(ctx).First(&election, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &election, nil
}

func (r *ElectionStore) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*models.Election, error) {
	var results []*models.Election
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

// List returns every election, newest first.
func (r *ElectionStore) List(ctx context.Context, tx *gorm.DB) ([]*models.Election, error) {
	var results []*models.Election
	if err := conn(r.db, tx).WithContext(ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListRunning returns active, uncompleted elections ordered by start date.
// Window and eligibility checks are left to the caller.
func (r *ElectionStore) ListRunning(ctx context.Context, tx *gorm.DB) ([]*models.Election, error) {
	var results []*models.Election
	if err := conn(r.db, tx).WithContext(ctx).
		Where("is_active = ? AND is_completed = ?", true, false).
		Order("start_date ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Update writes every editable column, zero values included, of an
// election that is not completed. total_votes and is_completed are left
// alone; a completed election matches no row and yields
// gorm.ErrRecordNotFound.
func (r *ElectionStore) Update(ctx context.Context, tx *gorm.DB, election *models.Election) error {
	return affected(conn(r.db, tx).WithContext(ctx).
		Model(election).
		Where("is_completed = ?", false).
		Select("title", "description", "start_date", "end_date", "is_active",
			"allowed_departments", "allowed_years", "updated_at").
		Updates(election))
}

// MarkCompleted closes an election for good. Only the first call matches a
// row.
func (r *ElectionStore) MarkCompleted(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return affected(conn(r.db, tx).WithContext(ctx).
		Model(&models.Election{}).
		Where("id = ? AND is_completed = ?", id, false).
		Updates(map[string]any{"is_completed": true, "is_active": false}))
}

func (r *ElectionStore) IncrementTotalVotes(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return affected(conn(r.db, tx).WithContext(ctx).
		Model(&models.Election{}).
		Where("id = ?", id).
		UpdateColumn("total_votes", gorm.Expr("total_votes + ?", 1)))
}

func (r *ElectionStore) SetTotalVotes(ctx context.Context, tx *gorm.DB, id uuid.UUID, total int64) error {
	return affected(conn(r.db, tx).WithContext(ctx).
		Model(&models.Election{}).
		Where("id = ?", id).
		UpdateColumn("total_votes", total))
}

func (r *ElectionStore) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return affected(conn(r.db, tx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Election{}))
}
