// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielhkuo/campus-vote/models"
)

type SnapshotRepo interface {
	Create(ctx context.Context, tx *gorm.DB, snapshot *models.ResultSnapshot) error
	Latest(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) (*models.ResultSnapshot, error)
	DeleteByElection(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) (int64, error)
}

type SnapshotStore struct {
	db *gorm.DB
}

func NewSnapshotStore(db *gorm.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

func (r *SnapshotStore) Create(ctx context.Context, tx *gorm.DB, snapshot *models.ResultSnapshot) error {
	return conn(r.db, tx).WithContext(ctx).Create(snapshot).Error
}

func (r *SnapshotStore) Latest(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) (*models.ResultSnapshot, error) {
	var snapshot models.ResultSnapshot
	if err := conn(r.db, tx).WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("computed_at DESC").
		First(&snapshot).Error; err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *SnapshotStore) DeleteByElection(ctx context.Context, tx *gorm.DB, electionID uuid.UUID) (int64, error) {
	res := conn(r.db, tx).WithContext(ctx).
		Where("election_id = ?", electionID).
		Delete(&models.ResultSnapshot{})
	return res.RowsAffected, res.Error
}
