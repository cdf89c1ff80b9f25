// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielhkuo/campus-vote/models"
)

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.User, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	GetByStudentID(ctx context.Context, tx *gorm.DB, studentID string) (*models.User, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	StudentIDExists(ctx context.Context, tx *gorm.DB, studentID string) (bool, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	MarkVoted(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (r *UserStore) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	return conn(r.db, tx).WithContext(ctx).Create(user).Error
}

func (r *UserStore) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := conn(r.db, tx).WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserStore) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*models.User, error) {
	var results []*models.User
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

func (r *UserStore) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := conn(r.db, tx).WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserStore) GetByStudentID(ctx context.Context, tx *gorm.DB, studentID string) (*models.User, error) {
	var user models.User
	if err := conn(r.db, tx).WithContext(ctx).
		Where("student_id = ? AND role = ?", studentID, models.RoleStudent).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserStore) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	if err := conn(r.db, tx).WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserStore) StudentIDExists(ctx context.Context, tx *gorm.DB, studentID string) (bool, error) {
	var count int64
	if err := conn(r.db, tx).WithContext(ctx).
		Model(&models.User{}).
		Where("student_id = ?", studentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns every user, newest first.
func (r *UserStore) List(ctx context.Context, tx *gorm.DB) ([]*models.User, error) {
	var results []*models.User
	if err := conn(r.db, tx).WithContext(ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *UserStore) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return affected(conn(r.db, tx).WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates))
}

// MarkVoted sets the global has-voted flag. Idempotent.
func (r *UserStore) MarkVoted(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return affected(conn(r.db, tx).WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("has_voted", true))
}
