// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/campus-vote/apperr"
	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/db"
	"github.com/danielhkuo/campus-vote/logger"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/repos"
)

// UserService handles registration, login, profiles and verification.
type UserService struct {
	users            repos.UserRepo
	tokens           *auth.TokenIssuer
	allowAdminSignup bool
	log              *logger.Logger
}

func NewUserService(users repos.UserRepo, tokens *auth.TokenIssuer, allowAdminSignup bool, baseLog *logger.Logger) *UserService {
	return &UserService{
		users:            users,
		tokens:           tokens,
		allowAdminSignup: allowAdminSignup,
		log:              baseLog.With("service", "UserService"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and signs the caller in. Admin accounts are
// only accepted when admin signup is enabled, and start verified.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.StudentID != nil {
		trimmed := strings.TrimSpace(*req.StudentID)
		req.StudentID = &trimmed
		if trimmed == "" {
			req.StudentID = nil
		}
	}
	if err := check(req); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	if role == models.RoleAdmin && !s.allowAdminSignup {
		return nil, apperr.ErrAdminSignupDisabled
	}

	exists, err := s.users.EmailExists(ctx, nil, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, apperr.ErrUserExists
	}
	if req.StudentID != nil {
		exists, err := s.users.StudentIDExists(ctx, nil, *req.StudentID)
		if err != nil {
			return nil, fmt.Errorf("check student id: %w", err)
		}
		if exists {
			return nil, apperr.ErrStudentIDExists
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:       req.Name,
		Email:      req.Email,
		Password:   hash,
		StudentID:  req.StudentID,
		University: req.University,
		Department: req.Department,
		Year:       req.Year,
		Role:       role,
		IsVerified: role == models.RoleAdmin,
	}
	if err := s.users.Create(ctx, nil, user); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperr.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", "user_id", user.ID, "role", user.Role)
	return s.respond(user)
}

// Login checks credentials. Unknown email and wrong password fail the same way.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := check(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperr.ErrInvalidCredentials
	}
	return s.respond(user)
}

func (s *UserService) Profile(ctx context.Context, p auth.Principal) (*models.User, error) {
	if err := auth.Require(p, auth.CapManageProfile); err != nil {
		return nil, err
	}
	return s.get(ctx, p.UserID)
}

// UpdateProfile changes the caller's own details and returns a fresh token.
func (s *UserService) UpdateProfile(ctx context.Context, p auth.Principal, req models.UpdateProfileRequest) (*models.AuthResponse, error) {
	if err := auth.Require(p, auth.CapManageProfile); err != nil {
		return nil, err
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email
	}
	if err := check(req); err != nil {
		return nil, err
	}

	current, err := s.get(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil && *req.Email != current.Email {
		exists, err := s.users.EmailExists(ctx, nil, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if exists {
			return nil, apperr.ErrUserExists
		}
		updates["email"] = *req.Email
	}
	if req.University != nil {
		updates["university"] = *req.University
	}
	if req.Department != nil {
		updates["department"] = *req.Department
	}
	if req.Year != nil {
		updates["year"] = *req.Year
	}

	if err := s.users.Update(ctx, nil, p.UserID, updates); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperr.ErrUserExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	user, err := s.get(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return s.respond(user)
}

// Verify marks a user as verified so they may vote.
func (s *UserService) Verify(ctx context.Context, p auth.Principal, userID uuid.UUID) (*models.User, error) {
	if err := auth.Require(p, auth.CapManageUsers); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, nil, userID, map[string]any{"is_verified": true}); err != nil {
		if db.IsNotFound(err) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("verify user: %w", err)
	}

	s.log.Info("user verified", "user_id", userID, "by", p.UserID)
	return s.get(ctx, userID)
}

func (s *UserService) List(ctx context.Context, p auth.Principal) ([]*models.User, error) {
	if err := auth.Require(p, auth.CapManageUsers); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, nil, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *UserService) respond(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: *user}, nil
}
