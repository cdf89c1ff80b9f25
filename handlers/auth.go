// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danielhkuo/campus-vote/logger"
	"github.com/danielhkuo/campus-vote/middleware"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/services"
)

type AuthHandler struct {
	users *services.UserService
	log   *logger.Logger
}

func NewAuthHandler(users *services.UserService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{users: users, log: log.With("handler", "AuthHandler")}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(c, &req); err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	resp, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(c, &req); err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	resp, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, resp)
}

// Profile handles GET /api/auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.users.Profile(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := middleware.ParseJSONBody(c, &req); err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	resp, err := h.users.UpdateProfile(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, resp)
}

// ListUsers handles GET /api/auth/users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, users)
}

// VerifyUser handles PUT /api/auth/verify/:userId
func (h *AuthHandler) VerifyUser(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	user, err := h.users.Verify(c.Request.Context(), middleware.GetPrincipal(c), userID)
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, user)
}
