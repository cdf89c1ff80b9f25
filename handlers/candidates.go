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

type CandidateHandler struct {
	candidates *services.CandidateService
	log        *logger.Logger
}

func NewCandidateHandler(candidates *services.CandidateService, log *logger.Logger) *CandidateHandler {
	return &CandidateHandler{candidates: candidates, log: log.With("handler", "CandidateHandler")}
}

// ListByElection handles GET /api/candidates/election/:electionId
func (h *CandidateHandler) ListByElection(c *gin.Context) {
	electionID, err := pathID(c, "electionId")
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	candidates, err := h.candidates.ListByElection(c.Request.Context(), middleware.GetPrincipal(c), electionID)
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, candidates)
}

// Get handles GET /api/candidates/:id
func (h *CandidateHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	candidate, err := h.candidates.Get(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, candidate)
}

// Nominate handles POST /api/candidates/nominate
func (h *CandidateHandler) Nominate(c *gin.Context) {
	var req models.NominateRequest
	if err := middleware.ParseJSONBody(c, &req); err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	candidate, err := h.candidates.Nominate(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusCreated, candidate)
}

// Create handles POST /api/candidates
func (h *CandidateHandler) Create(c *gin.Context) {
	var req models.CreateCandidateRequest
	if err := middleware.ParseJSONBody(c, &req); err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	candidate, err := h.candidates.Create(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusCreated, candidate)
}

// ListAll handles GET /api/candidates
func (h *CandidateHandler) ListAll(c *gin.Context) {
	candidates, err := h.candidates.ListAll(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, candidates)
}

// Update handles PUT /api/candidates/:id
func (h *CandidateHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	var req models.UpdateCandidateRequest
	if err := middleware.ParseJSONBody(c, &req); err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	candidate, err := h.candidates.Update(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, candidate)
}

// Approve handles PUT /api/candidates/:id/approve
// Flips approval, so the same call also withdraws it.
func (h *CandidateHandler) Approve(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	candidate, err := h.candidates.ToggleApproval(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, candidate)
}

// Delete handles DELETE /api/candidates/:id
func (h *CandidateHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	if err := h.candidates.Delete(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, models.MessageResponse{Message: "Candidate deleted successfully"})
}
