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
	"github.com/danielhkuo/campus-vote/voting"
)

type ElectionHandler struct {
	elections *services.ElectionService
	voting    *voting.Service
	log       *logger.Logger
}

func NewElectionHandler(elections *services.ElectionService, votingService *voting.Service, log *logger.Logger) *ElectionHandler {
	return &ElectionHandler{elections: elections, voting: votingService, log: log.With("handler", "ElectionHandler")}
}

// Active handles GET /api/elections/active
// Returns the running elections the caller is eligible for.
func (h *ElectionHandler) Active(c *gin.Context) {
	elections, err := h.voting.ActiveElections(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, elections)
}

// Get handles GET /api/elections/:id
func (h *ElectionHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	election, err := h.elections.Get(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, election)
}

// List handles GET /api/elections
func (h *ElectionHandler) List(c *gin.Context) {
	elections, err := h.elections.List(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, elections)
}

// Create handles POST /api/elections
func (h *ElectionHandler) Create(c *gin.Context) {
	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(c, &req); err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	election, err := h.elections.Create(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusCreated, election)
}

// Update handles PUT /api/elections/:id
func (h *ElectionHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	var req models.UpdateElectionRequest
	if err := middleware.ParseJSONBody(c, &req); err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	election, err := h.elections.Update(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, election)
}

// Toggle handles PUT /api/elections/:id/toggle
func (h *ElectionHandler) Toggle(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	election, err := h.elections.ToggleActive(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, election)
}

// Complete handles PUT /api/elections/:id/complete
func (h *ElectionHandler) Complete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	resp, err := h.elections.Complete(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, resp)
}

// Delete handles DELETE /api/elections/:id
func (h *ElectionHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	if err := h.elections.Delete(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, models.MessageResponse{Message: "Election deleted successfully"})
}

// Reconcile handles POST /api/elections/:id/reconcile
func (h *ElectionHandler) Reconcile(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	report, err := h.voting.Reconcile(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, report)
}

// Snapshot handles GET /api/elections/:id/snapshot
func (h *ElectionHandler) Snapshot(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	snapshot, err := h.elections.LatestSnapshot(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, snapshot)
}
