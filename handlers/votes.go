// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/danielhkuo/campus-vote/apperr"
	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/logger"
	"github.com/danielhkuo/campus-vote/middleware"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/voting"
)

type VoteHandler struct {
	voting *voting.Service
	ipSalt string
	log    *logger.Logger
}

func NewVoteHandler(votingService *voting.Service, ipSalt string, log *logger.Logger) *VoteHandler {
	return &VoteHandler{voting: votingService, ipSalt: ipSalt, log: log.With("handler", "VoteHandler")}
}

// Cast handles POST /api/votes/cast
func (h *VoteHandler) Cast(c *gin.Context) {
	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(c, &req); err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	if req.ElectionID == uuid.Nil || req.CandidateID == uuid.Nil {
		middleware.WriteError(c, h.log, apperr.Invalid("candidate_id and election_id are required"))
		return
	}

	in := voting.CastVoteInput{
		ElectionID:  req.ElectionID,
		CandidateID: req.CandidateID,
	}
	// Hash IP for privacy
	if ip := c.ClientIP(); ip != "" {
		hashed := auth.HashIP(ip, h.ipSalt)
		in.IPHash = &hashed
	}
	if ua := c.Request.UserAgent(); ua != "" {
		in.UserAgent = &ua
	}

	ballot, err := h.voting.CastVote(c.Request.Context(), middleware.GetPrincipal(c), in)
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusCreated, models.CastVoteResponse{
		BallotID: ballot.ID,
		Message:  "Vote cast successfully",
	})
}

// History handles GET /api/votes/history
func (h *VoteHandler) History(c *gin.Context) {
	history, err := h.voting.History(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, history)
}

// Results handles GET /api/votes/results/:electionId
// Students only see results once the election is completed.
func (h *VoteHandler) Results(c *gin.Context) {
	electionID, err := pathID(c, "electionId")
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	result, err := h.voting.Tally(c.Request.Context(), middleware.GetPrincipal(c), electionID)
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, result)
}

// Ledger handles GET /api/votes
func (h *VoteHandler) Ledger(c *gin.Context) {
	entries, err := h.voting.Ledger(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, entries)
}

// Statistics handles GET /api/votes/statistics/:electionId
func (h *VoteHandler) Statistics(c *gin.Context) {
	electionID, err := pathID(c, "electionId")
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	stats, err := h.voting.Statistics(c.Request.Context(), middleware.GetPrincipal(c), electionID)
	if err != nil {
		middleware.WriteError(c, h.log, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, stats)
}
