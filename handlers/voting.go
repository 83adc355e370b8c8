// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/ballotbox/access"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/voting"
)

type VotingHandler struct {
	aggregator *voting.Aggregator
	resolver   *access.Resolver
}

func NewVotingHandler(aggregator *voting.Aggregator, resolver *access.Resolver) *VotingHandler {
	return &VotingHandler{aggregator: aggregator, resolver: resolver}
}

// SaveVotes handles PUT /ballots/{id}/votes
// Resubmitting replaces earlier scores for the same candidates.
func (h *VotingHandler) SaveVotes(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}

	var req models.SaveVotesRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	userID := middleware.UserID(r)
	if _, err := h.resolver.Require(r.Context(), ballotID, userID, middleware.ShareToken(r), access.Vote); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	count, err := h.aggregator.SaveVotes(r.Context(), ballotID, userID, req.Scores)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SaveVotesResponse{
		VoteCount: count,
		Message:   "Votes saved",
	})
}

// GetMyVotes handles GET /ballots/{id}/votes/me
func (h *VotingHandler) GetMyVotes(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}

	userID := middleware.UserID(r)
	if _, err := h.resolver.Require(r.Context(), ballotID, userID, middleware.ShareToken(r), access.View); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	scores, err := h.aggregator.UserVotes(r.Context(), ballotID, userID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SaveVotesRequest{Scores: scores})
}
