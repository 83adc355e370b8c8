// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"

	"github.com/danielhkuo/ballotbox/access"
	"github.com/danielhkuo/ballotbox/ballots"
	"github.com/danielhkuo/ballotbox/lifecycle"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
)

type BallotHandler struct {
	ballots   *ballots.Service
	lifecycle *lifecycle.Manager
	resolver  *access.Resolver
}

func NewBallotHandler(svc *ballots.Service, manager *lifecycle.Manager, resolver *access.Resolver) *BallotHandler {
	return &BallotHandler{ballots: svc, lifecycle: manager, resolver: resolver}
}

// pathValue returns the named path parameter, writing 400 if it is missing
func pathValue(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.PathValue(name)
	if v == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, name+" is required")
		return "", false
	}
	return v, true
}

// CreateBallot handles POST /ballots
func (h *BallotHandler) CreateBallot(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	b, err := h.ballots.Create(r.Context(), middleware.UserID(r), req)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateBallotResponse{
		BallotID: b.ID,
		Status:   b.Status,
	})
}

// GetBallot handles GET /ballots/{id}
func (h *BallotHandler) GetBallot(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}

	b, _, err := h.ballots.Get(r.Context(), ballotID, middleware.UserID(r), middleware.ShareToken(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, b)
}

// GetAccess handles GET /ballots/{id}/access
func (h *BallotHandler) GetAccess(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}

	d, err := h.resolver.Resolve(r.Context(), ballotID, middleware.UserID(r), middleware.ShareToken(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, d)
}

// UpdateBallot handles PATCH /ballots/{id}
func (h *BallotHandler) UpdateBallot(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}

	var req models.UpdateBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	b, err := h.ballots.Update(r.Context(), ballotID, middleware.UserID(r), middleware.ShareToken(r), req)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, b)
}

// DeleteBallot handles DELETE /ballots/{id}
func (h *BallotHandler) DeleteBallot(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}

	if err := h.ballots.Delete(r.Context(), ballotID, middleware.UserID(r)); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListMyBallots handles GET /ballots/mine
func (h *BallotHandler) ListMyBallots(w http.ResponseWriter, r *http.Request) {
	owned, err := h.ballots.ListOwned(r.Context(), middleware.UserID(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, owned)
}

// AddCandidate handles POST /ballots/{id}/candidates
func (h *BallotHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}

	var req models.AddCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	c, err := h.ballots.AddCandidate(r.Context(), ballotID, middleware.UserID(r), middleware.ShareToken(r), req)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.AddCandidateResponse{CandidateID: c.ID})
}

// RemoveCandidate handles DELETE /ballots/{id}/candidates/{candidateID}
func (h *BallotHandler) RemoveCandidate(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}
	candidateID, ok := pathValue(w, r, "candidateID")
	if !ok {
		return
	}

	err := h.ballots.RemoveCandidate(r.Context(), ballotID, candidateID, middleware.UserID(r), middleware.ShareToken(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// OpenBallot handles POST /ballots/{id}/open
func (h *BallotHandler) OpenBallot(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.lifecycle.Open)
}

// CloseBallot handles POST /ballots/{id}/close
func (h *BallotHandler) CloseBallot(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.lifecycle.Close)
}

func (h *BallotHandler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (models.Ballot, error)) {
	ballotID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.resolver.Require(r.Context(), ballotID, middleware.UserID(r), middleware.ShareToken(r), access.Edit); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	b, err := op(r.Context(), ballotID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, b)
}
