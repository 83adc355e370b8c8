// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/ballotbox/grants"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
)

type GrantHandler struct {
	grants *grants.Service
}

func NewGrantHandler(svc *grants.Service) *GrantHandler {
	return &GrantHandler{grants: svc}
}

// Grant handles POST /ballots/{id}/grants
func (h *GrantHandler) Grant(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}

	var req models.GrantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	g, err := h.grants.Grant(r.Context(), middleware.UserID(r), ballotID, req.UserID, req.Permission)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, g)
}

// Invite handles POST /ballots/{id}/invitations
func (h *GrantHandler) Invite(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}

	var req models.InviteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	g, err := h.grants.Invite(r.Context(), middleware.UserID(r), ballotID, req.Email, req.Permission)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, g)
}

// AcceptInvitation handles POST /ballots/{id}/invitations/accept
// The invitation is matched against the gateway-verified X-User-Email only;
// any email in the request body is ignored.
func (h *GrantHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}

	email := middleware.UserEmail(r)
	if email == "" {
		middleware.ErrorResponse(w, http.StatusForbidden, middleware.UserEmailHeader+" header is required")
		return
	}

	g, err := h.grants.AcceptInvitation(r.Context(), ballotID, email, middleware.UserID(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, g)
}

// Revoke handles DELETE /ballots/{id}/grants/{grantID}
func (h *GrantHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}
	grantID, ok := pathValue(w, r, "grantID")
	if !ok {
		return
	}

	if err := h.grants.Revoke(r.Context(), middleware.UserID(r), ballotID, grantID); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /ballots/{id}/grants
func (h *GrantHandler) List(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}

	list, err := h.grants.List(r.Context(), middleware.UserID(r), ballotID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, list)
}
