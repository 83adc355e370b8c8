// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/orgs"
)

type OrgHandler struct {
	orgs *orgs.Service
}

func NewOrgHandler(svc *orgs.Service) *OrgHandler {
	return &OrgHandler{orgs: svc}
}

// CreateOrganization handles POST /organizations
func (h *OrgHandler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrganizationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	org, err := h.orgs.Create(r.Context(), middleware.UserID(r), req.Name)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, org)
}

// AddMember handles POST /organizations/{id}/members
func (h *OrgHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	orgID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}

	var req models.AddMemberRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	m, err := h.orgs.AddMember(r.Context(), middleware.UserID(r), orgID, req.UserID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, m)
}

// Leave handles DELETE /organizations/{id}/members/me
func (h *OrgHandler) Leave(w http.ResponseWriter, r *http.Request) {
	orgID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}

	if err := h.orgs.Leave(r.Context(), orgID, middleware.UserID(r)); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListMembers handles GET /organizations/{id}/members
func (h *OrgHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	orgID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}

	members, err := h.orgs.ListMembers(r.Context(), middleware.UserID(r), orgID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, members)
}
