// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/url"

	"github.com/danielhkuo/ballotbox/access"
	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/sharelink"
)

type ShareLinkHandler struct {
	links    *sharelink.Service
	resolver *access.Resolver
}

func NewShareLinkHandler(links *sharelink.Service, resolver *access.Resolver) *ShareLinkHandler {
	return &ShareLinkHandler{links: links, resolver: resolver}
}

// requireManager checks that the caller, by user identity, can edit the
// ballot. Share links never manage other share links.
func (h *ShareLinkHandler) requireManager(r *http.Request, ballotID string) error {
	_, err := h.resolver.Require(r.Context(), ballotID, middleware.UserID(r), "", access.Edit)
	return err
}

func shareURL(ballotID, token string) string {
	return "/ballots/" + url.PathEscape(ballotID) + "?" + middleware.ShareTokenParam + "=" + url.QueryEscape(token)
}

// CreateShareLink handles POST /ballots/{id}/share-links
func (h *ShareLinkHandler) CreateShareLink(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}

	var req models.CreateShareLinkRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.requireManager(r, ballotID); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	link, err := h.links.Create(r.Context(), ballotID, req.Permission, middleware.UserID(r), req.ExpiresAt)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.ShareLinkResponse{
		ShareLink: link,
		ShareURL:  shareURL(ballotID, link.Token),
	})
}

// ListShareLinks handles GET /ballots/{id}/share-links
func (h *ShareLinkHandler) ListShareLinks(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}

	if err := h.requireManager(r, ballotID); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	links, err := h.links.List(r.Context(), ballotID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, links)
}

// DeactivateShareLink handles DELETE /ballots/{id}/share-links/{linkID}
func (h *ShareLinkHandler) DeactivateShareLink(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}
	linkID, ok := pathValue(w, r, "linkID")
	if !ok {
		return
	}

	if err := h.requireManager(r, ballotID); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	link, err := h.links.Get(r.Context(), linkID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	if link.BallotID != ballotID {
		middleware.WriteError(w, r, apperr.NotFound("share link %s", linkID))
		return
	}

	if err := h.links.Deactivate(r.Context(), linkID); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
