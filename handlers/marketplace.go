// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/danielhkuo/ballotbox/marketplace"
	"github.com/danielhkuo/ballotbox/middleware"
)

type MarketplaceHandler struct {
	filter *marketplace.Filter
}

func NewMarketplaceHandler(filter *marketplace.Filter) *MarketplaceHandler {
	return &MarketplaceHandler{filter: filter}
}

// ListPublicBallots handles GET /marketplace
// Query parameters: search, organization_id, closing_soon=true
func (h *MarketplaceHandler) ListPublicBallots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	closingSoon := false
	if v := q.Get("closing_soon"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "closing_soon must be a boolean")
			return
		}
		closingSoon = parsed
	}

	ballots, err := h.filter.ListPublicBallots(r.Context(), marketplace.Query{
		Search:         q.Get("search"),
		OrganizationID: q.Get("organization_id"),
		ClosingSoon:    closingSoon,
		ExcludeUserID:  middleware.UserID(r),
	})
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, ballots)
}

// JoinBallot handles POST /ballots/{id}/join
func (h *MarketplaceHandler) JoinBallot(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}

	grant, err := h.filter.JoinBallot(r.Context(), ballotID, middleware.UserID(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, grant)
}
