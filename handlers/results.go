// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/ballotbox/access"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/store"
	"github.com/danielhkuo/ballotbox/voting"
)

type ResultsHandler struct {
	store      *store.Store
	aggregator *voting.Aggregator
	resolver   *access.Resolver
}

func NewResultsHandler(st *store.Store, aggregator *voting.Aggregator, resolver *access.Resolver) *ResultsHandler {
	return &ResultsHandler{store: st, aggregator: aggregator, resolver: resolver}
}

// GetResults handles GET /ballots/{id}/results
// Returns per-candidate averages, best first. Unscored candidates are omitted.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := pathValue(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.resolver.Require(r.Context(), ballotID, middleware.UserID(r), middleware.ShareToken(r), access.View); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	b, err := h.store.GetBallot(r.Context(), ballotID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	rows, err := h.aggregator.GetResultRows(r.Context(), ballotID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{Ballot: b, Results: rows})
}
