// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ballotbox/access"
	"github.com/danielhkuo/ballotbox/ballots"
	"github.com/danielhkuo/ballotbox/grants"
	"github.com/danielhkuo/ballotbox/handlers"
	"github.com/danielhkuo/ballotbox/lifecycle"
	"github.com/danielhkuo/ballotbox/marketplace"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/orgs"
	"github.com/danielhkuo/ballotbox/sharelink"
	"github.com/danielhkuo/ballotbox/store"
	"github.com/danielhkuo/ballotbox/telemetry"
	"github.com/danielhkuo/ballotbox/voting"
)

// Version is reported by the root endpoint
const Version = "ballotbox API v1"

// NewRouter wires every service and handler over db. A nil logger means
// slog.Default().
func NewRouter(db *sql.DB, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	logger = telemetry.ResolveLogger(logger)

	st := store.New(db)
	links := sharelink.NewService(st, logger)
	resolver := access.NewResolver(st, links, logger)
	manager := lifecycle.NewManager(st, logger)
	aggregator := voting.NewAggregator(st, logger)

	// Initialize handlers
	ballotHandler := handlers.NewBallotHandler(ballots.NewService(st, resolver, logger), manager, resolver)
	votingHandler := handlers.NewVotingHandler(aggregator, resolver)
	resultsHandler := handlers.NewResultsHandler(st, aggregator, resolver)
	shareHandler := handlers.NewShareLinkHandler(links, resolver)
	grantHandler := handlers.NewGrantHandler(grants.NewService(st, resolver, logger))
	marketHandler := handlers.NewMarketplaceHandler(marketplace.NewFilter(st, logger))
	orgHandler := handlers.NewOrgHandler(orgs.NewService(st, logger))

	user := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireUser(h))
	}
	public := middleware.WithLogging

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Ballot management
	mux.HandleFunc("POST /ballots", user(ballotHandler.CreateBallot))
	mux.HandleFunc("GET /ballots/mine", user(ballotHandler.ListMyBallots))
	mux.HandleFunc("GET /ballots/{id}", public(ballotHandler.GetBallot))
	mux.HandleFunc("PATCH /ballots/{id}", public(ballotHandler.UpdateBallot))
	mux.HandleFunc("DELETE /ballots/{id}", user(ballotHandler.DeleteBallot))
	mux.HandleFunc("GET /ballots/{id}/access", public(ballotHandler.GetAccess))
	mux.HandleFunc("POST /ballots/{id}/candidates", public(ballotHandler.AddCandidate))
	mux.HandleFunc("DELETE /ballots/{id}/candidates/{candidateID}", public(ballotHandler.RemoveCandidate))
	mux.HandleFunc("POST /ballots/{id}/open", public(ballotHandler.OpenBallot))
	mux.HandleFunc("POST /ballots/{id}/close", public(ballotHandler.CloseBallot))

	// Voting and results
	mux.HandleFunc("PUT /ballots/{id}/votes", user(votingHandler.SaveVotes))
	mux.HandleFunc("GET /ballots/{id}/votes/me", user(votingHandler.GetMyVotes))
	mux.HandleFunc("GET /ballots/{id}/results", public(resultsHandler.GetResults))

	// Sharing
	mux.HandleFunc("POST /ballots/{id}/share-links", user(shareHandler.CreateShareLink))
	mux.HandleFunc("GET /ballots/{id}/share-links", user(shareHandler.ListShareLinks))
	mux.HandleFunc("DELETE /ballots/{id}/share-links/{linkID}", user(shareHandler.DeactivateShareLink))
	mux.HandleFunc("POST /ballots/{id}/grants", user(grantHandler.Grant))
	mux.HandleFunc("GET /ballots/{id}/grants", user(grantHandler.List))
	mux.HandleFunc("DELETE /ballots/{id}/grants/{grantID}", user(grantHandler.Revoke))
	mux.HandleFunc("POST /ballots/{id}/invitations", user(grantHandler.Invite))
	mux.HandleFunc("POST /ballots/{id}/invitations/accept", user(grantHandler.AcceptInvitation))

	// Marketplace
	mux.HandleFunc("GET /marketplace", public(marketHandler.ListPublicBallots))
	mux.HandleFunc("POST /ballots/{id}/join", user(marketHandler.JoinBallot))

	// Organizations
	mux.HandleFunc("POST /organizations", user(orgHandler.CreateOrganization))
	mux.HandleFunc("GET /organizations/{id}/members", user(orgHandler.ListMembers))
	mux.HandleFunc("POST /organizations/{id}/members", user(orgHandler.AddMember))
	mux.HandleFunc("DELETE /organizations/{id}/members/me", user(orgHandler.Leave))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(Version))
	})

	return mux
}
