// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Ballotbox API.

# Handler Types

Each handler is a struct wrapping the services it needs:

  - BallotHandler: Ballot CRUD, candidates, open/close transitions
  - VotingHandler: Score submission and the caller's saved scores
  - ResultsHandler: Per-candidate averages
  - ShareLinkHandler: Minting, listing and deactivating share links
  - GrantHandler: Explicit grants and email invitations
  - MarketplaceHandler: Public ballot discovery and self-join
  - OrgHandler: Organizations and their members

Handlers are created via constructor functions:

	ballotHandler := handlers.NewBallotHandler(ballotSvc, manager, resolver)

# Identity

The caller is identified by the X-User-ID header, set by an upstream
authenticator. Invitations are accepted against the gateway-verified
X-User-Email header, never an address from the request body. Share-link holders pass their token as ?share= or in the
X-Share-Token header. Access is resolved per request by package access.

# Errors

Service errors are mapped to status codes by middleware.WriteError:

	apperr.ErrInvalid      → 400
	apperr.ErrUnauthorized → 403
	apperr.ErrNotFound     → 404
	apperr.ErrInvalidState → 409

Anything else is logged and reported as a bare 500.
*/
package handlers
