// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Ballotbox API.

# Route Registration

NewRouter wires the store, services and handlers and returns an
http.ServeMux with every endpoint. Every component logs through the given
logger:

	mux := router.NewRouter(db, logger)

# Endpoints

Health:

	GET /health

Ballots (routes marked * require X-User-ID):

	POST   /ballots *                         - Create ballot
	GET    /ballots/mine *                    - Ballots the caller owns
	GET    /ballots/{id}                      - Ballot and candidates
	PATCH  /ballots/{id}                      - Update details
	DELETE /ballots/{id} *                    - Delete (owner only)
	GET    /ballots/{id}/access               - Caller's access decision
	POST   /ballots/{id}/candidates           - Add candidate
	DELETE /ballots/{id}/candidates/{candidateID}
	POST   /ballots/{id}/open                 - Open for voting
	POST   /ballots/{id}/close                - Stop voting

Voting and results:

	PUT /ballots/{id}/votes *    - Save scores
	GET /ballots/{id}/votes/me * - Caller's saved scores
	GET /ballots/{id}/results    - Averages, best first

Sharing (all require X-User-ID):

	POST   /ballots/{id}/share-links
	GET    /ballots/{id}/share-links
	DELETE /ballots/{id}/share-links/{linkID}
	POST   /ballots/{id}/grants
	GET    /ballots/{id}/grants
	DELETE /ballots/{id}/grants/{grantID}
	POST   /ballots/{id}/invitations
	POST   /ballots/{id}/invitations/accept  - Uses the verified X-User-Email

Marketplace:

	GET  /marketplace          - search, organization_id, closing_soon
	POST /ballots/{id}/join *  - Join a public open ballot as voter

Organizations (all require X-User-ID):

	POST   /organizations
	GET    /organizations/{id}/members
	POST   /organizations/{id}/members
	DELETE /organizations/{id}/members/me
*/
package router
