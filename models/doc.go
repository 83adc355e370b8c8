// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, and response types for the API.

# Domain Types

  - Ballot: ballot metadata and lifecycle state
  - Candidate: an option within a ballot
  - Vote: one user's score (0-99) for one candidate
  - Grant: explicit per-user permission, or a pending email invitation
  - ShareLink: anonymous token-based capability
  - Organization, Membership: groups whose members may vote on group ballots
  - AccessDecision: resolved capabilities for one access attempt
  - CandidateResult: average score row for the results display

# Request Types

  - CreateBallotRequest, UpdateBallotRequest, AddCandidateRequest
  - SaveVotesRequest: scores (map[string]int)
  - CreateShareLinkRequest, GrantRequest, InviteRequest
  - CreateOrganizationRequest, AddMemberRequest

# Constants

Ballot status values:

	StatusDraft    = "draft"
	StatusOpen     = "open"
	StatusClosed   = "closed"
	StatusArchived = "archived"

Explicit grant levels (ordered):

	PermissionViewer < PermissionVoter < PermissionEditor < PermissionAdmin

Share link permissions:

	LinkView, LinkVote, LinkAdmin

IsOpen must always equal Status == StatusOpen.
*/
package models
