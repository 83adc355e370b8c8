// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballots

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/danielhkuo/ballotbox/access"
	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/store"
	"github.com/danielhkuo/ballotbox/telemetry"
)

// Service manages ballots and their candidates
type Service struct {
	store    *store.Store
	resolver *access.Resolver
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(st *store.Store, resolver *access.Resolver, logger *slog.Logger) *Service {
	return &Service{store: st, resolver: resolver, logger: telemetry.ResolveLogger(logger), now: time.Now}
}

// Create makes a ballot owned by ownerID, in draft or, if req.Open, open.
// Ballots placed in an organization require the owner to be a member.
func (s *Service) Create(ctx context.Context, ownerID string, req models.CreateBallotRequest) (models.Ballot, error) {
	if err := auth.CheckUserID(ownerID); err != nil {
		return models.Ballot{}, apperr.Invalid("%v", err)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Ballot{}, apperr.Invalid("name is required")
	}
	now := s.now().UTC()
	if req.CloseDate != nil && !req.CloseDate.After(now) {
		return models.Ballot{}, apperr.Invalid("close date must be in the future")
	}

	if req.OrganizationID != nil {
		if _, err := s.store.GetOrganization(ctx, *req.OrganizationID); err != nil {
			return models.Ballot{}, err
		}
		member, err := s.store.IsMember(ctx, *req.OrganizationID, ownerID)
		if err != nil {
			return models.Ballot{}, err
		}
		if !member {
			return models.Ballot{}, apperr.Unauthorized("user %s is not a member of organization %s", ownerID, *req.OrganizationID)
		}
	}

	status := models.StatusDraft
	if req.Open {
		status = models.StatusOpen
	}

	b := models.Ballot{
		ID:             auth.NewID(),
		Name:           name,
		Description:    req.Description,
		OwnerID:        ownerID,
		OrganizationID: req.OrganizationID,
		Status:         status,
		IsOpen:         status == models.StatusOpen,
		IsPublic:       req.IsPublic,
		CloseDate:      utcPtr(req.CloseDate),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateBallot(ctx, b); err != nil {
		return models.Ballot{}, err
	}

	s.logger.Info("ballot created", "ballot_id", b.ID, "owner_id", ownerID, "status", status)
	return b, nil
}

// Get returns the ballot with its candidates and the caller's access
func (s *Service) Get(ctx context.Context, ballotID, userID, token string) (models.BallotWithCandidates, models.AccessDecision, error) {
	d, err := s.resolver.Require(ctx, ballotID, userID, token, access.View)
	if err != nil {
		return models.BallotWithCandidates{}, models.AccessDecision{}, err
	}

	b, err := s.store.GetBallot(ctx, ballotID)
	if err != nil {
		return models.BallotWithCandidates{}, models.AccessDecision{}, err
	}
	candidates, err := s.store.ListCandidates(ctx, ballotID)
	if err != nil {
		return models.BallotWithCandidates{}, models.AccessDecision{}, err
	}

	return models.BallotWithCandidates{Ballot: b, Candidates: candidates}, d, nil
}

// AddCandidate adds a candidate to a ballot the caller can edit
func (s *Service) AddCandidate(ctx context.Context, ballotID, userID, token string, req models.AddCandidateRequest) (models.Candidate, error) {
	if _, err := s.resolver.Require(ctx, ballotID, userID, token, access.Edit); err != nil {
		return models.Candidate{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Candidate{}, apperr.Invalid("name is required")
	}

	now := s.now().UTC()
	c := models.Candidate{
		ID:          auth.NewID(),
		BallotID:    ballotID,
		Name:        name,
		Description: req.Description,
		ImageLink:   req.ImageLink,
		CreatedAt:   now,
	}

	err := s.store.InTx(ctx, func(tx *store.Store) error {
		b, err := tx.GetBallot(ctx, ballotID)
		if err != nil {
			return err
		}
		if b.Status == models.StatusArchived {
			return apperr.InvalidState("ballot %s is archived", ballotID)
		}
		if err := tx.CreateCandidate(ctx, c); err != nil {
			return err
		}
		return tx.RecountCandidates(ctx, ballotID, now)
	})
	if err != nil {
		return models.Candidate{}, err
	}

	s.logger.Info("candidate added", "ballot_id", ballotID, "candidate_id", c.ID)
	return c, nil
}

// RemoveCandidate deletes a candidate and its votes, then refreshes the
// ballot's candidate and voter counts
func (s *Service) RemoveCandidate(ctx context.Context, ballotID, candidateID, userID, token string) error {
	if _, err := s.resolver.Require(ctx, ballotID, userID, token, access.Edit); err != nil {
		return err
	}

	now := s.now()
	err := s.store.InTx(ctx, func(tx *store.Store) error {
		b, err := tx.GetBallot(ctx, ballotID)
		if err != nil {
			return err
		}
		if b.Status == models.StatusArchived {
			return apperr.InvalidState("ballot %s is archived", ballotID)
		}
		if err := tx.DeleteCandidate(ctx, ballotID, candidateID); err != nil {
			return err
		}
		if err := tx.RecountCandidates(ctx, ballotID, now); err != nil {
			return err
		}
		_, err = tx.RecountVotes(ctx, ballotID, now)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("candidate removed", "ballot_id", ballotID, "candidate_id", candidateID)
	return nil
}

// Update changes a ballot's name, description, visibility or close date.
// Lifecycle state is changed through package lifecycle instead.
func (s *Service) Update(ctx context.Context, ballotID, userID, token string, req models.UpdateBallotRequest) (models.Ballot, error) {
	if _, err := s.resolver.Require(ctx, ballotID, userID, token, access.Edit); err != nil {
		return models.Ballot{}, err
	}

	b, err := s.store.GetBallot(ctx, ballotID)
	if err != nil {
		return models.Ballot{}, err
	}
	if b.Status == models.StatusArchived {
		return models.Ballot{}, apperr.InvalidState("ballot %s is archived", ballotID)
	}

	now := s.now().UTC()
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return models.Ballot{}, apperr.Invalid("name cannot be empty")
		}
		b.Name = name
	}
	if req.Description != nil {
		b.Description = *req.Description
	}
	if req.IsPublic != nil {
		b.IsPublic = *req.IsPublic
	}
	switch {
	case req.ClearClose:
		b.CloseDate = nil
	case req.CloseDate != nil:
		if !req.CloseDate.After(now) {
			return models.Ballot{}, apperr.Invalid("close date must be in the future")
		}
		b.CloseDate = utcPtr(req.CloseDate)
	}
	b.UpdatedAt = now

	if err := s.store.UpdateBallotDetails(ctx, b); err != nil {
		return models.Ballot{}, err
	}

	s.logger.Info("ballot updated", "ballot_id", ballotID)
	return b, nil
}

// Delete removes a ballot and everything attached to it. Only the owner may
// delete; editors and share links may not.
func (s *Service) Delete(ctx context.Context, ballotID, userID string) error {
	b, err := s.store.GetBallot(ctx, ballotID)
	if err != nil {
		return err
	}
	if userID == "" || b.OwnerID != userID {
		return apperr.Unauthorized("only the owner may delete ballot %s", ballotID)
	}

	if err := s.store.DeleteBallot(ctx, ballotID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// Deleted concurrently; the outcome is the same
			return nil
		}
		return err
	}

	s.logger.Info("ballot deleted", "ballot_id", ballotID)
	return nil
}

// ListOwned returns the ballots userID owns, newest first
func (s *Service) ListOwned(ctx context.Context, userID string) ([]models.Ballot, error) {
	if err := auth.CheckUserID(userID); err != nil {
		return nil, apperr.Invalid("%v", err)
	}
	return s.store.ListBallotsByOwner(ctx, userID)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
