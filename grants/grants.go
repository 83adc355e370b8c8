// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package grants

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

// Service manages explicit per-user grants and email invitations.
// Grants are managed by user identity only; share links cannot manage them.
type Service struct {
	store    *store.Store
	resolver *access.Resolver
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(st *store.Store, resolver *access.Resolver, logger *slog.Logger) *Service {
	return &Service{store: st, resolver: resolver, logger: telemetry.ResolveLogger(logger), now: time.Now}
}

// authorize checks that actorID may hand out level on the ballot. Editors may
// grant up to editor; only the owner may grant admin.
func (s *Service) authorize(ctx context.Context, actorID, ballotID, level string) (models.Ballot, error) {
	if !models.ValidPermission(level) {
		return models.Ballot{}, apperr.Invalid("unknown permission %q", level)
	}
	d, err := s.resolver.Require(ctx, ballotID, actorID, "", access.Edit)
	if err != nil {
		return models.Ballot{}, err
	}
	if level == models.PermissionAdmin && !d.IsOwner {
		return models.Ballot{}, apperr.Unauthorized("only the owner may grant admin on ballot %s", ballotID)
	}
	return s.store.GetBallot(ctx, ballotID)
}

// Grant gives userID level on a ballot, replacing any level they already
// hold
func (s *Service) Grant(ctx context.Context, actorID, ballotID, userID, level string) (models.Grant, error) {
	if err := auth.CheckUserID(userID); err != nil {
		return models.Grant{}, apperr.Invalid("%v", err)
	}
	ballot, err := s.authorize(ctx, actorID, ballotID, level)
	if err != nil {
		return models.Grant{}, err
	}
	if userID == ballot.OwnerID {
		return models.Grant{}, apperr.InvalidState("user %s owns ballot %s", userID, ballotID)
	}

	existing, err := s.store.GetUserGrant(ctx, ballotID, userID)
	switch {
	case err == nil:
		if existing.Permission == models.PermissionAdmin && actorID != ballot.OwnerID {
			return models.Grant{}, apperr.Unauthorized("only the owner may change an admin grant")
		}
		if err := s.store.UpdateGrantPermission(ctx, existing.ID, level); err != nil {
			return models.Grant{}, err
		}
		existing.Permission = level
		s.logger.Info("grant updated", "ballot_id", ballotID, "user_id", userID, "permission", level)
		return existing, nil
	case !errors.Is(err, apperr.ErrNotFound):
		return models.Grant{}, err
	}

	now := s.now().UTC()
	g := models.Grant{
		ID:         auth.NewID(),
		BallotID:   ballotID,
		UserID:     &userID,
		Permission: level,
		CreatedBy:  actorID,
		CreatedAt:  now,
		AcceptedAt: &now,
	}
	if err := s.store.CreateGrant(ctx, g); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.Grant{}, apperr.InvalidState("user %s already has a grant on ballot %s", userID, ballotID)
		}
		return models.Grant{}, err
	}

	s.logger.Info("grant created", "ballot_id", ballotID, "user_id", userID, "permission", level)
	return g, nil
}

// Invite records a pending grant for an email address. It confers nothing
// until accepted.
func (s *Service) Invite(ctx context.Context, actorID, ballotID, email, level string) (models.Grant, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return models.Grant{}, apperr.Invalid("invalid email %q", email)
	}
	if _, err := s.authorize(ctx, actorID, ballotID, level); err != nil {
		return models.Grant{}, err
	}

	g := models.Grant{
		ID:           auth.NewID(),
		BallotID:     ballotID,
		InvitedEmail: &email,
		Permission:   level,
		CreatedBy:    actorID,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateGrant(ctx, g); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.Grant{}, apperr.InvalidState("%s is already invited to ballot %s", email, ballotID)
		}
		return models.Grant{}, err
	}

	s.logger.Info("invitation created", "ballot_id", ballotID, "grant_id", g.ID, "permission", level)
	return g, nil
}

// AcceptInvitation binds the pending invitation for email to userID. The
// caller is trusted to have verified that userID owns email.
func (s *Service) AcceptInvitation(ctx context.Context, ballotID, email, userID string) (models.Grant, error) {
	if err := auth.CheckUserID(userID); err != nil {
		return models.Grant{}, apperr.Invalid("%v", err)
	}

	invite, err := s.store.GetInvitation(ctx, ballotID, normalizeEmail(email))
	if err != nil {
		return models.Grant{}, err
	}
	if invite.UserID != nil {
		return models.Grant{}, apperr.InvalidState("invitation %s was already accepted", invite.ID)
	}

	if err := s.store.AcceptInvitation(ctx, invite.ID, userID, s.now()); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.Grant{}, apperr.InvalidState("user %s already has a grant on ballot %s", userID, ballotID)
		}
		return models.Grant{}, err
	}

	s.logger.Info("invitation accepted", "ballot_id", ballotID, "grant_id", invite.ID, "user_id", userID)
	return s.store.GetGrant(ctx, ballotID, invite.ID)
}

// Revoke deletes a grant or pending invitation. Admin grants can only be
// revoked by the owner.
func (s *Service) Revoke(ctx context.Context, actorID, ballotID, grantID string) error {
	d, err := s.resolver.Require(ctx, ballotID, actorID, "", access.Edit)
	if err != nil {
		return err
	}
	g, err := s.store.GetGrant(ctx, ballotID, grantID)
	if err != nil {
		return err
	}
	if g.Permission == models.PermissionAdmin && !d.IsOwner {
		return apperr.Unauthorized("only the owner may revoke an admin grant")
	}

	if err := s.store.DeleteGrant(ctx, ballotID, grantID); err != nil {
		return err
	}

	s.logger.Info("grant revoked", "ballot_id", ballotID, "grant_id", grantID)
	return nil
}

// List returns every grant and invitation on a ballot
func (s *Service) List(ctx context.Context, actorID, ballotID string) ([]models.Grant, error) {
	if _, err := s.resolver.Require(ctx, ballotID, actorID, "", access.Edit); err != nil {
		return nil, err
	}
	return s.store.ListGrants(ctx, ballotID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
