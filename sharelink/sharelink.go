// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sharelink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/store"
	"github.com/danielhkuo/ballotbox/telemetry"
)

// tokenRetries is how many times Create regenerates a colliding token
const tokenRetries = 3

type Service struct {
	store    *store.Store
	logger   *slog.Logger
	now      func() time.Time
	generate func() (string, error)
}

func NewService(st *store.Store, logger *slog.Logger) *Service {
	return &Service{
		store:    st,
		logger:   telemetry.ResolveLogger(logger),
		now:      time.Now,
		generate: auth.GenerateShareToken,
	}
}

// Create mints an active link granting permission on a ballot.
// expiresAt may be nil for a link that never expires.
func (s *Service) Create(ctx context.Context, ballotID, permission, creatorID string, expiresAt *time.Time) (models.ShareLink, error) {
	if !models.ValidLinkPermission(permission) {
		return models.ShareLink{}, apperr.Invalid("unknown share link permission %q", permission)
	}
	now := s.now()
	if expiresAt != nil && !expiresAt.After(now) {
		return models.ShareLink{}, apperr.Invalid("expiry must be in the future")
	}
	if _, err := s.store.GetBallot(ctx, ballotID); err != nil {
		return models.ShareLink{}, err
	}

	link := models.ShareLink{
		ID:         auth.NewID(),
		BallotID:   ballotID,
		Permission: permission,
		CreatedBy:  creatorID,
		CreatedAt:  now.UTC(),
		ExpiresAt:  expiresAt,
		IsActive:   true,
	}
	if link.ExpiresAt != nil {
		exp := link.ExpiresAt.UTC()
		link.ExpiresAt = &exp
	}

	for attempt := 0; attempt <= tokenRetries; attempt++ {
		token, err := s.generate()
		if err != nil {
			return models.ShareLink{}, err
		}
		link.Token = token

		err = s.store.CreateShareLink(ctx, link)
		if err == nil {
			s.logger.Info("share link created",
				"ballot_id", ballotID,
				"link_id", link.ID,
				"permission", permission,
			)
			return link, nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return models.ShareLink{}, err
		}
		s.logger.Warn("share token collision, regenerating", "ballot_id", ballotID, "attempt", attempt+1)
	}

	return models.ShareLink{}, fmt.Errorf("failed to generate a unique share token after %d retries", tokenRetries)
}

// Validate returns the link for token if it is active and unexpired.
// It never modifies the link.
func (s *Service) Validate(ctx context.Context, token string) (models.ShareLink, error) {
	if token == "" {
		return models.ShareLink{}, apperr.NotFound("share link")
	}

	link, err := s.store.GetShareLinkByToken(ctx, token)
	if err != nil {
		return models.ShareLink{}, err
	}
	if !link.IsActive {
		return models.ShareLink{}, apperr.Invalid("share link %s is inactive", link.ID)
	}
	if link.ExpiresAt != nil && !s.now().Before(*link.ExpiresAt) {
		return models.ShareLink{}, apperr.Invalid("share link %s has expired", link.ID)
	}
	return link, nil
}

// RecordUse increments the link's use counter atomically
func (s *Service) RecordUse(ctx context.Context, linkID string) error {
	return s.store.IncrementShareLinkUse(ctx, linkID)
}

// Deactivate disables a link. Deactivating an inactive link succeeds.
func (s *Service) Deactivate(ctx context.Context, linkID string) error {
	if err := s.store.DeactivateShareLink(ctx, linkID); err != nil {
		return err
	}
	s.logger.Info("share link deactivated", "link_id", linkID)
	return nil
}

func (s *Service) Get(ctx context.Context, linkID string) (models.ShareLink, error) {
	return s.store.GetShareLink(ctx, linkID)
}

// List returns every link of a ballot, newest first
func (s *Service) List(ctx context.Context, ballotID string) ([]models.ShareLink, error) {
	return s.store.ListShareLinks(ctx, ballotID)
}
