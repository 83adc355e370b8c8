// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package orgs

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/store"
	"github.com/danielhkuo/ballotbox/telemetry"
)

type Service struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(st *store.Store, logger *slog.Logger) *Service {
	return &Service{store: st, logger: telemetry.ResolveLogger(logger), now: time.Now}
}

// Create makes an organization; the owner is its first member
func (s *Service) Create(ctx context.Context, ownerID, name string) (models.Organization, error) {
	if err := auth.CheckUserID(ownerID); err != nil {
		return models.Organization{}, apperr.Invalid("%v", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Organization{}, apperr.Invalid("name is required")
	}

	now := s.now().UTC()
	org := models.Organization{ID: auth.NewID(), Name: name, OwnerID: ownerID, CreatedAt: now}

	err := s.store.InTx(ctx, func(tx *store.Store) error {
		if err := tx.CreateOrganization(ctx, org); err != nil {
			return err
		}
		return tx.AddMember(ctx, models.Membership{OrganizationID: org.ID, UserID: ownerID, JoinedAt: now})
	})
	if err != nil {
		return models.Organization{}, err
	}

	s.logger.Info("organization created", "organization_id", org.ID, "owner_id", ownerID)
	return org, nil
}

func (s *Service) Get(ctx context.Context, orgID string) (models.Organization, error) {
	return s.store.GetOrganization(ctx, orgID)
}

// AddMember adds userID to the organization. Only the organization owner may
// add members.
func (s *Service) AddMember(ctx context.Context, actorID, orgID, userID string) (models.Membership, error) {
	if err := auth.CheckUserID(userID); err != nil {
		return models.Membership{}, apperr.Invalid("%v", err)
	}
	org, err := s.store.GetOrganization(ctx, orgID)
	if err != nil {
		return models.Membership{}, err
	}
	if actorID != org.OwnerID {
		return models.Membership{}, apperr.Unauthorized("only the owner may add members to organization %s", orgID)
	}

	m := models.Membership{OrganizationID: orgID, UserID: userID, JoinedAt: s.now().UTC()}
	if err := s.store.AddMember(ctx, m); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.Membership{}, apperr.InvalidState("user %s is already a member of organization %s", userID, orgID)
		}
		return models.Membership{}, err
	}

	s.logger.Info("member added", "organization_id", orgID, "user_id", userID)
	return m, nil
}

// Leave removes userID from the organization. The owner cannot leave.
func (s *Service) Leave(ctx context.Context, orgID, userID string) error {
	org, err := s.store.GetOrganization(ctx, orgID)
	if err != nil {
		return err
	}
	if userID == org.OwnerID {
		return apperr.InvalidState("the owner cannot leave organization %s", orgID)
	}
	if err := s.store.RemoveMember(ctx, orgID, userID); err != nil {
		return err
	}

	s.logger.Info("member left", "organization_id", orgID, "user_id", userID)
	return nil
}

// ListMembers returns the roster; only members may see it
func (s *Service) ListMembers(ctx context.Context, actorID, orgID string) ([]models.Membership, error) {
	if _, err := s.store.GetOrganization(ctx, orgID); err != nil {
		return nil, err
	}
	member, err := s.store.IsMember(ctx, orgID, actorID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperr.Unauthorized("user %s is not a member of organization %s", actorID, orgID)
	}
	return s.store.ListMembers(ctx, orgID)
}
