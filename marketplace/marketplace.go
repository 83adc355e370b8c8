// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package marketplace

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/store"
	"github.com/danielhkuo/ballotbox/telemetry"
)

// ClosingSoonWindow is how far ahead "closing soon" looks
const ClosingSoonWindow = 7 * 24 * time.Hour

// Query narrows the public listing. Zero values mean no filter.
type Query struct {
	Search         string
	OrganizationID string
	ClosingSoon    bool
	// ExcludeUserID hides ballots this user owns or already holds a grant on
	ExcludeUserID string
}

// Filter lists public ballots and lets users join them as voters
type Filter struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewFilter(st *store.Store, logger *slog.Logger) *Filter {
	return &Filter{store: st, logger: telemetry.ResolveLogger(logger), now: time.Now}
}

// ListPublicBallots returns open public ballots matching q, soonest closing
// first with undated ballots last
func (f *Filter) ListPublicBallots(ctx context.Context, q Query) (ballots []models.Ballot, err error) {
	ctx, span := telemetry.Start(ctx, "marketplace.ListPublicBallots",
		attribute.Bool("closing_soon", q.ClosingSoon),
	)
	defer func() { telemetry.End(span, err) }()

	filter := store.PublicFilter{
		ExcludeUserID:  q.ExcludeUserID,
		Search:         strings.TrimSpace(q.Search),
		OrganizationID: q.OrganizationID,
	}
	if q.ClosingSoon {
		now := f.now()
		until := now.Add(ClosingSoonWindow)
		filter.ClosingAfter = &now
		filter.ClosingBy = &until
	}

	return f.store.ListPublicBallots(ctx, filter)
}

// JoinBallot gives userID a voter grant on a public open ballot. The grant is
// created by and accepted by the joining user.
func (f *Filter) JoinBallot(ctx context.Context, ballotID, userID string) (grant models.Grant, err error) {
	ctx, span := telemetry.Start(ctx, "marketplace.JoinBallot", attribute.String("ballot.id", ballotID))
	defer func() { telemetry.End(span, err) }()

	if err := auth.CheckUserID(userID); err != nil {
		return models.Grant{}, apperr.Invalid("%v", err)
	}

	ballot, err := f.store.GetBallot(ctx, ballotID)
	if err != nil {
		return models.Grant{}, err
	}
	if !ballot.IsPublic {
		return models.Grant{}, apperr.Unauthorized("ballot %s is private", ballotID)
	}
	if ballot.Status != models.StatusOpen {
		return models.Grant{}, apperr.InvalidState("ballot %s is %s", ballotID, ballot.Status)
	}
	if ballot.OwnerID == userID {
		return models.Grant{}, apperr.InvalidState("user %s owns ballot %s", userID, ballotID)
	}

	has, err := f.store.HasUserGrant(ctx, ballotID, userID)
	if err != nil {
		return models.Grant{}, err
	}
	if has {
		return models.Grant{}, apperr.InvalidState("user %s already has access to ballot %s", userID, ballotID)
	}

	now := f.now().UTC()
	grant = models.Grant{
		ID:         auth.NewID(),
		BallotID:   ballotID,
		UserID:     &userID,
		Permission: models.PermissionVoter,
		CreatedBy:  userID,
		CreatedAt:  now,
		AcceptedAt: &now,
	}
	if err := f.store.CreateGrant(ctx, grant); err != nil {
		// A concurrent join won the unique constraint
		if errors.Is(err, store.ErrDuplicate) {
			return models.Grant{}, apperr.InvalidState("user %s already has access to ballot %s", userID, ballotID)
		}
		return models.Grant{}, err
	}

	f.logger.Info("ballot joined", "ballot_id", ballotID, "user_id", userID)
	return grant, nil
}
