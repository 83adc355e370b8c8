// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package access

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/sharelink"
	"github.com/danielhkuo/ballotbox/store"
	"github.com/danielhkuo/ballotbox/telemetry"
)

// Capability is one thing a caller may do with a ballot
type Capability int

const (
	View Capability = iota
	Vote
	Edit
)

func (c Capability) String() string {
	switch c {
	case View:
		return "view"
	case Vote:
		return "vote"
	case Edit:
		return "edit"
	default:
		return "unknown"
	}
}

// Allows reports whether d grants c
func Allows(d models.AccessDecision, c Capability) bool {
	switch c {
	case View:
		return d.CanView
	case Vote:
		return d.CanVote
	case Edit:
		return d.CanEdit
	default:
		return false
	}
}

type Resolver struct {
	store  *store.Store
	links  *sharelink.Service
	logger *slog.Logger
}

func NewResolver(st *store.Store, links *sharelink.Service, logger *slog.Logger) *Resolver {
	return &Resolver{store: st, links: links, logger: telemetry.ResolveLogger(logger)}
}

// Resolve computes what the caller may do with a ballot. userID and token are
// both optional. The first matching rule wins: share link, owner, explicit
// grant, organization membership. Nothing is cached.
func (r *Resolver) Resolve(ctx context.Context, ballotID, userID, token string) (decision models.AccessDecision, err error) {
	ctx, span := telemetry.Start(ctx, "access.Resolve",
		attribute.String("ballot.id", ballotID),
		attribute.Bool("share_link", token != ""),
	)
	defer func() { telemetry.End(span, err) }()

	ballot, err := r.store.GetBallot(ctx, ballotID)
	if err != nil {
		return models.AccessDecision{}, err
	}

	if token != "" {
		d, ok, err := r.viaShareLink(ctx, ballotID, token)
		if err != nil {
			return models.AccessDecision{}, err
		}
		if ok {
			return d, nil
		}
	}

	if userID == "" {
		return models.AccessDecision{}, nil
	}

	if userID == ballot.OwnerID {
		return models.AccessDecision{CanView: true, CanVote: true, CanEdit: true, IsOwner: true}, nil
	}

	grant, err := r.store.GetUserGrant(ctx, ballotID, userID)
	switch {
	case err == nil:
		return grantDecision(grant.Permission), nil
	case !errors.Is(err, apperr.ErrNotFound):
		return models.AccessDecision{}, err
	}

	if ballot.OrganizationID != nil {
		member, err := r.store.IsMember(ctx, *ballot.OrganizationID, userID)
		if err != nil {
			return models.AccessDecision{}, err
		}
		if member {
			return models.AccessDecision{CanView: true, CanVote: true}, nil
		}
	}

	return models.AccessDecision{}, nil
}

// viaShareLink applies the share-link rule. ok is false when the token is
// unusable for this ballot and resolution should fall through.
func (r *Resolver) viaShareLink(ctx context.Context, ballotID, token string) (models.AccessDecision, bool, error) {
	link, err := r.links.Validate(ctx, token)
	if err != nil {
		if apperr.Kind(err) != nil {
			r.logger.Debug("share link rejected", "ballot_id", ballotID, "error", err)
			return models.AccessDecision{}, false, nil
		}
		return models.AccessDecision{}, false, err
	}
	if link.BallotID != ballotID {
		r.logger.Debug("share link belongs to another ballot", "ballot_id", ballotID, "link_id", link.ID)
		return models.AccessDecision{}, false, nil
	}

	if err := r.links.RecordUse(ctx, link.ID); err != nil {
		r.logger.Warn("failed to record share link use", "link_id", link.ID, "error", err)
	}

	d := models.AccessDecision{CanView: true, ViaShareLink: true}
	switch link.Permission {
	case models.LinkVote:
		d.CanVote = true
	case models.LinkAdmin:
		d.CanVote = true
		d.CanEdit = true
	}
	return d, true, nil
}

func grantDecision(permission string) models.AccessDecision {
	switch permission {
	case models.PermissionViewer:
		return models.AccessDecision{CanView: true}
	case models.PermissionVoter:
		return models.AccessDecision{CanView: true, CanVote: true}
	case models.PermissionEditor, models.PermissionAdmin:
		return models.AccessDecision{CanView: true, CanVote: true, CanEdit: true}
	default:
		return models.AccessDecision{}
	}
}

// Require resolves access and fails with apperr.ErrUnauthorized unless the
// caller has capability c
func (r *Resolver) Require(ctx context.Context, ballotID, userID, token string, c Capability) (models.AccessDecision, error) {
	d, err := r.Resolve(ctx, ballotID, userID, token)
	if err != nil {
		return models.AccessDecision{}, err
	}
	if !Allows(d, c) {
		return d, apperr.Unauthorized("%s access to ballot %s denied", c, ballotID)
	}
	return d, nil
}
