// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/models"
)

const grantColumns = `id, ballot_id, user_id, invited_email, permission, created_by, created_at, accepted_at`

func scanGrant(row scanner) (models.Grant, error) {
	var g models.Grant
	err := row.Scan(&g.ID, &g.BallotID, &g.UserID, &g.InvitedEmail, &g.Permission,
		&g.CreatedBy, &g.CreatedAt, &g.AcceptedAt)
	if err != nil {
		return models.Grant{}, err
	}
	normalize(&g.CreatedAt)
	normalize(g.AcceptedAt)
	return g, nil
}

func (s *Store) getGrant(ctx context.Context, what, query string, args ...any) (models.Grant, error) {
	g, err := scanGrant(s.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Grant{}, apperr.NotFound("%s", what)
	}
	if err != nil {
		return models.Grant{}, fmt.Errorf("failed to query grant: %w", err)
	}
	return g, nil
}

// CreateGrant inserts g. Returns ErrDuplicate when the user or email already
// has a row on the ballot.
func (s *Store) CreateGrant(ctx context.Context, g models.Grant) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO ballot_permissions (id, ballot_id, user_id, invited_email, permission, created_by, created_at, accepted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, g.ID, g.BallotID, g.UserID, g.InvitedEmail, g.Permission, g.CreatedBy, utc(g.CreatedAt), utcPtr(g.AcceptedAt))
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: grant on ballot %s", ErrDuplicate, g.BallotID)
		}
		return fmt.Errorf("failed to insert grant: %w", err)
	}
	return nil
}

func (s *Store) GetGrant(ctx context.Context, ballotID, id string) (models.Grant, error) {
	return s.getGrant(ctx, "grant "+id, `
		SELECT `+grantColumns+` FROM ballot_permissions WHERE id = $1 AND ballot_id = $2
	`, id, ballotID)
}

// GetUserGrant returns the accepted grant held by userID on a ballot
func (s *Store) GetUserGrant(ctx context.Context, ballotID, userID string) (models.Grant, error) {
	return s.getGrant(ctx, "grant for user "+userID, `
		SELECT `+grantColumns+` FROM ballot_permissions WHERE ballot_id = $1 AND user_id = $2
	`, ballotID, userID)
}

// HasUserGrant reports whether any grant row exists for userID on a ballot
func (s *Store) HasUserGrant(ctx context.Context, ballotID, userID string) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM ballot_permissions
			WHERE ballot_id = $1 AND user_id = $2
		)
	`, ballotID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check grant: %w", err)
	}
	return exists, nil
}

func (s *Store) GetInvitation(ctx context.Context, ballotID, email string) (models.Grant, error) {
	return s.getGrant(ctx, "invitation for "+email, `
		SELECT `+grantColumns+` FROM ballot_permissions WHERE ballot_id = $1 AND invited_email = $2
	`, ballotID, email)
}

// AcceptInvitation binds a pending invitation to userID. Returns ErrDuplicate
// when the user already holds another grant on the ballot.
func (s *Store) AcceptInvitation(ctx context.Context, grantID, userID string, now time.Time) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE ballot_permissions
		SET user_id = $1, accepted_at = $2
		WHERE id = $3 AND user_id IS NULL
	`, userID, utc(now), grantID)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: grant for user %s", ErrDuplicate, userID)
		}
		return fmt.Errorf("failed to accept invitation: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return fmt.Errorf("failed to accept invitation: %w", err)
	}
	if !ok {
		return apperr.InvalidState("invitation %s is not pending", grantID)
	}
	return nil
}

func (s *Store) UpdateGrantPermission(ctx context.Context, id, permission string) error {
	res, err := s.q.ExecContext(ctx, `UPDATE ballot_permissions SET permission = $1 WHERE id = $2`, permission, id)
	if err != nil {
		return fmt.Errorf("failed to update grant: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return fmt.Errorf("failed to update grant: %w", err)
	}
	if !ok {
		return apperr.NotFound("grant %s", id)
	}
	return nil
}

func (s *Store) DeleteGrant(ctx context.Context, ballotID, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM ballot_permissions WHERE id = $1 AND ballot_id = $2`, id, ballotID)
	if err != nil {
		return fmt.Errorf("failed to delete grant: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return fmt.Errorf("failed to delete grant: %w", err)
	}
	if !ok {
		return apperr.NotFound("grant %s", id)
	}
	return nil
}

func (s *Store) ListGrants(ctx context.Context, ballotID string) ([]models.Grant, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+grantColumns+`
		FROM ballot_permissions
		WHERE ballot_id = $1
		ORDER BY created_at, id
	`, ballotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query grants: %w", err)
	}
	defer rows.Close()

	grants := []models.Grant{}
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan grant: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}
