// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/models"
)

const shareLinkColumns = `id, ballot_id, token, permission, created_by, created_at, expires_at, is_active, use_count`

func scanShareLink(row scanner) (models.ShareLink, error) {
	var l models.ShareLink
	err := row.Scan(&l.ID, &l.BallotID, &l.Token, &l.Permission, &l.CreatedBy,
		&l.CreatedAt, &l.ExpiresAt, &l.IsActive, &l.UseCount)
	if err != nil {
		return models.ShareLink{}, err
	}
	normalize(&l.CreatedAt)
	normalize(l.ExpiresAt)
	return l, nil
}

// CreateShareLink inserts l. Returns ErrDuplicate on a token collision.
func (s *Store) CreateShareLink(ctx context.Context, l models.ShareLink) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO share_links (id, ballot_id, token, permission, created_by, created_at, expires_at, is_active, use_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, l.ID, l.BallotID, l.Token, l.Permission, l.CreatedBy, utc(l.CreatedAt), utcPtr(l.ExpiresAt), l.IsActive, l.UseCount)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: share link token", ErrDuplicate)
		}
		return fmt.Errorf("failed to insert share link: %w", err)
	}
	return nil
}

func (s *Store) getShareLink(ctx context.Context, what, query string, arg any) (models.ShareLink, error) {
	l, err := scanShareLink(s.q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.ShareLink{}, apperr.NotFound("%s", what)
	}
	if err != nil {
		return models.ShareLink{}, fmt.Errorf("failed to query share link: %w", err)
	}
	return l, nil
}

func (s *Store) GetShareLink(ctx context.Context, id string) (models.ShareLink, error) {
	return s.getShareLink(ctx, "share link "+id,
		`SELECT `+shareLinkColumns+` FROM share_links WHERE id = $1`, id)
}

func (s *Store) GetShareLinkByToken(ctx context.Context, token string) (models.ShareLink, error) {
	// The token itself is never echoed into errors
	return s.getShareLink(ctx, "share link",
		`SELECT `+shareLinkColumns+` FROM share_links WHERE token = $1`, token)
}

// IncrementShareLinkUse bumps use_count in place; concurrent redemptions
// never lose an update
func (s *Store) IncrementShareLinkUse(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `UPDATE share_links SET use_count = use_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment share link use: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return fmt.Errorf("failed to increment share link use: %w", err)
	}
	if !ok {
		return apperr.NotFound("share link %s", id)
	}
	return nil
}

// DeactivateShareLink clears is_active whatever its current value
func (s *Store) DeactivateShareLink(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `UPDATE share_links SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate share link: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return fmt.Errorf("failed to deactivate share link: %w", err)
	}
	if !ok {
		return apperr.NotFound("share link %s", id)
	}
	return nil
}

func (s *Store) ListShareLinks(ctx context.Context, ballotID string) ([]models.ShareLink, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+shareLinkColumns+`
		FROM share_links
		WHERE ballot_id = $1
		ORDER BY created_at DESC, id
	`, ballotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query share links: %w", err)
	}
	defer rows.Close()

	links := []models.ShareLink{}
	for rows.Next() {
		l, err := scanShareLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan share link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}
