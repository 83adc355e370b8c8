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

func (s *Store) CreateOrganization(ctx context.Context, o models.Organization) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO organizations (id, name, owner_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, o.ID, o.Name, o.OwnerID, utc(o.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert organization: %w", err)
	}
	return nil
}

func (s *Store) GetOrganization(ctx context.Context, id string) (models.Organization, error) {
	var o models.Organization
	err := s.q.QueryRowContext(ctx, `
		SELECT id, name, owner_id, created_at FROM organizations WHERE id = $1
	`, id).Scan(&o.ID, &o.Name, &o.OwnerID, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Organization{}, apperr.NotFound("organization %s", id)
	}
	if err != nil {
		return models.Organization{}, fmt.Errorf("failed to query organization: %w", err)
	}
	normalize(&o.CreatedAt)
	return o, nil
}

// AddMember inserts a membership. Returns ErrDuplicate if it already exists.
func (s *Store) AddMember(ctx context.Context, m models.Membership) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO organization_members (organization_id, user_id, joined_at)
		VALUES ($1, $2, $3)
	`, m.OrganizationID, m.UserID, utc(m.JoinedAt))
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: member %s", ErrDuplicate, m.UserID)
		}
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

func (s *Store) RemoveMember(ctx context.Context, orgID, userID string) error {
	res, err := s.q.ExecContext(ctx, `
		DELETE FROM organization_members WHERE organization_id = $1 AND user_id = $2
	`, orgID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if !ok {
		return apperr.NotFound("member %s of organization %s", userID, orgID)
	}
	return nil
}

func (s *Store) IsMember(ctx context.Context, orgID, userID string) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM organization_members
			WHERE organization_id = $1 AND user_id = $2
		)
	`, orgID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

func (s *Store) ListMembers(ctx context.Context, orgID string) ([]models.Membership, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT organization_id, user_id, joined_at
		FROM organization_members
		WHERE organization_id = $1
		ORDER BY joined_at, user_id
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	members := []models.Membership{}
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.OrganizationID, &m.UserID, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		normalize(&m.JoinedAt)
		members = append(members, m)
	}
	return members, rows.Err()
}
