// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/models"
)

const ballotColumns = `id, name, description, owner_id, organization_id, status, is_open,
	is_public, close_date, candidate_count, vote_count, created_at, updated_at`

func scanBallot(row scanner) (models.Ballot, error) {
	var b models.Ballot
	err := row.Scan(
		&b.ID, &b.Name, &b.Description, &b.OwnerID, &b.OrganizationID, &b.Status, &b.IsOpen,
		&b.IsPublic, &b.CloseDate, &b.CandidateCount, &b.VoteCount, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return models.Ballot{}, err
	}
	normalize(b.CloseDate)
	normalize(&b.CreatedAt)
	normalize(&b.UpdatedAt)
	return b, nil
}

func collectBallots(rows *sql.Rows) ([]models.Ballot, error) {
	defer rows.Close()

	ballots := []models.Ballot{}
	for rows.Next() {
		b, err := scanBallot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ballot: %w", err)
		}
		ballots = append(ballots, b)
	}
	return ballots, rows.Err()
}

// CreateBallot inserts b. IsOpen is derived from Status.
func (s *Store) CreateBallot(ctx context.Context, b models.Ballot) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO ballots (id, name, description, owner_id, organization_id, status, is_open,
			is_public, close_date, candidate_count, vote_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, 0, $10, $11)
	`, b.ID, b.Name, b.Description, b.OwnerID, b.OrganizationID, b.Status, b.Status == models.StatusOpen,
		b.IsPublic, utcPtr(b.CloseDate), utc(b.CreatedAt), utc(b.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert ballot: %w", err)
	}
	return nil
}

func (s *Store) GetBallot(ctx context.Context, id string) (models.Ballot, error) {
	b, err := scanBallot(s.q.QueryRowContext(ctx,
		`SELECT `+ballotColumns+` FROM ballots WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Ballot{}, apperr.NotFound("ballot %s", id)
	}
	if err != nil {
		return models.Ballot{}, fmt.Errorf("failed to query ballot: %w", err)
	}
	return b, nil
}

// UpdateBallotDetails writes the editable, non-lifecycle fields of b
func (s *Store) UpdateBallotDetails(ctx context.Context, b models.Ballot) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE ballots
		SET name = $1, description = $2, is_public = $3, close_date = $4, updated_at = $5
		WHERE id = $6
	`, b.Name, b.Description, b.IsPublic, utcPtr(b.CloseDate), utc(b.UpdatedAt), b.ID)
	if err != nil {
		return fmt.Errorf("failed to update ballot: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return fmt.Errorf("failed to update ballot: %w", err)
	}
	if !ok {
		return apperr.NotFound("ballot %s", b.ID)
	}
	return nil
}

// SetBallotStatus moves a non-archived ballot to status, writing is_open in
// the same statement. Returns sql.ErrNoRows when the ballot is missing or
// archived.
func (s *Store) SetBallotStatus(ctx context.Context, id, status string, now time.Time) (models.Ballot, error) {
	b, err := scanBallot(s.q.QueryRowContext(ctx, `
		UPDATE ballots
		SET status = $1, is_open = $2, updated_at = $3
		WHERE id = $4 AND status <> $5
		RETURNING `+ballotColumns,
		status, status == models.StatusOpen, utc(now), id, models.StatusArchived))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Ballot{}, err
		}
		return models.Ballot{}, fmt.Errorf("failed to update ballot status: %w", err)
	}
	return b, nil
}

// DeleteBallot removes the ballot and, by cascade, everything it owns
func (s *Store) DeleteBallot(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM ballots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ballot: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return fmt.Errorf("failed to delete ballot: %w", err)
	}
	if !ok {
		return apperr.NotFound("ballot %s", id)
	}
	return nil
}

func (s *Store) ListBallotsByOwner(ctx context.Context, ownerID string) ([]models.Ballot, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+ballotColumns+`
		FROM ballots
		WHERE owner_id = $1
		ORDER BY created_at DESC, id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ballots: %w", err)
	}
	return collectBallots(rows)
}

// ListDueBallots returns open ballots whose close date is at or before now
func (s *Store) ListDueBallots(ctx context.Context, now time.Time) ([]models.Ballot, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+ballotColumns+`
		FROM ballots
		WHERE status = $1 AND is_open AND close_date IS NOT NULL AND close_date <= $2
		ORDER BY close_date, id
	`, models.StatusOpen, utc(now))
	if err != nil {
		return nil, fmt.Errorf("failed to query due ballots: %w", err)
	}
	return collectBallots(rows)
}

// PublicFilter selects marketplace ballots
type PublicFilter struct {
	ExcludeUserID  string
	Search         string     // case-insensitive substring of name or description
	OrganizationID string     // exact match when set
	ClosingAfter   *time.Time // close_date > ClosingAfter
	ClosingBy      *time.Time // close_date <= ClosingBy
}

// ListPublicBallots returns public open ballots that ExcludeUserID neither
// owns nor holds an explicit grant on
func (s *Store) ListPublicBallots(ctx context.Context, f PublicFilter) ([]models.Ballot, error) {
	var sb strings.Builder
	args := []any{models.StatusOpen, f.ExcludeUserID}

	sb.WriteString(`
		SELECT ` + ballotColumns + `
		FROM ballots b
		WHERE b.is_public AND b.status = $1 AND b.is_open
		  AND b.owner_id <> $2
		  AND NOT EXISTS (
			SELECT 1 FROM ballot_permissions p
			WHERE p.ballot_id = b.id AND p.user_id = $2
		  )`)

	if f.Search != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(f.Search))+"%")
		n := len(args)
		fmt.Fprintf(&sb, `
		  AND (LOWER(b.name) LIKE $%d ESCAPE '\' OR LOWER(b.description) LIKE $%d ESCAPE '\')`, n, n)
	}
	if f.OrganizationID != "" {
		args = append(args, f.OrganizationID)
		fmt.Fprintf(&sb, `
		  AND b.organization_id = $%d`, len(args))
	}
	if f.ClosingAfter != nil {
		args = append(args, utc(*f.ClosingAfter))
		fmt.Fprintf(&sb, `
		  AND b.close_date > $%d`, len(args))
	}
	if f.ClosingBy != nil {
		args = append(args, utc(*f.ClosingBy))
		fmt.Fprintf(&sb, `
		  AND b.close_date <= $%d`, len(args))
	}

	sb.WriteString(`
		ORDER BY CASE WHEN b.close_date IS NULL THEN 1 ELSE 0 END, b.close_date, b.created_at DESC, b.id`)

	rows, err := s.q.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query public ballots: %w", err)
	}
	return collectBallots(rows)
}

// RecountCandidates refreshes the denormalized candidate_count
func (s *Store) RecountCandidates(ctx context.Context, ballotID string, now time.Time) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE ballots
		SET candidate_count = (SELECT COUNT(*) FROM candidates WHERE ballot_id = $1),
		    updated_at = $2
		WHERE id = $1
	`, ballotID, utc(now))
	if err != nil {
		return fmt.Errorf("failed to recount candidates: %w", err)
	}
	return nil
}

// RecountVotes sets vote_count to the number of distinct voters and returns it
func (s *Store) RecountVotes(ctx context.Context, ballotID string, now time.Time) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx, `
		UPDATE ballots
		SET vote_count = (SELECT COUNT(DISTINCT user_id) FROM votes WHERE ballot_id = $1),
		    updated_at = $2
		WHERE id = $1
		RETURNING vote_count
	`, ballotID, utc(now)).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.NotFound("ballot %s", ballotID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to recount votes: %w", err)
	}
	return count, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
