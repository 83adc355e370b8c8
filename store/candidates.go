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

const candidateColumns = `id, ballot_id, name, description, image_link, created_at`

func scanCandidate(row scanner) (models.Candidate, error) {
	var c models.Candidate
	if err := row.Scan(&c.ID, &c.BallotID, &c.Name, &c.Description, &c.ImageLink, &c.CreatedAt); err != nil {
		return models.Candidate{}, err
	}
	normalize(&c.CreatedAt)
	return c, nil
}

func (s *Store) CreateCandidate(ctx context.Context, c models.Candidate) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO candidates (id, ballot_id, name, description, image_link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.BallotID, c.Name, c.Description, c.ImageLink, utc(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert candidate: %w", err)
	}
	return nil
}

// ListCandidates returns the candidates of a ballot in creation order
func (s *Store) ListCandidates(ctx context.Context, ballotID string) ([]models.Candidate, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+candidateColumns+`
		FROM candidates
		WHERE ballot_id = $1
		ORDER BY created_at, id
	`, ballotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// CandidateIDs returns the set of candidate IDs belonging to a ballot
func (s *Store) CandidateIDs(ctx context.Context, ballotID string) (map[string]bool, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id FROM candidates WHERE ballot_id = $1`, ballotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func (s *Store) GetCandidate(ctx context.Context, ballotID, id string) (models.Candidate, error) {
	c, err := scanCandidate(s.q.QueryRowContext(ctx, `
		SELECT `+candidateColumns+` FROM candidates WHERE id = $1 AND ballot_id = $2
	`, id, ballotID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Candidate{}, apperr.NotFound("candidate %s", id)
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to query candidate: %w", err)
	}
	return c, nil
}

// DeleteCandidate removes a candidate; its votes go with it
func (s *Store) DeleteCandidate(ctx context.Context, ballotID, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM candidates WHERE id = $1 AND ballot_id = $2`, id, ballotID)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	if !ok {
		return apperr.NotFound("candidate %s", id)
	}
	return nil
}
