// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/danielhkuo/ballotbox/models"
)

// UpsertVote inserts v or, if the (ballot, candidate, user) row exists,
// replaces its score and updated_at. created_at is kept from the first save.
func (s *Store) UpsertVote(ctx context.Context, v models.Vote) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO votes (ballot_id, candidate_id, user_id, score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (ballot_id, candidate_id, user_id)
		DO UPDATE SET score = excluded.score, updated_at = excluded.updated_at
	`, v.BallotID, v.CandidateID, v.UserID, v.Score, utc(v.CreatedAt), utc(v.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert vote: %w", err)
	}
	return nil
}

// ListVotes returns every vote on a ballot, optionally limited to one user
func (s *Store) ListVotes(ctx context.Context, ballotID, userID string) ([]models.Vote, error) {
	query := `
		SELECT ballot_id, candidate_id, user_id, score, created_at, updated_at
		FROM votes
		WHERE ballot_id = $1`
	args := []any{ballotID}
	if userID != "" {
		query += ` AND user_id = $2`
		args = append(args, userID)
	}
	query += ` ORDER BY user_id, candidate_id`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.BallotID, &v.CandidateID, &v.UserID, &v.Score, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		normalize(&v.CreatedAt)
		normalize(&v.UpdatedAt)
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// ScoreAverage is the aggregate for one candidate with at least one vote
type ScoreAverage struct {
	CandidateID string
	Name        string
	Average     float64
	Votes       int
}

// AverageScores aggregates votes per candidate. Candidates nobody scored do
// not appear. Ordered by average descending, then name.
func (s *Store) AverageScores(ctx context.Context, ballotID string) ([]ScoreAverage, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT c.id, c.name, AVG(v.score), COUNT(v.user_id)
		FROM votes v
		JOIN candidates c ON c.id = v.candidate_id
		WHERE v.ballot_id = $1
		GROUP BY c.id, c.name
		ORDER BY AVG(v.score) DESC, c.name, c.id
	`, ballotID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate votes: %w", err)
	}
	defer rows.Close()

	averages := []ScoreAverage{}
	for rows.Next() {
		var a ScoreAverage
		if err := rows.Scan(&a.CandidateID, &a.Name, &a.Average, &a.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate: %w", err)
		}
		averages = append(averages, a)
	}
	return averages, rows.Err()
}
