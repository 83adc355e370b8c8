// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/store"
	"github.com/danielhkuo/ballotbox/telemetry"
)

// Aggregator stores per-user scores and computes per-candidate averages
type Aggregator struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewAggregator(st *store.Store, logger *slog.Logger) *Aggregator {
	return &Aggregator{store: st, logger: telemetry.ResolveLogger(logger), now: time.Now}
}

// SaveVotes upserts the user's scores on an open ballot and refreshes the
// ballot's voter count, all in one transaction. Resubmitting a candidate
// replaces the earlier score. Returns the new voter count.
func (a *Aggregator) SaveVotes(ctx context.Context, ballotID, userID string, scores map[string]int) (voteCount int, err error) {
	ctx, span := telemetry.Start(ctx, "voting.SaveVotes",
		attribute.String("ballot.id", ballotID),
		attribute.Int("scores", len(scores)),
	)
	defer func() { telemetry.End(span, err) }()

	if err := auth.CheckUserID(userID); err != nil {
		return 0, apperr.Invalid("%v", err)
	}
	if len(scores) == 0 {
		return 0, apperr.Invalid("no scores submitted")
	}
	for candidateID, score := range scores {
		if score < models.MinScore || score > models.MaxScore {
			return 0, apperr.Invalid("score %d for candidate %s is outside %d-%d",
				score, candidateID, models.MinScore, models.MaxScore)
		}
	}

	// Deterministic write order
	candidateIDs := make([]string, 0, len(scores))
	for id := range scores {
		candidateIDs = append(candidateIDs, id)
	}
	sort.Strings(candidateIDs)

	now := a.now()
	err = a.store.InTx(ctx, func(tx *store.Store) error {
		ballot, err := tx.GetBallot(ctx, ballotID)
		if err != nil {
			return err
		}
		if ballot.Status != models.StatusOpen {
			return apperr.InvalidState("ballot %s is %s", ballotID, ballot.Status)
		}

		valid, err := tx.CandidateIDs(ctx, ballotID)
		if err != nil {
			return err
		}
		for _, id := range candidateIDs {
			if !valid[id] {
				return apperr.Invalid("candidate %s is not on ballot %s", id, ballotID)
			}
		}

		for _, id := range candidateIDs {
			err := tx.UpsertVote(ctx, models.Vote{
				BallotID:    ballotID,
				CandidateID: id,
				UserID:      userID,
				Score:       scores[id],
				CreatedAt:   now,
				UpdatedAt:   now,
			})
			if err != nil {
				return err
			}
		}

		voteCount, err = tx.RecountVotes(ctx, ballotID, now)
		return err
	})
	if err != nil {
		return 0, err
	}

	a.logger.Info("votes saved", "ballot_id", ballotID, "user_id", userID, "scores", len(scores))
	return voteCount, nil
}

// GetResults returns the average score per candidate. Candidates nobody
// scored are absent.
func (a *Aggregator) GetResults(ctx context.Context, ballotID string) (map[string]float64, error) {
	averages, err := a.averages(ctx, ballotID)
	if err != nil {
		return nil, err
	}

	results := make(map[string]float64, len(averages))
	for _, avg := range averages {
		results[avg.CandidateID] = avg.Average
	}
	return results, nil
}

// GetResultRows returns the averages with candidate names, best first.
// Candidates with equal averages share a rank.
func (a *Aggregator) GetResultRows(ctx context.Context, ballotID string) ([]models.CandidateResult, error) {
	averages, err := a.averages(ctx, ballotID)
	if err != nil {
		return nil, err
	}

	rows := make([]models.CandidateResult, len(averages))
	for i, avg := range averages {
		rank := i + 1
		if i > 0 && avg.Average == averages[i-1].Average {
			rank = rows[i-1].Rank
		}
		rows[i] = models.CandidateResult{
			CandidateID: avg.CandidateID,
			Name:        avg.Name,
			Average:     avg.Average,
			Votes:       avg.Votes,
			Rank:        rank,
		}
	}
	return rows, nil
}

// UserVotes returns the scores userID has saved on a ballot
func (a *Aggregator) UserVotes(ctx context.Context, ballotID, userID string) (map[string]int, error) {
	if err := auth.CheckUserID(userID); err != nil {
		return nil, apperr.Invalid("%v", err)
	}
	votes, err := a.store.ListVotes(ctx, ballotID, userID)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]int, len(votes))
	for _, v := range votes {
		scores[v.CandidateID] = v.Score
	}
	return scores, nil
}

func (a *Aggregator) averages(ctx context.Context, ballotID string) (_ []store.ScoreAverage, err error) {
	ctx, span := telemetry.Start(ctx, "voting.GetResults", attribute.String("ballot.id", ballotID))
	defer func() { telemetry.End(span, err) }()

	if _, err := a.store.GetBallot(ctx, ballotID); err != nil {
		return nil, err
	}
	return a.store.AverageScores(ctx, ballotID)
}
