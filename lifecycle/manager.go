// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/store"
	"github.com/danielhkuo/ballotbox/telemetry"
)

// Manager moves ballots between open and closed. status and is_open are
// always written together by one statement.
type Manager struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewManager(st *store.Store, logger *slog.Logger) *Manager {
	return &Manager{store: st, logger: telemetry.ResolveLogger(logger), now: time.Now}
}

// Open sets a ballot to open. A closed ballot may be re-opened.
func (m *Manager) Open(ctx context.Context, ballotID string) (models.Ballot, error) {
	b, err := m.transition(ctx, ballotID, models.StatusOpen)
	if err != nil {
		return models.Ballot{}, err
	}
	m.logger.Info("ballot opened", "ballot_id", ballotID)
	return b, nil
}

// Close sets a ballot to closed
func (m *Manager) Close(ctx context.Context, ballotID string) (models.Ballot, error) {
	b, err := m.transition(ctx, ballotID, models.StatusClosed)
	if err != nil {
		return models.Ballot{}, err
	}
	m.logger.Info("ballot closed", "ballot_id", ballotID)
	return b, nil
}

func (m *Manager) transition(ctx context.Context, ballotID, status string) (models.Ballot, error) {
	b, err := m.store.SetBallotStatus(ctx, ballotID, status, m.now())
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Ballot{}, err
	}

	// No row matched: either the ballot is gone or it is archived
	current, err := m.store.GetBallot(ctx, ballotID)
	if err != nil {
		return models.Ballot{}, err
	}
	return models.Ballot{}, apperr.InvalidState("ballot %s is %s", ballotID, current.Status)
}
