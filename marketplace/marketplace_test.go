// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package marketplace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/store"
	"github.com/danielhkuo/ballotbox/testutil"
)

func ids(ballots []models.Ballot) []string {
	out := make([]string, len(ballots))
	for i, b := range ballots {
		out[i] = b.ID
	}
	return out
}

func TestListPublicBallotsExcludesOwnAndGranted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := NewFilter(store.New(db), nil)
	ctx := context.Background()

	visible := testutil.CreateTestBallot(t, db, "other", models.StatusOpen, testutil.WithPublic())
	testutil.CreateTestBallot(t, db, "u1", models.StatusOpen, testutil.WithPublic())
	granted := testutil.CreateTestBallot(t, db, "other", models.StatusOpen, testutil.WithPublic())
	testutil.AddTestGrant(t, db, granted, "u1", models.PermissionVoter)

	ballots, err := f.ListPublicBallots(ctx, Query{ExcludeUserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, []string{visible}, ids(ballots))

	// Another user sees all three that are not theirs
	ballots, err = f.ListPublicBallots(ctx, Query{ExcludeUserID: "u2"})
	require.NoError(t, err)
	assert.Len(t, ballots, 3)
}

func TestListPublicBallotsFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := NewFilter(store.New(db), nil)
	ctx := context.Background()

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return now }

	orgID := testutil.CreateTestOrg(t, db, "org-owner")
	soon := testutil.CreateTestBallot(t, db, "other", models.StatusOpen, testutil.WithPublic(),
		testutil.WithName("Team Lunch"), testutil.WithCloseDate(now.Add(2*24*time.Hour)))
	edge := testutil.CreateTestBallot(t, db, "other", models.StatusOpen, testutil.WithPublic(),
		testutil.WithName("Edge"), testutil.WithCloseDate(now.Add(ClosingSoonWindow)))
	testutil.CreateTestBallot(t, db, "other", models.StatusOpen, testutil.WithPublic(),
		testutil.WithName("Too Late"), testutil.WithCloseDate(now.Add(ClosingSoonWindow+time.Minute)))
	testutil.CreateTestBallot(t, db, "other", models.StatusOpen, testutil.WithPublic(),
		testutil.WithName("Already Due"), testutil.WithCloseDate(now.Add(-time.Minute)))
	inOrg := testutil.CreateTestBallot(t, db, "other", models.StatusOpen, testutil.WithPublic(),
		testutil.WithName("Org Offsite"), testutil.WithOrganization(orgID))

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"closing soon", Query{ClosingSoon: true}, []string{soon, edge}},
		{"search is case-insensitive", Query{Search: "LUNCH"}, []string{soon}},
		{"search matches description", Query{Search: "a test ballot", OrganizationID: orgID}, []string{inOrg}},
		{"organization", Query{OrganizationID: orgID}, []string{inOrg}},
		{"no match", Query{Search: "nothing like this"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ballots, err := f.ListPublicBallots(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(ballots))
		})
	}
}

func TestJoinBallot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)
	f := NewFilter(st, nil)
	ctx := context.Background()

	ballotID := testutil.CreateTestBallot(t, db, "owner", models.StatusOpen, testutil.WithPublic())

	grant, err := f.JoinBallot(ctx, ballotID, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.PermissionVoter, grant.Permission)
	assert.Equal(t, "u1", grant.CreatedBy)
	require.NotNil(t, grant.AcceptedAt)

	stored, err := st.GetUserGrant(ctx, ballotID, "u1")
	require.NoError(t, err)
	assert.Equal(t, grant.ID, stored.ID)

	_, err = f.JoinBallot(ctx, ballotID, "u1")
	assert.ErrorIs(t, err, apperr.ErrInvalidState, "second join")

	ballots, err := f.ListPublicBallots(ctx, Query{ExcludeUserID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, ballots, "joined ballots leave the listing")
}

func TestJoinBallotRejects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := NewFilter(store.New(db), nil)
	ctx := context.Background()

	private := testutil.CreateTestBallot(t, db, "owner", models.StatusOpen)
	closed := testutil.CreateTestBallot(t, db, "owner", models.StatusClosed, testutil.WithPublic())
	open := testutil.CreateTestBallot(t, db, "owner", models.StatusOpen, testutil.WithPublic())

	tests := []struct {
		name     string
		ballotID string
		userID   string
		kind     error
	}{
		{"private", private, "u1", apperr.ErrUnauthorized},
		{"closed", closed, "u1", apperr.ErrInvalidState},
		{"missing", "missing", "u1", apperr.ErrNotFound},
		{"owner", open, "owner", apperr.ErrInvalidState},
		{"anonymous", open, "", apperr.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.JoinBallot(ctx, tt.ballotID, tt.userID)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}
