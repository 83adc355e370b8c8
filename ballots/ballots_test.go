// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballots_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/ballotbox/access"
	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/ballots"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/sharelink"
	"github.com/danielhkuo/ballotbox/store"
	"github.com/danielhkuo/ballotbox/testutil"
)

func newService(t *testing.T) (*ballots.Service, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	st := store.New(db)
	resolver := access.NewResolver(st, sharelink.NewService(st, nil), nil)
	return ballots.NewService(st, resolver, nil), db
}

func TestCreate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	closeAt := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name   string
		req    models.CreateBallotRequest
		status string
	}{
		{"draft", models.CreateBallotRequest{Name: "Lunch"}, models.StatusDraft},
		{"open", models.CreateBallotRequest{Name: "Lunch", Open: true, CloseDate: &closeAt}, models.StatusOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := svc.Create(ctx, "owner", tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, b.Status)
			assert.Equal(t, tt.status == models.StatusOpen, b.IsOpen)

			got, _, err := svc.Get(ctx, b.ID, "owner", "")
			require.NoError(t, err)
			assert.Equal(t, b.Status, got.Ballot.Status)
			assert.Equal(t, b.IsOpen, got.Ballot.IsOpen)
		})
	}
}

func TestCreateRejects(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	orgID := testutil.CreateTestOrg(t, db, "org-owner")
	missingOrg := "missing"

	tests := []struct {
		name  string
		owner string
		req   models.CreateBallotRequest
		kind  error
	}{
		{"blank name", "owner", models.CreateBallotRequest{Name: "  "}, apperr.ErrInvalid},
		{"no owner", "", models.CreateBallotRequest{Name: "x"}, apperr.ErrInvalid},
		{"past close date", "owner", models.CreateBallotRequest{Name: "x", CloseDate: &past}, apperr.ErrInvalid},
		{"not an org member", "owner", models.CreateBallotRequest{Name: "x", OrganizationID: &orgID}, apperr.ErrUnauthorized},
		{"unknown org", "owner", models.CreateBallotRequest{Name: "x", OrganizationID: &missingOrg}, apperr.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.owner, tt.req)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestCandidates(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	ballotID := testutil.CreateTestBallot(t, db, "owner", models.StatusOpen)
	testutil.AddTestGrant(t, db, ballotID, "voter", models.PermissionVoter)
	testutil.AddTestGrant(t, db, ballotID, "editor", models.PermissionEditor)

	a, err := svc.AddCandidate(ctx, ballotID, "owner", "", models.AddCandidateRequest{Name: "A"})
	require.NoError(t, err)
	b, err := svc.AddCandidate(ctx, ballotID, "editor", "", models.AddCandidateRequest{Name: "B"})
	require.NoError(t, err)

	_, err = svc.AddCandidate(ctx, ballotID, "voter", "", models.AddCandidateRequest{Name: "C"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = svc.AddCandidate(ctx, ballotID, "owner", "", models.AddCandidateRequest{Name: ""})
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	testutil.SubmitTestVotes(t, db, ballotID, "v1", map[string]int{a.ID: 10})
	testutil.SubmitTestVotes(t, db, ballotID, "v2", map[string]int{b.ID: 20})

	got, _, err := svc.Get(ctx, ballotID, "voter", "")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Ballot.CandidateCount)
	require.Len(t, got.Candidates, 2)

	require.NoError(t, svc.RemoveCandidate(ctx, ballotID, a.ID, "owner", ""))
	assert.ErrorIs(t, svc.RemoveCandidate(ctx, ballotID, a.ID, "owner", ""), apperr.ErrNotFound)

	got, _, err = svc.Get(ctx, ballotID, "owner", "")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Ballot.CandidateCount)
	assert.Equal(t, 1, got.Ballot.VoteCount, "v1's only vote went with the candidate")
}

func TestArchivedBallotCandidatesFrozen(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	ballotID := testutil.CreateTestBallot(t, db, "owner", models.StatusArchived)
	candidateID := testutil.AddTestCandidate(t, db, ballotID, "Kept")

	_, err := svc.AddCandidate(ctx, ballotID, "owner", "", models.AddCandidateRequest{Name: "New"})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	err = svc.RemoveCandidate(ctx, ballotID, candidateID, "owner", "")
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	got, _, err := svc.Get(ctx, ballotID, "owner", "")
	require.NoError(t, err)
	require.Len(t, got.Candidates, 1)
	assert.Equal(t, candidateID, got.Candidates[0].ID)
	assert.Equal(t, 1, got.Ballot.CandidateCount)
}

func TestAddCandidateViaAdminLink(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	ballotID := testutil.CreateTestBallot(t, db, "owner", models.StatusDraft)
	_, adminToken := testutil.CreateTestShareLink(t, db, ballotID, models.LinkAdmin, nil, true)
	_, voteToken := testutil.CreateTestShareLink(t, db, ballotID, models.LinkVote, nil, true)

	_, err := svc.AddCandidate(ctx, ballotID, "", adminToken, models.AddCandidateRequest{Name: "A"})
	assert.NoError(t, err)
	_, err = svc.AddCandidate(ctx, ballotID, "", voteToken, models.AddCandidateRequest{Name: "B"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestUpdate(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	closeAt := time.Now().Add(time.Hour)
	ballotID := testutil.CreateTestBallot(t, db, "owner", models.StatusOpen, testutil.WithCloseDate(closeAt))

	name := "Renamed"
	public := true
	b, err := svc.Update(ctx, ballotID, "owner", "", models.UpdateBallotRequest{Name: &name, IsPublic: &public})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", b.Name)
	assert.True(t, b.IsPublic)
	require.NotNil(t, b.CloseDate)

	b, err = svc.Update(ctx, ballotID, "owner", "", models.UpdateBallotRequest{ClearClose: true})
	require.NoError(t, err)
	assert.Nil(t, b.CloseDate)

	got, _, err := svc.Get(ctx, ballotID, "owner", "")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Ballot.Name)
	assert.True(t, got.Ballot.IsPublic)
	assert.Nil(t, got.Ballot.CloseDate)

	_, err = svc.Update(ctx, ballotID, "stranger", "", models.UpdateBallotRequest{Name: &name})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestDelete(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	ballotID := testutil.CreateTestBallot(t, db, "owner", models.StatusOpen)
	testutil.AddTestGrant(t, db, ballotID, "editor", models.PermissionEditor)

	assert.ErrorIs(t, svc.Delete(ctx, ballotID, "editor"), apperr.ErrUnauthorized)
	assert.ErrorIs(t, svc.Delete(ctx, ballotID, ""), apperr.ErrUnauthorized)
	require.NoError(t, svc.Delete(ctx, ballotID, "owner"))
	assert.ErrorIs(t, svc.Delete(ctx, ballotID, "owner"), apperr.ErrNotFound)
}

func TestListOwned(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	older := testutil.CreateTestBallot(t, db, "owner", models.StatusOpen, testutil.WithCreatedAt(time.Now().Add(-time.Hour)))
	newer := testutil.CreateTestBallot(t, db, "owner", models.StatusDraft)
	testutil.CreateTestBallot(t, db, "someone-else", models.StatusOpen)

	owned, err := svc.ListOwned(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, newer, owned[0].ID)
	assert.Equal(t, older, owned[1].ID)
}
