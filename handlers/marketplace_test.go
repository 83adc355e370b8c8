// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/testutil"
)

func ballotIDs(ballots []models.Ballot) []string {
	ids := make([]string, len(ballots))
	for i, b := range ballots {
		ids[i] = b.ID
	}
	return ids
}

func TestListPublicBallots(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()

	soon := testutil.CreateTestBallot(t, env.db, "alice", models.StatusOpen,
		testutil.WithPublic(), testutil.WithName("Team Lunch"), testutil.WithCloseDate(now.Add(2*24*time.Hour)))
	later := testutil.CreateTestBallot(t, env.db, "alice", models.StatusOpen,
		testutil.WithPublic(), testutil.WithName("Offsite Venue"), testutil.WithCloseDate(now.Add(30*24*time.Hour)))
	undated := testutil.CreateTestBallot(t, env.db, "carol", models.StatusOpen,
		testutil.WithPublic(), testutil.WithName("Band Name"))
	testutil.CreateTestBallot(t, env.db, "alice", models.StatusOpen, testutil.WithName("Private"))
	testutil.CreateTestBallot(t, env.db, "alice", models.StatusClosed, testutil.WithPublic())
	testutil.CreateTestBallot(t, env.db, "alice", models.StatusDraft, testutil.WithPublic())

	tests := []struct {
		name     string
		query    string
		user     string
		expected []string
	}{
		{"everything open and public", "", "bob", []string{soon, later, undated}},
		{"own ballots excluded", "", "alice", []string{undated}},
		{"search", "?search=lunch", "bob", []string{soon}},
		{"closing soon", "?closing_soon=true", "bob", []string{soon}},
		{"closing soon off", "?closing_soon=false", "bob", []string{soon, later, undated}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/marketplace"+tt.query, nil, testutil.AsUser(tt.user))
			w := serve(env.market.ListPublicBallots, req)

			testutil.AssertStatus(t, w, http.StatusOK)
			var got []models.Ballot
			testutil.AssertJSON(t, w, &got)
			assert.Equal(t, tt.expected, ballotIDs(got))
		})
	}
}

func TestListPublicBallotsBadQuery(t *testing.T) {
	env := newTestEnv(t)

	w := serve(env.market.ListPublicBallots, testutil.MakeRequest("GET", "/marketplace?closing_soon=maybe", nil, nil))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestListPublicBallotsByOrganization(t *testing.T) {
	env := newTestEnv(t)

	orgID := testutil.CreateTestOrg(t, env.db, "alice")
	inOrg := testutil.CreateTestBallot(t, env.db, "alice", models.StatusOpen, testutil.WithPublic(), testutil.WithOrganization(orgID))
	testutil.CreateTestBallot(t, env.db, "alice", models.StatusOpen, testutil.WithPublic())

	w := serve(env.market.ListPublicBallots,
		testutil.MakeRequest("GET", "/marketplace?organization_id="+orgID, nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var got []models.Ballot
	testutil.AssertJSON(t, w, &got)
	assert.Equal(t, []string{inOrg}, ballotIDs(got))
}

func TestJoinBallot(t *testing.T) {
	env := newTestEnv(t)

	public := testutil.CreateTestBallot(t, env.db, "alice", models.StatusOpen, testutil.WithPublic())
	private := testutil.CreateTestBallot(t, env.db, "alice", models.StatusOpen)
	closed := testutil.CreateTestBallot(t, env.db, "alice", models.StatusClosed, testutil.WithPublic())

	tests := []struct {
		name           string
		ballotID       string
		user           string
		expectedStatus int
	}{
		{"join public ballot", public, "bob", http.StatusCreated},
		{"join twice", public, "bob", http.StatusConflict},
		{"owner cannot join", public, "alice", http.StatusConflict},
		{"private ballot", private, "bob", http.StatusForbidden},
		{"closed ballot", closed, "bob", http.StatusConflict},
		{"missing ballot", "nope", "bob", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/ballots/"+tt.ballotID+"/join", nil, testutil.AsUser(tt.user))
			w := serve(env.market.JoinBallot, req, "id", tt.ballotID)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	// The joined user may now vote
	w := serve(env.ballots.GetAccess,
		testutil.MakeRequest("GET", "/ballots/"+public+"/access", nil, testutil.AsUser("bob")), "id", public)
	testutil.AssertStatus(t, w, http.StatusOK)
	var d models.AccessDecision
	testutil.AssertJSON(t, w, &d)
	require.True(t, d.CanVote)
	assert.False(t, d.CanEdit)
}
