// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/testutil"
)

func TestCreateShareLink(t *testing.T) {
	env := newTestEnv(t)

	ballotID := testutil.CreateTestBallot(t, env.db, "alice", models.StatusOpen)
	testutil.AddTestGrant(t, env.db, ballotID, "ed", models.PermissionEditor)
	testutil.AddTestGrant(t, env.db, ballotID, "vic", models.PermissionVoter)
	_, adminToken := testutil.CreateTestShareLink(t, env.db, ballotID, models.LinkAdmin, nil, true)
	past := time.Now().Add(-time.Minute)

	tests := []struct {
		name           string
		user           string
		query          string
		body           models.CreateShareLinkRequest
		expectedStatus int
	}{
		{"owner", "alice", "", models.CreateShareLinkRequest{Permission: models.LinkVote}, http.StatusCreated},
		{"editor", "ed", "", models.CreateShareLinkRequest{Permission: models.LinkView}, http.StatusCreated},
		{"voter", "vic", "", models.CreateShareLinkRequest{Permission: models.LinkView}, http.StatusForbidden},
		{"admin link holder", "mallory", "?share=" + adminToken, models.CreateShareLinkRequest{Permission: models.LinkView}, http.StatusForbidden},
		{"unknown permission", "alice", "", models.CreateShareLinkRequest{Permission: "editor"}, http.StatusBadRequest},
		{"expired on creation", "alice", "", models.CreateShareLinkRequest{Permission: models.LinkView, ExpiresAt: &past}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/ballots/"+ballotID+"/share-links"+tt.query, tt.body, testutil.AsUser(tt.user))
			w := serve(env.share.CreateShareLink, req, "id", ballotID)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusCreated {
				return
			}

			var resp models.ShareLinkResponse
			testutil.AssertJSON(t, w, &resp)
			assert.Equal(t, ballotID, resp.ShareLink.BallotID)
			assert.Equal(t, tt.body.Permission, resp.ShareLink.Permission)
			assert.True(t, resp.ShareLink.IsActive)
			assert.Len(t, resp.ShareLink.Token, 43)
			assert.True(t, strings.HasSuffix(resp.ShareURL, "?share="+resp.ShareLink.Token), resp.ShareURL)
		})
	}
}

func TestShareLinkGrantsAccess(t *testing.T) {
	env := newTestEnv(t)

	ballotID := testutil.CreateTestBallot(t, env.db, "alice", models.StatusOpen)
	pizza := testutil.AddTestCandidate(t, env.db, ballotID, "Pizza")

	req := testutil.MakeRequest("POST", "/ballots/"+ballotID+"/share-links",
		models.CreateShareLinkRequest{Permission: models.LinkVote}, testutil.AsUser("alice"))
	w := serve(env.share.CreateShareLink, req, "id", ballotID)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var created models.ShareLinkResponse
	testutil.AssertJSON(t, w, &created)

	// Follow the share URL as a user with no other relation to the ballot
	vote := testutil.MakeRequest("PUT", created.ShareURL,
		models.SaveVotesRequest{Scores: map[string]int{pizza: 77}}, testutil.AsUser("guest"))
	w = serve(env.voting.SaveVotes, vote, "id", ballotID)
	testutil.AssertStatus(t, w, http.StatusOK)

	var uses int64
	require.NoError(t, env.db.QueryRow(`SELECT use_count FROM share_links WHERE id = $1`, created.ShareLink.ID).Scan(&uses))
	assert.Equal(t, int64(1), uses)

	// Deactivated links stop working
	w = serve(env.share.DeactivateShareLink,
		testutil.MakeRequest("DELETE", "/ballots/"+ballotID+"/share-links/"+created.ShareLink.ID, nil, testutil.AsUser("alice")),
		"id", ballotID, "linkID", created.ShareLink.ID)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	vote = testutil.MakeRequest("PUT", created.ShareURL,
		models.SaveVotesRequest{Scores: map[string]int{pizza: 10}}, testutil.AsUser("guest"))
	w = serve(env.voting.SaveVotes, vote, "id", ballotID)
	testutil.AssertStatus(t, w, http.StatusForbidden)
}

func TestExpiredShareLink(t *testing.T) {
	env := newTestEnv(t)

	ballotID := testutil.CreateTestBallot(t, env.db, "alice", models.StatusOpen)
	expired := time.Now().Add(-time.Second)
	_, token := testutil.CreateTestShareLink(t, env.db, ballotID, models.LinkView, &expired, true)

	w := serve(env.ballots.GetBallot,
		testutil.MakeRequest("GET", "/ballots/"+ballotID+"?share="+token, nil, nil), "id", ballotID)
	testutil.AssertStatus(t, w, http.StatusForbidden)
}

func TestShareLinkForAnotherBallot(t *testing.T) {
	env := newTestEnv(t)

	ballotID := testutil.CreateTestBallot(t, env.db, "alice", models.StatusOpen)
	otherID := testutil.CreateTestBallot(t, env.db, "alice", models.StatusOpen)
	otherLink, otherToken := testutil.CreateTestShareLink(t, env.db, otherID, models.LinkAdmin, nil, true)

	w := serve(env.ballots.GetBallot,
		testutil.MakeRequest("GET", "/ballots/"+ballotID+"?share="+otherToken, nil, nil), "id", ballotID)
	testutil.AssertStatus(t, w, http.StatusForbidden)

	// A link can only be deactivated through its own ballot
	w = serve(env.share.DeactivateShareLink,
		testutil.MakeRequest("DELETE", "/ballots/"+ballotID+"/share-links/"+otherLink, nil, testutil.AsUser("alice")),
		"id", ballotID, "linkID", otherLink)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestListShareLinks(t *testing.T) {
	env := newTestEnv(t)

	ballotID := testutil.CreateTestBallot(t, env.db, "alice", models.StatusOpen)
	testutil.CreateTestShareLink(t, env.db, ballotID, models.LinkView, nil, true)
	testutil.CreateTestShareLink(t, env.db, ballotID, models.LinkVote, nil, false)

	w := serve(env.share.ListShareLinks,
		testutil.MakeRequest("GET", "/ballots/"+ballotID+"/share-links", nil, testutil.AsUser("bob")), "id", ballotID)
	testutil.AssertStatus(t, w, http.StatusForbidden)

	w = serve(env.share.ListShareLinks,
		testutil.MakeRequest("GET", "/ballots/"+ballotID+"/share-links", nil, testutil.AsUser("alice")), "id", ballotID)
	testutil.AssertStatus(t, w, http.StatusOK)

	var links []models.ShareLink
	testutil.AssertJSON(t, w, &links)
	assert.Len(t, links, 2)
}
