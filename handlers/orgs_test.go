// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/testutil"
)

func TestOrganizationMembership(t *testing.T) {
	env := newTestEnv(t)

	w := serve(env.orgs.CreateOrganization,
		testutil.MakeRequest("POST", "/organizations", models.CreateOrganizationRequest{Name: "Platform"}, testutil.AsUser("alice")))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var org models.Organization
	testutil.AssertJSON(t, w, &org)
	require.NotEmpty(t, org.ID)
	assert.Equal(t, "alice", org.OwnerID)

	addMember := func(actor, userID string) int {
		w := serve(env.orgs.AddMember,
			testutil.MakeRequest("POST", "/organizations/"+org.ID+"/members", models.AddMemberRequest{UserID: userID}, testutil.AsUser(actor)),
			"id", org.ID)
		return w.Code
	}
	assert.Equal(t, http.StatusCreated, addMember("alice", "bob"))
	assert.Equal(t, http.StatusConflict, addMember("alice", "bob"))
	assert.Equal(t, http.StatusForbidden, addMember("bob", "carol"))

	// Members inherit view and vote on organization ballots
	ballotID := testutil.CreateTestBallot(t, env.db, "alice", models.StatusOpen, testutil.WithOrganization(org.ID))
	w = serve(env.ballots.GetAccess,
		testutil.MakeRequest("GET", "/ballots/"+ballotID+"/access", nil, testutil.AsUser("bob")), "id", ballotID)
	testutil.AssertStatus(t, w, http.StatusOK)
	var d models.AccessDecision
	testutil.AssertJSON(t, w, &d)
	assert.Equal(t, models.AccessDecision{CanView: true, CanVote: true}, d)

	w = serve(env.orgs.ListMembers,
		testutil.MakeRequest("GET", "/organizations/"+org.ID+"/members", nil, testutil.AsUser("bob")), "id", org.ID)
	testutil.AssertStatus(t, w, http.StatusOK)
	var members []models.Membership
	testutil.AssertJSON(t, w, &members)
	assert.Len(t, members, 2)

	w = serve(env.orgs.ListMembers,
		testutil.MakeRequest("GET", "/organizations/"+org.ID+"/members", nil, testutil.AsUser("carol")), "id", org.ID)
	testutil.AssertStatus(t, w, http.StatusForbidden)

	leave := func(user string) int {
		w := serve(env.orgs.Leave,
			testutil.MakeRequest("DELETE", "/organizations/"+org.ID+"/members/me", nil, testutil.AsUser(user)), "id", org.ID)
		return w.Code
	}
	assert.Equal(t, http.StatusConflict, leave("alice"))
	assert.Equal(t, http.StatusNoContent, leave("bob"))
	assert.Equal(t, http.StatusNotFound, leave("bob"))

	w = serve(env.ballots.GetBallot,
		testutil.MakeRequest("GET", "/ballots/"+ballotID, nil, testutil.AsUser("bob")), "id", ballotID)
	testutil.AssertStatus(t, w, http.StatusForbidden)
}

func TestCreateBallotInOrganization(t *testing.T) {
	env := newTestEnv(t)

	orgID := testutil.CreateTestOrg(t, env.db, "alice", "bob")

	create := func(user string) int {
		w := serve(env.ballots.CreateBallot,
			testutil.MakeRequest("POST", "/ballots", models.CreateBallotRequest{Name: "Retro", OrganizationID: &orgID}, testutil.AsUser(user)))
		return w.Code
	}
	assert.Equal(t, http.StatusCreated, create("bob"))
	assert.Equal(t, http.StatusForbidden, create("mallory"))
}
