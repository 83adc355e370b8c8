// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/testutil"
)

// TestConcurrentShareLinkUse verifies that simultaneous requests through one
// share link are each counted exactly once
func TestConcurrentShareLinkUse(t *testing.T) {
	env := newTestEnv(t)

	ballotID := testutil.CreateTestBallot(t, env.db, "alice", models.StatusOpen)
	linkID, token := testutil.CreateTestShareLink(t, env.db, ballotID, models.LinkView, nil, true)

	numRequests := 25
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := testutil.MakeRequest("GET", "/ballots/"+ballotID+"?share="+token, nil, nil)
			w := serve(env.ballots.GetBallot, req, "id", ballotID)
			if w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	if int(successCount.Load()) != numRequests {
		t.Errorf("Expected %d successful requests, got %d", numRequests, successCount.Load())
	}

	var useCount int
	err := env.db.QueryRow(`SELECT use_count FROM share_links WHERE id = $1`, linkID).Scan(&useCount)
	if err != nil {
		t.Fatalf("Failed to read use count: %v", err)
	}
	if useCount != numRequests {
		t.Errorf("Expected use_count %d, got %d", numRequests, useCount)
	}
}

// TestConcurrentVoteSubmissions verifies that simultaneous submissions from
// different voters neither lose rows nor miscount voters
func TestConcurrentVoteSubmissions(t *testing.T) {
	env := newTestEnv(t)

	ballotID := testutil.CreateTestBallot(t, env.db, "alice", models.StatusOpen)
	pizza := testutil.AddTestCandidate(t, env.db, ballotID, "Pizza")
	sushi := testutil.AddTestCandidate(t, env.db, ballotID, "Sushi")

	numVoters := 20
	voters := make([]string, numVoters)
	for i := range voters {
		voters[i] = fmt.Sprintf("voter-%02d", i)
		testutil.AddTestGrant(t, env.db, ballotID, voters[i], models.PermissionVoter)
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i, voter := range voters {
		wg.Add(1)
		go func(voterIdx int, userID string) {
			defer wg.Done()

			scores := map[string]int{pizza: voterIdx, sushi: 99 - voterIdx}
			req := testutil.MakeRequest("PUT", "/ballots/"+ballotID+"/votes",
				models.SaveVotesRequest{Scores: scores}, testutil.AsUser(userID))
			w := serve(env.voting.SaveVotes, req, "id", ballotID)
			if w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}(i, voter)
	}

	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful submissions, got %d", numVoters, successCount.Load())
	}

	var rows, distinctVoters int
	err := env.db.QueryRow(`
		SELECT COUNT(*), COUNT(DISTINCT user_id) FROM votes WHERE ballot_id = $1
	`, ballotID).Scan(&rows, &distinctVoters)
	if err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if rows != 2*numVoters {
		t.Errorf("Expected %d vote rows, got %d", 2*numVoters, rows)
	}
	if distinctVoters != numVoters {
		t.Errorf("Expected %d distinct voters, got %d", numVoters, distinctVoters)
	}

	var voteCount int
	err = env.db.QueryRow(`SELECT vote_count FROM ballots WHERE id = $1`, ballotID).Scan(&voteCount)
	if err != nil {
		t.Fatalf("Failed to read vote count: %v", err)
	}
	if voteCount != numVoters {
		t.Errorf("Expected vote_count %d, got %d", numVoters, voteCount)
	}
}

// TestConcurrentResubmissions verifies that one voter saving repeatedly in
// parallel still ends with a single row per candidate
func TestConcurrentResubmissions(t *testing.T) {
	env := newTestEnv(t)

	ballotID := testutil.CreateTestBallot(t, env.db, "alice", models.StatusOpen)
	pizza := testutil.AddTestCandidate(t, env.db, ballotID, "Pizza")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			req := testutil.MakeRequest("PUT", "/ballots/"+ballotID+"/votes",
				models.SaveVotesRequest{Scores: map[string]int{pizza: score}}, testutil.AsUser("alice"))
			serve(env.voting.SaveVotes, req, "id", ballotID)
		}(i * 10)
	}
	wg.Wait()

	var rows, voteCount int
	if err := env.db.QueryRow(`SELECT COUNT(*) FROM votes WHERE ballot_id = $1`, ballotID).Scan(&rows); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if err := env.db.QueryRow(`SELECT vote_count FROM ballots WHERE id = $1`, ballotID).Scan(&voteCount); err != nil {
		t.Fatalf("Failed to read vote count: %v", err)
	}
	if rows != 1 || voteCount != 1 {
		t.Errorf("Expected 1 row and vote_count 1, got %d rows and vote_count %d", rows, voteCount)
	}
}
