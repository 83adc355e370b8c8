// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/db"
)

// TestDBURL is an in-memory SQLite database private to one connection pool
const TestDBURL = ":memory:"

// SetupTestDB opens a fresh in-memory database with the full schema applied.
// Every call gets its own database, so tests may run in parallel.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), cliparse.DatabaseSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(context.Background(), conn, cliparse.DatabaseSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// BallotOption customizes a fixture ballot
type BallotOption func(*ballotFixture)

type ballotFixture struct {
	name      string
	public    bool
	orgID     *string
	closeDate *time.Time
	createdAt time.Time
}

func WithName(name string) BallotOption {
	return func(f *ballotFixture) { f.name = name }
}

func WithPublic() BallotOption {
	return func(f *ballotFixture) { f.public = true }
}

func WithOrganization(orgID string) BallotOption {
	return func(f *ballotFixture) { f.orgID = &orgID }
}

func WithCloseDate(at time.Time) BallotOption {
	return func(f *ballotFixture) {
		at = at.UTC()
		f.closeDate = &at
	}
}

func WithCreatedAt(at time.Time) BallotOption {
	return func(f *ballotFixture) { f.createdAt = at.UTC() }
}

// CreateTestBallot creates a ballot owned by ownerID and returns its ID.
// status should be "draft", "open", "closed" or "archived".
func CreateTestBallot(t *testing.T, db *sql.DB, ownerID, status string, opts ...BallotOption) string {
	t.Helper()

	f := ballotFixture{name: "Test Ballot", createdAt: time.Now().UTC()}
	for _, opt := range opts {
		opt(&f)
	}

	ballotID := auth.NewID()
	_, err := db.Exec(`
		INSERT INTO ballots (id, name, description, owner_id, organization_id, status, is_open,
			is_public, close_date, created_at, updated_at)
		VALUES ($1, $2, 'A test ballot', $3, $4, $5, $6, $7, $8, $9, $9)
	`, ballotID, f.name, ownerID, f.orgID, status, status == "open", f.public, f.closeDate, f.createdAt)
	if err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}

	return ballotID
}

// AddTestCandidate adds a candidate to a ballot and returns the candidate ID
func AddTestCandidate(t *testing.T, db *sql.DB, ballotID, name string) string {
	t.Helper()

	candidateID := auth.NewID()
	_, err := db.Exec(`
		INSERT INTO candidates (id, ballot_id, name, description, created_at)
		VALUES ($1, $2, $3, '', $4)
	`, candidateID, ballotID, name, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	_, err = db.Exec(`
		UPDATE ballots SET candidate_count = candidate_count + 1 WHERE id = $1
	`, ballotID)
	if err != nil {
		t.Fatalf("Failed to count test candidate: %v", err)
	}

	return candidateID
}

// CreateTestOrg creates an organization owned by ownerID with the given extra
// members and returns its ID. The owner is always a member.
func CreateTestOrg(t *testing.T, db *sql.DB, ownerID string, members ...string) string {
	t.Helper()

	orgID := auth.NewID()
	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO organizations (id, name, owner_id, created_at)
		VALUES ($1, 'Test Org', $2, $3)
	`, orgID, ownerID, now)
	if err != nil {
		t.Fatalf("Failed to create test organization: %v", err)
	}

	for _, userID := range append([]string{ownerID}, members...) {
		_, err := db.Exec(`
			INSERT INTO organization_members (organization_id, user_id, joined_at)
			VALUES ($1, $2, $3)
		`, orgID, userID, now)
		if err != nil {
			t.Fatalf("Failed to add test member: %v", err)
		}
	}

	return orgID
}

// AddTestGrant gives userID an accepted explicit grant and returns its ID
func AddTestGrant(t *testing.T, db *sql.DB, ballotID, userID, permission string) string {
	t.Helper()

	grantID := auth.NewID()
	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO ballot_permissions (id, ballot_id, user_id, permission, created_by, created_at, accepted_at)
		VALUES ($1, $2, $3, $4, 'test-owner', $5, $5)
	`, grantID, ballotID, userID, permission, now)
	if err != nil {
		t.Fatalf("Failed to create test grant: %v", err)
	}

	return grantID
}

// AddTestInvitation creates a pending email invitation and returns its ID
func AddTestInvitation(t *testing.T, db *sql.DB, ballotID, email, permission string) string {
	t.Helper()

	grantID := auth.NewID()
	_, err := db.Exec(`
		INSERT INTO ballot_permissions (id, ballot_id, invited_email, permission, created_by, created_at)
		VALUES ($1, $2, $3, $4, 'test-owner', $5)
	`, grantID, ballotID, email, permission, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test invitation: %v", err)
	}

	return grantID
}

// CreateTestShareLink inserts a share link and returns its ID and token.
// A nil expiresAt never expires.
func CreateTestShareLink(t *testing.T, db *sql.DB, ballotID, permission string, expiresAt *time.Time, active bool) (linkID, token string) {
	t.Helper()

	linkID = auth.NewID()
	token, err := auth.GenerateShareToken()
	if err != nil {
		t.Fatalf("Failed to generate share token: %v", err)
	}

	var exp *time.Time
	if expiresAt != nil {
		e := expiresAt.UTC()
		exp = &e
	}

	_, err = db.Exec(`
		INSERT INTO share_links (id, ballot_id, token, permission, created_by, created_at, expires_at, is_active, use_count)
		VALUES ($1, $2, $3, $4, 'test-owner', $5, $6, $7, 0)
	`, linkID, ballotID, token, permission, time.Now().UTC(), exp, active)
	if err != nil {
		t.Fatalf("Failed to create test share link: %v", err)
	}

	return linkID, token
}

// SubmitTestVotes stores scores for a voter directly, bypassing validation
func SubmitTestVotes(t *testing.T, db *sql.DB, ballotID, userID string, scores map[string]int) {
	t.Helper()

	now := time.Now().UTC()
	for candidateID, score := range scores {
		_, err := db.Exec(`
			INSERT INTO votes (ballot_id, candidate_id, user_id, score, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)
		`, ballotID, candidateID, userID, score, now)
		if err != nil {
			t.Fatalf("Failed to create test vote: %v", err)
		}
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AsUser returns headers identifying the caller as userID
func AsUser(userID string) map[string]string {
	return map[string]string{"X-User-ID": userID}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
