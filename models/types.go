package models

import "time"

// Ballot status constants
const (
	StatusDraft    = "draft"
	StatusOpen     = "open"
	StatusClosed   = "closed"
	StatusArchived = "archived"
)

// Explicit grant levels, ordered Viewer < Voter < Editor < Admin
const (
	PermissionViewer = "viewer"
	PermissionVoter  = "voter"
	PermissionEditor = "editor"
	PermissionAdmin  = "admin"
)

// Share link permissions
const (
	LinkView  = "view"
	LinkVote  = "vote"
	LinkAdmin = "admin"
)

// Score bounds (inclusive)
const (
	MinScore = 0
	MaxScore = 99
)

// PermissionRank orders explicit grant levels; unknown levels rank 0.
func PermissionRank(level string) int {
	switch level {
	case PermissionViewer:
		return 1
	case PermissionVoter:
		return 2
	case PermissionEditor:
		return 3
	case PermissionAdmin:
		return 4
	default:
		return 0
	}
}

func ValidPermission(level string) bool {
	return PermissionRank(level) > 0
}

func ValidLinkPermission(p string) bool {
	return p == LinkView || p == LinkVote || p == LinkAdmin
}

// Domain types

type Ballot struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	OwnerID        string     `json:"owner_id"`
	OrganizationID *string    `json:"organization_id,omitempty"`
	Status         string     `json:"status"`
	IsOpen         bool       `json:"is_open"`
	IsPublic       bool       `json:"is_public"`
	CloseDate      *time.Time `json:"close_date,omitempty"`
	CandidateCount int        `json:"candidate_count"`
	VoteCount      int        `json:"vote_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type Candidate struct {
	ID          string    `json:"id"`
	BallotID    string    `json:"ballot_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageLink   *string   `json:"image_link,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type BallotWithCandidates struct {
	Ballot     Ballot      `json:"ballot"`
	Candidates []Candidate `json:"candidates"`
}

type Vote struct {
	BallotID    string    `json:"ballot_id"`
	CandidateID string    `json:"candidate_id"`
	UserID      string    `json:"user_id"`
	Score       int       `json:"score"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Grant is an explicit per-user permission on a ballot. UserID is nil while
// an email invitation is still pending.
type Grant struct {
	ID           string     `json:"id"`
	BallotID     string     `json:"ballot_id"`
	UserID       *string    `json:"user_id,omitempty"`
	InvitedEmail *string    `json:"invited_email,omitempty"`
	Permission   string     `json:"permission"`
	CreatedBy    string     `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	AcceptedAt   *time.Time `json:"accepted_at,omitempty"`
}

type ShareLink struct {
	ID         string     `json:"id"`
	BallotID   string     `json:"ballot_id"`
	Token      string     `json:"token"`
	Permission string     `json:"permission"`
	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	IsActive   bool       `json:"is_active"`
	UseCount   int64      `json:"use_count"`
}

type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Membership struct {
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	JoinedAt       time.Time `json:"joined_at"`
}

// AccessDecision is the resolved capability set for one access attempt
type AccessDecision struct {
	CanView      bool `json:"can_view"`
	CanVote      bool `json:"can_vote"`
	CanEdit      bool `json:"can_edit"`
	IsOwner      bool `json:"is_owner"`
	ViaShareLink bool `json:"via_share_link"`
}

// CandidateResult is one row of the results display
type CandidateResult struct {
	CandidateID string  `json:"candidate_id"`
	Name        string  `json:"name"`
	Average     float64 `json:"average"`
	Votes       int     `json:"votes"`
	Rank        int     `json:"rank"` // 1-indexed ranking
}

// Request types

type CreateBallotRequest struct {
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	OrganizationID *string    `json:"organization_id,omitempty"`
	IsPublic       bool       `json:"is_public"`
	Open           bool       `json:"open"`
	CloseDate      *time.Time `json:"close_date,omitempty"`
}

type UpdateBallotRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	IsPublic    *bool      `json:"is_public,omitempty"`
	CloseDate   *time.Time `json:"close_date,omitempty"`
	ClearClose  bool       `json:"clear_close_date,omitempty"`
}

type AddCandidateRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageLink   *string `json:"image_link,omitempty"`
}

// candidate_id -> score (0 to 99)
type SaveVotesRequest struct {
	Scores map[string]int `json:"scores"`
}

type CreateShareLinkRequest struct {
	Permission string     `json:"permission"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

type GrantRequest struct {
	UserID     string `json:"user_id"`
	Permission string `json:"permission"`
}

type InviteRequest struct {
	Email      string `json:"email"`
	Permission string `json:"permission"`
}

type CreateOrganizationRequest struct {
	Name string `json:"name"`
}

type AddMemberRequest struct {
	UserID string `json:"user_id"`
}

// Response types

type CreateBallotResponse struct {
	BallotID string `json:"ballot_id"`
	Status   string `json:"status"`
}

type AddCandidateResponse struct {
	CandidateID string `json:"candidate_id"`
}

type SaveVotesResponse struct {
	VoteCount int    `json:"vote_count"`
	Message   string `json:"message"`
}

type ResultsResponse struct {
	Ballot  Ballot            `json:"ballot"`
	Results []CandidateResult `json:"results"`
}

type ShareLinkResponse struct {
	ShareLink ShareLink `json:"share_link"`
	ShareURL  string    `json:"share_url"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
