// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ShareTokenBytes is the entropy of a share-link token (256 bits).
const ShareTokenBytes = 32

// maxUserIDLen bounds user IDs handed to us by the upstream authenticator.
const maxUserIDLen = 128

var (
	ErrInvalidID     = errors.New("invalid id")
	ErrInvalidUserID = errors.New("invalid user id")
)

// NewID returns a fresh record ID (random UUID, canonical form)
func NewID() string {
	return uuid.NewString()
}

// CheckID verifies that id is a record ID minted by NewID
func CheckID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w %q", ErrInvalidID, id)
	}
	return nil
}

// CheckUserID verifies a user ID supplied by the authentication layer.
// User IDs are opaque, so only emptiness, length and whitespace are checked.
func CheckUserID(userID string) error {
	if userID == "" || len(userID) > maxUserIDLen || strings.TrimSpace(userID) != userID {
		return fmt.Errorf("%w %q", ErrInvalidUserID, userID)
	}
	return nil
}

// GenerateShareToken creates an unguessable share-link token.
// 32 random bytes, URL-safe base64 without padding: 43 chars of [A-Za-z0-9_-].
func GenerateShareToken() (string, error) {
	b := make([]byte, ShareTokenBytes)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
