// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifier and token generation utilities.

# Record IDs

Ballots, candidates, grants, share links and organizations use random UUIDs:

	id := auth.NewID()
	err := auth.CheckID(id) // ErrInvalidID for anything else

# User IDs

Users are authenticated upstream; their IDs are opaque strings. CheckUserID
only rejects empty, oversized or whitespace-padded values.

# Share Tokens

Share-link tokens are random 32-byte (256-bit) secrets:

	token, err := auth.GenerateShareToken()

Tokens are URL-safe base64 encoded without padding, so they never contain
'+', '/' or '='. Uniqueness is enforced by the storage layer.
*/
package auth
