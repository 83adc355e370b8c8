// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package orgs manages organizations and their members. Members of a ballot's
// organization may view and vote on it (see package access).
package orgs
