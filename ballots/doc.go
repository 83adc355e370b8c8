// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ballots creates, edits and deletes ballots and their candidates.
// Every operation except Create and ListOwned is authorized through
// package access; Delete is reserved to the owner.
package ballots
