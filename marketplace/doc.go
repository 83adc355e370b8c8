// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package marketplace is the public ballot directory.

ListPublicBallots shows public open ballots the caller does not already have:

	ballots, err := filter.ListPublicBallots(ctx, marketplace.Query{
		Search:        "lunch",
		ClosingSoon:   true, // close date within the next 7 days
		ExcludeUserID: userID,
	})

JoinBallot turns a listing into a voter grant for the caller. Private ballots
are refused with apperr.ErrUnauthorized; ballots that are not open, or that
the caller already has access to, with apperr.ErrInvalidState.
*/
package marketplace
