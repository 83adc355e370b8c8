// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package sharelink mints and validates share links.

A share link is an unguessable token that grants anyone holding it view, vote
or admin capability on one ballot, independent of user identity.

	link, err := svc.Create(ctx, ballotID, models.LinkVote, ownerID, nil)
	link, err := svc.Validate(ctx, token) // NotFound, or Invalid when inactive/expired

Validate is a pure read. Redemptions are counted separately with RecordUse,
which increments use_count in a single statement.
*/
package sharelink
