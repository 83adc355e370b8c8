// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package access decides what a caller may do with a ballot.

# Resolution Order

The first rule that matches decides:

 1. Share link: a valid token for this ballot. view grants view; vote adds
    vote; admin adds edit. The link's use counter is incremented.
 2. Owner: full access, regardless of any grant row.
 3. Explicit grant: viewer, voter, editor/admin (edit).
 4. Organization member of the ballot's organization: view and vote.
 5. Otherwise nothing.

An invalid, expired or foreign token falls through to the user rules.
Pending email invitations never match.

# Usage

	d, err := resolver.Resolve(ctx, ballotID, userID, token)
	d, err := resolver.Require(ctx, ballotID, userID, token, access.Vote)
*/
package access
