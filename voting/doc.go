// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting stores scores and aggregates them into results.

# Scoring

Each user gives every candidate they care about an integer score from 0 to 99.
A submission is a map of candidate ID to score:

	count, err := agg.SaveVotes(ctx, ballotID, userID, map[string]int{
		candidateA: 90,
		candidateB: 45,
	})

Saving again overwrites the earlier score for that candidate; the
(ballot, candidate, user) triple is unique. Scores outside 0-99, unknown
candidates and empty submissions are rejected with apperr.ErrInvalid before
anything is written. Only open ballots accept votes.

# Results

A candidate's result is the arithmetic mean of its scores:

	results, err := agg.GetResults(ctx, ballotID) // candidate ID -> average

Candidates with no scores are absent rather than reported as zero.
GetResultRows adds names, vote counts and ranks for display.
*/
package voting
