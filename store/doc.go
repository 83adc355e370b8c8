// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the typed data-access layer shared by every service.

One Store wraps a *sql.DB opened by package db. Queries use $N placeholders
and syntax accepted by both Postgres (lib/pq) and SQLite (modernc.org/sqlite).

# Transactions

	err := st.InTx(ctx, func(tx *store.Store) error {
		if err := tx.UpsertVote(ctx, v); err != nil {
			return err
		}
		_, err := tx.RecountVotes(ctx, ballotID, now)
		return err
	})

Inside fn only tx may be used. SQLite runs with a single connection, so a
query on the outer store would wait on the transaction forever.

# Errors

Lookups of a single row return apperr.NotFound. Inserts that hit a unique
constraint return an error wrapping ErrDuplicate; services translate it into
the kind their callers expect.

# Timestamps

All timestamps are written and returned in UTC.
*/
package store
