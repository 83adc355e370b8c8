// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and applies the schema.

# Connecting

Open supports the two drivers selected by DATABASE_TYPE:

	conn, err := db.Open(ctx, "postgres", "postgres://...")   // lib/pq
	conn, err := db.Open(ctx, "sqlite", "file:ballots.db")     // modernc.org/sqlite

SQLite connections get foreign keys, a busy timeout and the "sqlite" time
format, and are limited to one open connection.

# Migrations

Migrate applies the embedded migrations for the dialect with golang-migrate:

	if err := db.Migrate(ctx, conn, "postgres"); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - already applied versions are skipped.

# Tables

  - organizations, organization_members: org roster
  - ballots: metadata, lifecycle state, denormalized counts
  - candidates: options within a ballot
  - votes: one score per (ballot, candidate, user)
  - ballot_permissions: explicit grants and pending email invitations
  - share_links: anonymous capability tokens

# Relationships

	organization 1──* organization_members
	organization 1──* ballot (ON DELETE SET NULL)
	ballot 1──* candidate
	ballot 1──* vote, candidate 1──* vote
	ballot 1──* ballot_permission
	ballot 1──* share_link

Ballot-owned rows use ON DELETE CASCADE.

# Constraints

  - ballots: CHECK (is_open = (status = 'open'))
  - votes: PRIMARY KEY (ballot_id, candidate_id, user_id), score 0-99
  - ballot_permissions: UNIQUE (ballot_id, user_id), UNIQUE (ballot_id, invited_email)
  - share_links: token UNIQUE
*/
package db
