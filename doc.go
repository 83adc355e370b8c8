// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Ballotbox API server.

Ballotbox hosts score ballots: owners add candidates, voters score each
candidate from 0 to 99, and results rank candidates by average score.
Ballots are shared through explicit grants, email invitations, share links,
organization membership and a public marketplace.

# Starting the Server

A database URL is required. SQLite is the default backend:

	DATABASE_URL=ballotbox.db go run .

Or PostgreSQL with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Settings come from the environment (and an optional .env file), then flags:

  - DATABASE_URL (-d): Connection string or SQLite path
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - PORT (-p): Server port (default: 3318)
  - SWEEP_INTERVAL (--sweep): How often due ballots are auto-closed (default: 1h)
  - SHUTDOWN_TIMEOUT (--shutdown-timeout): Grace period for in-flight requests (default: 10s)
  - LOG_FORMAT, LOG_LEVEL: text or json; debug, info, warn or error

# Architecture

  - handlers, router, middleware: HTTP surface
  - access: Permission resolution
  - sharelink: Share link tokens
  - lifecycle: Open/close transitions and the auto-close scheduler
  - voting: Score storage and aggregation
  - marketplace: Public ballot listing and self-join
  - ballots, grants, orgs: Ballot, grant and organization management
  - store, db: Persistence and migrations
  - apperr, auth, telemetry, cliparse: Errors, IDs, logging and config

See package documentation for each component.
*/
package main
