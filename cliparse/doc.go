// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Postgres connection string or SQLite DSN (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - SweepInterval: How often expired ballots are auto-closed (default: 1h)
  - ShutdownTimeout: Grace period for in-flight requests (default: 10s)
  - LogFormat, LogLevel: Logger setup (default: text, info)

# Sources

Values are resolved in increasing precedence:

	struct defaults → .env file → environment → CLI flags

The environment is decoded with caarlos0/env; a .env file in the working
directory is loaded with godotenv when present and never overrides variables
that are already set.

# CLI Flags

	-p                Server port                  PORT
	-d                Database URL                 DATABASE_URL
	-t                Database type                DATABASE_TYPE
	-sweep            Auto-close sweep interval    SWEEP_INTERVAL
	-shutdown-timeout Graceful shutdown timeout    SHUTDOWN_TIMEOUT
	-log-format       text or json                 LOG_FORMAT
	-log-level        debug, info, warn, error     LOG_LEVEL

# Validation

ParseFlags returns an error if DATABASE_URL is missing, the database type or
log format is unknown, or the port or sweep interval is out of range.
*/
package cliparse
