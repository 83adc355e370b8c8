// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package lifecycle manages ballot state.

# States

Ballots move between draft, open and closed:

	draft → open (Manager.Open)
	open → closed (Manager.Close)
	closed → open (Manager.Open, re-open)

Archived ballots are frozen: Open and Close return apperr.ErrInvalidState.
Every transition writes status and is_open in one UPDATE, so the two never
disagree.

# Auto-close

Scheduler sweeps on its own goroutine, once at Start and then every interval:

	sched := lifecycle.NewScheduler(manager, st, time.Hour, logger)
	sched.Start(ctx)
	defer sched.Stop()

Each due ballot is closed by its own statement. Failures are logged and the
sweep moves on; there is no retry until the next tick.
*/
package lifecycle
