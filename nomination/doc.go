// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package nomination keeps an election's candidate list responsive while
nominations and withdrawals are in flight.

A list entry is either a Placeholder (inserted before the server has
answered) or a Confirmed candidate. Only confirmed candidates can be ranked.

	lc := nomination.NewLifecycle(list, logger)
	cand, err := lc.Nominate(ctx, nomination.FromCustom("Dune", "Frank Herbert", "", ""), materialize)

On failure the placeholder is removed and the list looks as if the
nomination never started.
*/
package nomination
