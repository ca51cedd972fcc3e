// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ballot turns a voter's desired ranked order into the remote
mutations that realize it, while keeping a local copy of the ballot that can
be rolled back.

# Pieces

  - Normalize: drops unknown and repeated candidate ids from a requested order
  - NewPlan: diffs a normalized order against the current votes
  - Store: the last server-confirmed votes of one voter in one election
  - Executor: runs a Plan against a remote collaborator, commits or rolls back

# Flow

	order := ballot.Normalize(requested, validIDs)
	plan, err := exec.Reconcile(ctx, ballot.Desire(order), executeOne)

Reconcile plans against the store while holding the executor's busy guard, so
a plan is never computed from state that another reconciliation is about to
replace.

# Ranks

Ranks are positional: the candidate at index i of the desired order gets rank
i+1. Removing a candidate from the middle therefore re-ranks every later one.
After a successful Apply the store holds ranks 1..N with no gaps, unless a
Forget landed during the plan.

# Outside changes

Withdrawn candidates and server refreshes also reach the store through the
executor. Forget removes votes at once when idle; while a plan runs it waits
and applies them after the commit or rollback. Replace swaps the whole ballot
and refuses while a plan runs.

# Failure

Operations run one at a time in plan order. The first failure stops the
sequence and restores the store to its snapshot from before the call. Remote
side effects of operations accepted before the failure are not undone; such
failures are reported as *PartialProgressError so callers can tell the user
that a refresh may be needed.
*/
package ballot
