// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/grifftatarsky/bonk/models"
)

// ExecuteFunc performs one remote mutation. For OpSetRank it returns the
// server-confirmed vote; for OpClearRank the returned vote is ignored.
type ExecuteFunc func(ctx context.Context, op Operation) (models.Vote, error)

// Executor applies plans against a Store. At most one plan runs at a time;
// Busy reports whether one is in flight. Every store mutation goes through
// the executor, including Forget.
type Executor struct {
	store   *Store
	voterID string
	busy    atomic.Bool
	logger  *slog.Logger

	// mu guards forgotten and the release of busy
	mu        sync.Mutex
	forgotten []string
}

// NewExecutor returns an executor committing into store. voterID fills the
// voter of votes the server did not individually confirm.
func NewExecutor(store *Store, voterID string, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{store: store, voterID: voterID, logger: logger}
}

func (e *Executor) Busy() bool {
	return e.busy.Load()
}

// Apply runs plan. It returns ErrBusy without touching anything if another
// plan is in flight.
func (e *Executor) Apply(ctx context.Context, plan Plan, execute ExecuteFunc) error {
	if !e.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer e.release()

	return e.run(ctx, plan, execute)
}

// Reconcile plans against the store and applies the result, holding the busy
// guard for both steps. desire receives the current ranked votes and returns
// the normalized desired order.
func (e *Executor) Reconcile(ctx context.Context, desire func([]models.Vote) []string, execute ExecuteFunc) (Plan, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return Plan{}, ErrBusy
	}
	defer e.release()

	current := e.store.Ranked()
	plan := NewPlan(current, desire(current))
	return plan, e.run(ctx, plan, execute)
}

// Forget drops the votes for candidateIDs, typically candidates that were
// withdrawn. While a plan is in flight the removal is deferred until the plan
// has committed or rolled back, so neither can write the votes back.
func (e *Executor) Forget(candidateIDs ...string) {
	if len(candidateIDs) == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.busy.CompareAndSwap(false, true) {
		e.forgotten = append(e.forgotten, candidateIDs...)
		return
	}
	e.remove(candidateIDs)
	e.busy.Store(false)
}

// Replace swaps the whole ballot for votes fetched from the server. It
// reports false, changing nothing, while a plan is in flight.
func (e *Executor) Replace(votes []models.Vote) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.busy.CompareAndSwap(false, true) {
		return false
	}
	e.store.ReplaceAll(votes)
	e.busy.Store(false)
	return true
}

// release applies deferred Forget calls and clears busy in one step, so a
// Forget never queues behind a plan that has already finished.
func (e *Executor) release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.remove(e.forgotten)
	e.forgotten = nil
	e.busy.Store(false)
}

func (e *Executor) remove(candidateIDs []string) {
	for _, id := range candidateIDs {
		if e.store.Remove(id) {
			e.logger.Debug("vote forgotten", "candidate_id", id)
		}
	}
}

func (e *Executor) run(ctx context.Context, plan Plan, execute ExecuteFunc) error {
	if plan.NoOp() {
		return nil
	}

	snapshot := e.store.Snapshot()
	working := maps.Clone(snapshot.votes)
	if working == nil {
		working = make(map[string]models.Vote)
	}

	for i, op := range plan.Ops {
		err := ctx.Err()
		var vote models.Vote
		if err == nil {
			vote, err = execute(ctx, op)
		}
		if err != nil {
			e.store.Restore(snapshot)
			e.logger.Warn("ballot rolled back", "op", op.String(), "accepted", i, "error", err)
			if i == 0 {
				return &RemoteRejection{Op: op, Err: err}
			}
			accepted := make([]Operation, i)
			copy(accepted, plan.Ops[:i])
			return &PartialProgressError{Accepted: accepted, Failed: op, Err: err}
		}

		switch op.Kind {
		case OpSetRank:
			if vote.CandidateID == "" {
				vote.CandidateID = op.CandidateID
			}
			working[op.CandidateID] = vote
		case OpClearRank:
			delete(working, op.CandidateID)
		}
	}

	e.store.ReplaceAll(e.commit(plan.Desired, working, snapshot))
	e.logger.Debug("ballot reconciled", "ops", len(plan.Ops), "ranked", len(plan.Desired))
	return nil
}

// commit builds the final ballot from the desired order. Ranks always come
// from position, so the local view matches the request even when the server
// omitted fields or never confirmed an entry individually.
func (e *Executor) commit(desired []string, working map[string]models.Vote, snapshot Snapshot) []models.Vote {
	fallbackVoter := e.voterID
	if votes := snapshot.Votes(); fallbackVoter == "" && len(votes) > 0 {
		fallbackVoter = votes[0].VoterID
	}

	final := make([]models.Vote, 0, len(desired))
	for i, id := range desired {
		v, ok := working[id]
		if !ok {
			v = models.Vote{ID: "temp-" + id, CandidateID: id}
		}
		v.CandidateID = id
		v.Rank = i + 1
		if v.VoterID == "" {
			v.VoterID = fallbackVoter
		}
		final = append(final, v)
	}
	return final
}
