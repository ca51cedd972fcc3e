// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/grifftatarsky/bonk/ballot"
	"github.com/grifftatarsky/bonk/metrics"
	"github.com/grifftatarsky/bonk/models"
	"github.com/grifftatarsky/bonk/nomination"
)

var (
	ErrInvalidRank      = errors.New("election: rank must not be negative")
	ErrUnknownCandidate = errors.New("election: candidate is not part of this election")
)

// Engine drives one voter's ballot and nominations for one election.
type Engine struct {
	electionID string
	voterID    string
	remote     Remote

	votes    *ballot.Store
	executor *ballot.Executor

	candidates *nomination.List
	lifecycle  *nomination.Lifecycle

	mu       sync.Mutex
	voteBusy map[string]bool
	lastErr  map[Family]error

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records reconciliation and nomination outcomes into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New returns an empty engine. Call Load to populate it.
func New(electionID, voterID string, remote Remote, opts ...Option) *Engine {
	e := &Engine{
		electionID: electionID,
		voterID:    voterID,
		remote:     remote,
		votes:      ballot.NewStore(),
		candidates: nomination.NewList(),
		voteBusy:   make(map[string]bool),
		lastErr:    make(map[Family]error),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("election_id", electionID)
	e.executor = ballot.NewExecutor(e.votes, voterID, e.logger)
	e.lifecycle = nomination.NewLifecycle(e.candidates, e.logger)
	return e
}

func (e *Engine) ElectionID() string { return e.electionID }

// Load fetches the candidates and then the voter's votes.
func (e *Engine) Load(ctx context.Context) error {
	if err := e.RefreshCandidates(ctx); err != nil {
		return err
	}
	return e.RefreshVotes(ctx)
}

// RefreshCandidates replaces the candidate list with the server's. Pending
// nominations stay in place, and votes for candidates that no longer exist
// are dropped once no reconciliation is in flight.
func (e *Engine) RefreshCandidates(ctx context.Context) error {
	candidates, err := e.remote.ListCandidates(ctx, e.electionID)
	if err != nil {
		return fmt.Errorf("list candidates: %w", err)
	}
	e.candidates.ReplaceAll(candidates)

	valid := e.candidates.ConfirmedIDs()
	var stale []string
	for _, v := range e.votes.Ranked() {
		if !valid[v.CandidateID] {
			stale = append(stale, v.CandidateID)
		}
	}
	e.executor.Forget(stale...)
	return nil
}

// RefreshVotes replaces the local ballot with the server's. It does nothing
// while a reconciliation is in flight, since that one commits its own result.
func (e *Engine) RefreshVotes(ctx context.Context) error {
	if e.executor.Busy() {
		e.logger.Debug("vote refresh skipped, ballot busy")
		return nil
	}
	votes, err := e.remote.ListVotes(ctx, e.voterID, e.electionID)
	if err != nil {
		return fmt.Errorf("list votes: %w", err)
	}
	if !e.executor.Replace(votes) {
		e.logger.Debug("vote refresh discarded, ballot busy")
	}
	return nil
}

// RequestReorder makes the voter's ballot match order. Unknown and repeated
// ids are dropped first; an order that keeps nothing after that is ignored.
// An empty order clears the ballot.
func (e *Engine) RequestReorder(ctx context.Context, order []string) error {
	desired := ballot.Normalize(order, e.candidates.ConfirmedIDs())
	if len(order) > 0 && len(desired) == 0 {
		e.logger.Debug("reorder ignored, no valid candidates", "requested", len(order))
		return nil
	}
	return e.reconcile(ctx, ballot.Desire(desired))
}

// RequestClearBallot removes every rank from the ballot.
func (e *Engine) RequestClearBallot(ctx context.Context) error {
	return e.RequestReorder(ctx, nil)
}

// RequestRankChange moves one candidate to rank, shifting the others. Rank 0
// unranks the candidate; ranks past the end append it.
func (e *Engine) RequestRankChange(ctx context.Context, candidateID string, rank int) error {
	if rank < 0 {
		return ErrInvalidRank
	}
	valid := e.candidates.ConfirmedIDs()
	if !valid[candidateID] {
		return ErrUnknownCandidate
	}

	e.mu.Lock()
	if e.voteBusy[candidateID] {
		e.mu.Unlock()
		e.logger.Debug("rank change dropped, candidate busy", "candidate_id", candidateID)
		return nil
	}
	e.voteBusy[candidateID] = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		delete(e.voteBusy, candidateID)
		e.mu.Unlock()
	}()

	return e.reconcile(ctx, func(current []models.Vote) []string {
		return ballot.Normalize(moveTo(current, candidateID, rank), valid)
	})
}

// moveTo returns the current order with id placed at rank, or removed when
// rank is 0.
func moveTo(current []models.Vote, id string, rank int) []string {
	order := make([]string, 0, len(current)+1)
	for _, v := range current {
		if v.CandidateID != id {
			order = append(order, v.CandidateID)
		}
	}
	if rank == 0 {
		return order
	}
	pos := min(rank-1, len(order))
	return slices.Insert(order, pos, id)
}

func (e *Engine) reconcile(ctx context.Context, desire func([]models.Vote) []string) error {
	start := time.Now()
	plan, err := e.executor.Reconcile(ctx, desire, e.execute)
	switch {
	case errors.Is(err, ballot.ErrBusy):
		e.logger.Debug("ballot request dropped, reconciliation in flight")
		e.metrics.Reconciliation(metrics.ResultDropped, start)
		return nil
	case err != nil:
		e.metrics.Reconciliation(metrics.ResultRolledBack, start)
		e.setErr(FamilyBallot, err)
		return err
	case plan.NoOp():
		e.metrics.Reconciliation(metrics.ResultNoop, start)
	default:
		e.metrics.Reconciliation(metrics.ResultCommitted, start)
	}
	e.setErr(FamilyBallot, nil)
	return nil
}

func (e *Engine) execute(ctx context.Context, op ballot.Operation) (models.Vote, error) {
	switch op.Kind {
	case ballot.OpSetRank:
		return e.remote.SetRank(ctx, op.CandidateID, op.Rank)
	case ballot.OpClearRank:
		return models.Vote{}, e.remote.ClearRank(ctx, op.CandidateID)
	}
	return models.Vote{}, fmt.Errorf("unknown operation %s", op)
}

// RequestNominate adds a candidate built from d. A placeholder is listed
// until the server confirms it. A zero Candidate with a nil error means the
// request was dropped because another nomination was in flight.
func (e *Engine) RequestNominate(ctx context.Context, d nomination.Descriptor) (models.Candidate, error) {
	c, err := e.lifecycle.Nominate(ctx, d, e.materialize)
	if errors.Is(err, nomination.ErrBusy) {
		e.logger.Debug("nomination dropped, another in flight")
		e.metrics.Nomination("nominate", metrics.ResultDropped)
		return models.Candidate{}, nil
	}
	if err != nil {
		e.metrics.Nomination("nominate", metrics.ResultRolledBack)
		e.setErr(FamilyNomination, err)
		return models.Candidate{}, err
	}
	e.metrics.Nomination("nominate", metrics.ResultCommitted)
	e.setErr(FamilyNomination, nil)
	return c, nil
}

// materialize creates the book unless the descriptor names an existing one,
// then nominates it.
func (e *Engine) materialize(ctx context.Context, d nomination.Descriptor) (models.Candidate, error) {
	bookID := d.BookID
	if bookID == "" {
		book, err := e.remote.CreateBook(ctx, d.BookRequest())
		if err != nil {
			return models.Candidate{}, fmt.Errorf("create book: %w", err)
		}
		bookID = book.ID
	}
	c, err := e.remote.Nominate(ctx, e.electionID, bookID)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("nominate book %s: %w", bookID, err)
	}
	return c, nil
}

// RequestWithdraw removes a candidate from the election. The server drops
// every vote for it, so the local vote goes too, after any reconciliation in
// flight has finished.
func (e *Engine) RequestWithdraw(ctx context.Context, candidateID string) error {
	err := e.lifecycle.Withdraw(ctx, candidateID, func(ctx context.Context, id string) error {
		return e.remote.Withdraw(ctx, e.electionID, id)
	})
	switch {
	case errors.Is(err, nomination.ErrBusy):
		e.logger.Debug("withdrawal dropped, another in flight")
		e.metrics.Nomination("withdraw", metrics.ResultDropped)
		return nil
	case errors.Is(err, nomination.ErrNotFound), errors.Is(err, nomination.ErrPlaceholder):
		e.setErr(FamilyNomination, err)
		return err
	case err != nil:
		e.metrics.Nomination("withdraw", metrics.ResultRolledBack)
		e.setErr(FamilyNomination, err)
		return err
	}

	e.executor.Forget(candidateID)
	e.metrics.Nomination("withdraw", metrics.ResultCommitted)
	e.setErr(FamilyNomination, nil)
	return nil
}

func (e *Engine) setErr(f Family, err error) {
	e.mu.Lock()
	e.lastErr[f] = err
	e.mu.Unlock()
}
