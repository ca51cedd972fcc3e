// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package nomination

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/grifftatarsky/bonk/models"
)

var (
	ErrBusy        = errors.New("nomination: another nomination is in progress")
	ErrNotFound    = errors.New("nomination: candidate not found")
	ErrPlaceholder = errors.New("nomination: candidate is not confirmed yet")
)

// MaterializeFunc performs the remote calls that turn a descriptor into a
// candidate, e.g. create-book then nominate.
type MaterializeFunc func(ctx context.Context, d Descriptor) (models.Candidate, error)

// RemoveFunc withdraws a confirmed candidate remotely.
type RemoveFunc func(ctx context.Context, candidateID string) error

// Lifecycle runs optimistic nominations and withdrawals against a List. One
// operation runs at a time.
type Lifecycle struct {
	list   *List
	busy   atomic.Bool
	newID  func() string
	logger *slog.Logger
}

func NewLifecycle(list *List, logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lifecycle{
		list:   list,
		newID:  func() string { return "tmp-" + uuid.NewString() },
		logger: logger,
	}
}

func (l *Lifecycle) Busy() bool {
	return l.busy.Load()
}

// Nominate inserts a placeholder at the front of the list, materializes it,
// and swaps in the confirmed candidate. On failure the placeholder is removed
// and the error returned.
func (l *Lifecycle) Nominate(ctx context.Context, d Descriptor, materialize MaterializeFunc) (models.Candidate, error) {
	if !l.busy.CompareAndSwap(false, true) {
		return models.Candidate{}, ErrBusy
	}
	defer l.busy.Store(false)

	placeholder := Placeholder{
		SyntheticID: l.newID(),
		Descriptor:  d,
		CreatedAt:   time.Now(),
	}
	l.list.InsertFront(placeholder)

	candidate, err := materialize(ctx, d)
	if err != nil {
		l.list.Remove(placeholder.SyntheticID)
		l.logger.Warn("nomination rolled back", "title", d.Title, "error", err)
		return models.Candidate{}, fmt.Errorf("nominate %q: %w", d.Title, err)
	}

	if !l.list.Replace(placeholder.SyntheticID, candidate) {
		// a refresh replaced the list meanwhile
		if _, ok := l.list.Get(candidate.ID); !ok {
			l.list.InsertFront(Confirmed{Candidate: candidate})
		}
	} else if l.count(candidate.ID) > 1 {
		l.list.Remove(candidate.ID)
	}

	l.logger.Info("candidate nominated", "candidate_id", candidate.ID, "title", candidate.Book.Title)
	return candidate, nil
}

// Withdraw removes a confirmed candidate optimistically and puts it back in
// place if the remote call fails.
func (l *Lifecycle) Withdraw(ctx context.Context, candidateID string, remove RemoveFunc) error {
	if !l.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer l.busy.Store(false)

	entry, ok := l.list.Get(candidateID)
	if !ok {
		return ErrNotFound
	}
	if _, isPlaceholder := entry.(Placeholder); isPlaceholder {
		return ErrPlaceholder
	}

	entry, idx, _ := l.list.Remove(candidateID)
	if err := remove(ctx, candidateID); err != nil {
		l.list.insertAt(idx, entry)
		l.logger.Warn("withdrawal rolled back", "candidate_id", candidateID, "error", err)
		return fmt.Errorf("withdraw %s: %w", candidateID, err)
	}

	l.logger.Info("candidate withdrawn", "candidate_id", candidateID)
	return nil
}

// count is above one when a refresh delivered the candidate before its
// placeholder was swapped.
func (l *Lifecycle) count(id string) int {
	n := 0
	for _, e := range l.list.Entries() {
		if e.ID() == id {
			n++
		}
	}
	return n
}
