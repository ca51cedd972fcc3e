// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package nomination

import (
	"slices"
	"sync"
	"time"

	"github.com/grifftatarsky/bonk/models"
)

// Entry is a candidate list element: Placeholder or Confirmed.
type Entry interface {
	ID() string
	isEntry()
}

// Placeholder stands in for a nomination the server has not confirmed yet.
type Placeholder struct {
	SyntheticID string
	Descriptor  Descriptor
	CreatedAt   time.Time
}

func (p Placeholder) ID() string { return p.SyntheticID }
func (Placeholder) isEntry()     {}

// Confirmed is a candidate that exists server-side.
type Confirmed struct {
	Candidate models.Candidate
}

func (c Confirmed) ID() string { return c.Candidate.ID }
func (Confirmed) isEntry()     {}

// List is the ordered candidate list of one election.
type List struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewList() *List {
	return &List{}
}

func (l *List) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.entries)
}

func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// ReplaceAll installs a fresh server listing. Placeholders still in flight
// stay at the front.
func (l *List) ReplaceAll(candidates []models.Candidate) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]Entry, 0, len(candidates)+len(l.entries))
	for _, e := range l.entries {
		if p, ok := e.(Placeholder); ok {
			next = append(next, p)
		}
	}
	for _, c := range candidates {
		next = append(next, Confirmed{Candidate: c})
	}
	l.entries = next
}

func (l *List) InsertFront(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = slices.Insert(l.entries, 0, e)
}

// Replace swaps the entry with the given id for c, keeping its position.
func (l *List) Replace(id string, c models.Candidate) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.entries[i] = Confirmed{Candidate: c}
	return true
}

// Remove deletes the entry with the given id and returns it with its index.
func (l *List) Remove(id string) (Entry, int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(id)
	if i < 0 {
		return nil, -1, false
	}
	e := l.entries[i]
	l.entries = slices.Delete(l.entries, i, i+1)
	return e, i, true
}

// insertAt puts e back at index i, clamped to the list bounds.
func (l *List) insertAt(i int, e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i = max(0, min(i, len(l.entries)))
	l.entries = slices.Insert(l.entries, i, e)
}

func (l *List) Get(id string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i := l.index(id)
	if i < 0 {
		return nil, false
	}
	return l.entries[i], true
}

// ConfirmedIDs is the set of rankable candidate ids.
func (l *List) ConfirmedIDs() map[string]bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make(map[string]bool, len(l.entries))
	for _, e := range l.entries {
		if c, ok := e.(Confirmed); ok {
			ids[c.Candidate.ID] = true
		}
	}
	return ids
}

func (l *List) index(id string) int {
	return slices.IndexFunc(l.entries, func(e Entry) bool { return e.ID() == id })
}
