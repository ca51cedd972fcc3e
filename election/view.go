// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"github.com/grifftatarsky/bonk/models"
	"github.com/grifftatarsky/bonk/nomination"
)

// Family groups requests that share a busy flag and a last error.
type Family string

const (
	FamilyBallot     Family = "ballot"
	FamilyNomination Family = "nomination"
)

// Item is one candidate as the voter sees it.
type Item struct {
	Candidate models.Candidate
	// Rank is the voter's rank for the candidate, 0 when unranked.
	Rank int
	// Pending marks a nomination placeholder. Its Candidate carries the
	// synthetic id and the descriptor's book fields.
	Pending bool
	// Busy is set while a rank change for this candidate is in flight.
	Busy bool
}

// View is a read-only snapshot of an Engine.
type View struct {
	ElectionID string

	// Items lists every candidate in list order, newest nomination first.
	Items []Item
	// Ranked lists the ranked candidates by rank.
	Ranked []Item
	// Unranked lists the rest, including pending nominations, in list order.
	Unranked []Item

	ReorderBusy    bool
	NominationBusy bool

	BallotErr     error
	NominationErr error
}

// View returns the current state of the engine.
func (e *Engine) View() View {
	e.mu.Lock()
	busy := make(map[string]bool, len(e.voteBusy))
	for id := range e.voteBusy {
		busy[id] = true
	}
	v := View{
		ElectionID:     e.electionID,
		ReorderBusy:    e.executor.Busy(),
		NominationBusy: e.lifecycle.Busy(),
		BallotErr:      e.lastErr[FamilyBallot],
		NominationErr:  e.lastErr[FamilyNomination],
	}
	e.mu.Unlock()

	entries := e.candidates.Entries()
	byID := make(map[string]Item, len(entries))
	v.Items = make([]Item, 0, len(entries))
	v.Unranked = []Item{}
	for _, entry := range entries {
		var it Item
		switch entry := entry.(type) {
		case nomination.Confirmed:
			it.Candidate = entry.Candidate
			it.Rank, _ = e.votes.Rank(entry.Candidate.ID)
			it.Busy = busy[entry.Candidate.ID]
		case nomination.Placeholder:
			it.Candidate = placeholderCandidate(e.electionID, entry)
			it.Pending = true
		}
		v.Items = append(v.Items, it)
		byID[it.Candidate.ID] = it
		if it.Rank == 0 {
			v.Unranked = append(v.Unranked, it)
		}
	}

	v.Ranked = []Item{}
	for _, vote := range e.votes.Ranked() {
		if it, ok := byID[vote.CandidateID]; ok && !it.Pending {
			v.Ranked = append(v.Ranked, it)
		}
	}
	return v
}

// Busy reports whether a request of the given family is in flight.
func (e *Engine) Busy(f Family) bool {
	switch f {
	case FamilyBallot:
		return e.executor.Busy()
	case FamilyNomination:
		return e.lifecycle.Busy()
	}
	return false
}

// LastError returns the error of the family's most recent request, or nil if
// it succeeded.
func (e *Engine) LastError(f Family) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr[f]
}

func placeholderCandidate(electionID string, p nomination.Placeholder) models.Candidate {
	return models.Candidate{
		ID:         p.SyntheticID,
		ElectionID: electionID,
		Book: models.Book{
			ID:            p.Descriptor.BookID,
			Title:         p.Descriptor.Title,
			Author:        p.Descriptor.Author,
			ImageURL:      p.Descriptor.ImageURL,
			Blurb:         p.Descriptor.Blurb,
			OpenLibraryID: p.Descriptor.OpenLibraryID,
		},
		CreatedAt: p.CreatedAt,
	}
}
