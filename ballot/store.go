// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/grifftatarsky/bonk/models"
)

// Store holds the last server-confirmed votes of one voter in one election,
// keyed by candidate id. It never performs I/O.
type Store struct {
	mu    sync.RWMutex
	votes map[string]models.Vote
}

// Snapshot is an immutable copy of a Store's contents.
type Snapshot struct {
	votes map[string]models.Vote
}

func NewStore() *Store {
	return &Store{votes: make(map[string]models.Vote)}
}

// Ranked returns the ballot sorted by rank ascending.
func (s *Store) Ranked() []models.Vote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedVotes(s.votes)
}

// Order returns candidate ids in rank order.
func (s *Store) Order() []string {
	ranked := s.Ranked()
	order := make([]string, len(ranked))
	for i, v := range ranked {
		order[i] = v.CandidateID
	}
	return order
}

func (s *Store) Rank(candidateID string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.votes[candidateID]
	return v.Rank, ok
}

// Unranked returns the ids from candidateIDs that have no vote, in input order.
func (s *Store) Unranked(candidateIDs []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	unranked := []string{}
	for _, id := range candidateIDs {
		if _, ok := s.votes[id]; !ok {
			unranked = append(unranked, id)
		}
	}
	return unranked
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.votes)
}

// Upsert inserts or replaces the vote for v.CandidateID.
func (s *Store) Upsert(v models.Vote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes[v.CandidateID] = v
}

func (s *Store) Remove(candidateID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.votes[candidateID]
	delete(s.votes, candidateID)
	return ok
}

// ReplaceAll swaps the whole ballot, e.g. after a remote refresh.
func (s *Store) ReplaceAll(votes []models.Vote) {
	next := make(map[string]models.Vote, len(votes))
	for _, v := range votes {
		next[v.CandidateID] = v
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes = next
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{votes: maps.Clone(s.votes)}
}

func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes = maps.Clone(snap.votes)
	if s.votes == nil {
		s.votes = make(map[string]models.Vote)
	}
}

// Votes returns the snapshot's votes in rank order.
func (snap Snapshot) Votes() []models.Vote {
	return sortedVotes(snap.votes)
}

func sortedVotes(votes map[string]models.Vote) []models.Vote {
	out := slices.Collect(maps.Values(votes))
	sortVotes(out)
	return out
}

// sortVotes orders by rank, breaking ties by candidate id so views stay stable
// even when the server briefly holds duplicate ranks.
func sortVotes(votes []models.Vote) {
	slices.SortFunc(votes, func(a, b models.Vote) int {
		if a.Rank != b.Rank {
			return a.Rank - b.Rank
		}
		return strings.Compare(a.CandidateID, b.CandidateID)
	})
}
