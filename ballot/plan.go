// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"fmt"
	"slices"

	"github.com/grifftatarsky/bonk/models"
)

type OpKind int

const (
	OpSetRank OpKind = iota + 1
	OpClearRank
)

func (k OpKind) String() string {
	switch k {
	case OpSetRank:
		return "set_rank"
	case OpClearRank:
		return "clear_rank"
	}
	return "unknown"
}

// Operation is a single remote mutation addressing exactly one candidate.
type Operation struct {
	Kind        OpKind
	CandidateID string
	Rank        int // zero for OpClearRank
}

func SetRank(candidateID string, rank int) Operation {
	return Operation{Kind: OpSetRank, CandidateID: candidateID, Rank: rank}
}

func ClearRank(candidateID string) Operation {
	return Operation{Kind: OpClearRank, CandidateID: candidateID}
}

func (o Operation) String() string {
	if o.Kind == OpSetRank {
		return fmt.Sprintf("%s(%s, %d)", o.Kind, o.CandidateID, o.Rank)
	}
	return fmt.Sprintf("%s(%s)", o.Kind, o.CandidateID)
}

// Plan is the minimal set of operations that turns the current votes into
// Desired. SetRank operations come first in desired order, then ClearRank
// operations in current rank order.
type Plan struct {
	Desired []string
	Ops     []Operation
	noop    bool
}

// NoOp reports whether the desired order already matches the current ballot.
func (p Plan) NoOp() bool {
	return p.noop
}

// NewPlan diffs a normalized desired order against the current votes.
// Clearing a ballot is NewPlan(current, nil).
func NewPlan(current []models.Vote, desired []string) Plan {
	ranks := make(map[string]int, len(current))
	for _, v := range current {
		ranks[v.CandidateID] = v.Rank
	}

	var ops []Operation
	wanted := make(map[string]bool, len(desired))
	for i, id := range desired {
		wanted[id] = true
		rank, ok := ranks[id]
		if !ok || rank != i+1 {
			ops = append(ops, SetRank(id, i+1))
		}
	}

	ranked := slices.Clone(current)
	sortVotes(ranked)
	currentOrder := make([]string, 0, len(ranked))
	for _, v := range ranked {
		currentOrder = append(currentOrder, v.CandidateID)
		if !wanted[v.CandidateID] {
			ops = append(ops, ClearRank(v.CandidateID))
		}
	}

	return Plan{
		Desired: slices.Clone(desired),
		Ops:     ops,
		noop:    len(ops) == 0 && slices.Equal(desired, currentOrder),
	}
}

// Desire adapts a fixed order to Executor.Reconcile.
func Desire(order []string) func([]models.Vote) []string {
	return func([]models.Vote) []string {
		return order
	}
}
