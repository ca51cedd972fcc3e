// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"

	"github.com/grifftatarsky/bonk/models"
)

// Remote is the voting service an Engine reconciles against. The voter is
// implied by the implementation's credentials.
type Remote interface {
	SetRank(ctx context.Context, candidateID string, rank int) (models.Vote, error)
	ClearRank(ctx context.Context, candidateID string) error
	ListVotes(ctx context.Context, voterID, electionID string) ([]models.Vote, error)

	CreateBook(ctx context.Context, req models.BookRequest) (models.Book, error)
	Nominate(ctx context.Context, electionID, bookID string) (models.Candidate, error)
	Withdraw(ctx context.Context, electionID, candidateID string) error
	ListCandidates(ctx context.Context, electionID string) ([]models.Candidate, error)
}
