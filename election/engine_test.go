// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/fake"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grifftatarsky/bonk/ballot"
	"github.com/grifftatarsky/bonk/metrics"
	"github.com/grifftatarsky/bonk/models"
	"github.com/grifftatarsky/bonk/nomination"
)

var errServer = errors.New("server said no")

// fakeRemote keeps one voter's votes and one election's candidates in memory.
type fakeRemote struct {
	mu         sync.Mutex
	votes      map[string]models.Vote
	candidates []models.Candidate
	books      map[string]models.Book
	calls      []string
	fail       map[string]error
	seq        int

	// when set, SetRank signals entered and waits on release
	entered chan struct{}
	release chan struct{}
}

func newFakeRemote(candidateIDs ...string) *fakeRemote {
	r := &fakeRemote{
		votes: make(map[string]models.Vote),
		books: make(map[string]models.Book),
		fail:  make(map[string]error),
	}
	for _, id := range candidateIDs {
		r.candidates = append(r.candidates, models.Candidate{
			ID:         id,
			ElectionID: "e1",
			Book:       models.Book{ID: "b-" + id, Title: fake.WordsN(3), Author: fake.WordsN(2)},
		})
	}
	return r
}

func (r *fakeRemote) record(call string) error {
	r.calls = append(r.calls, call)
	return r.fail[call]
}

func (r *fakeRemote) SetRank(ctx context.Context, candidateID string, rank int) (models.Vote, error) {
	if r.entered != nil {
		r.entered <- struct{}{}
		<-r.release
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(fmt.Sprintf("set_rank(%s, %d)", candidateID, rank)); err != nil {
		return models.Vote{}, err
	}
	v, ok := r.votes[candidateID]
	if !ok {
		r.seq++
		v = models.Vote{ID: fmt.Sprintf("v%d", r.seq), CandidateID: candidateID, VoterID: "voter"}
	}
	v.Rank = rank
	r.votes[candidateID] = v
	return v, nil
}

func (r *fakeRemote) ClearRank(ctx context.Context, candidateID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(fmt.Sprintf("clear_rank(%s)", candidateID)); err != nil {
		return err
	}
	delete(r.votes, candidateID)
	return nil
}

func (r *fakeRemote) ListVotes(ctx context.Context, voterID, electionID string) ([]models.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("list_votes"); err != nil {
		return nil, err
	}
	out := make([]models.Vote, 0, len(r.votes))
	for _, v := range r.votes {
		out = append(out, v)
	}
	return out, nil
}

func (r *fakeRemote) CreateBook(ctx context.Context, req models.BookRequest) (models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("create_book"); err != nil {
		return models.Book{}, err
	}
	r.seq++
	b := models.Book{ID: fmt.Sprintf("b%d", r.seq), Title: req.Title, Author: req.Author}
	r.books[b.ID] = b
	return b, nil
}

func (r *fakeRemote) Nominate(ctx context.Context, electionID, bookID string) (models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("nominate(" + bookID + ")"); err != nil {
		return models.Candidate{}, err
	}
	r.seq++
	c := models.Candidate{ID: fmt.Sprintf("c%d", r.seq), ElectionID: electionID, Book: r.books[bookID]}
	r.candidates = append([]models.Candidate{c}, r.candidates...)
	return c, nil
}

func (r *fakeRemote) Withdraw(ctx context.Context, electionID, candidateID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("withdraw(" + candidateID + ")"); err != nil {
		return err
	}
	for i, c := range r.candidates {
		if c.ID == candidateID {
			r.candidates = append(r.candidates[:i], r.candidates[i+1:]...)
			break
		}
	}
	delete(r.votes, candidateID)
	return nil
}

func (r *fakeRemote) ListCandidates(ctx context.Context, electionID string) ([]models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("list_candidates"); err != nil {
		return nil, err
	}
	return append([]models.Candidate(nil), r.candidates...), nil
}

func (r *fakeRemote) serverOrder() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	votes := make([]models.Vote, 0, len(r.votes))
	for _, v := range r.votes {
		votes = append(votes, v)
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i].Rank < votes[j].Rank })
	out := []string{}
	for _, v := range votes {
		out = append(out, v.CandidateID)
	}
	return out
}

func (r *fakeRemote) resetCalls() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

func rankedIDs(v View) []string {
	out := []string{}
	for _, it := range v.Ranked {
		out = append(out, it.Candidate.ID)
	}
	return out
}

func loadedEngine(t *testing.T, remote *fakeRemote, opts ...Option) *Engine {
	t.Helper()
	eng := New("e1", "voter", remote, opts...)
	require.NoError(t, eng.Load(context.Background()))
	remote.resetCalls()
	return eng
}

func TestEngine_ReorderCommitsAndMatchesServer(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	remote := newFakeRemote("c1", "c2", "c3")
	eng := loadedEngine(t, remote)

	require.NoError(t, eng.RequestReorder(ctx, []string{"c2", "c1"}))
	assert.Equal([]string{"c2", "c1"}, rankedIDs(eng.View()))
	assert.Equal([]string{"c2", "c1"}, remote.serverOrder())

	remote.resetCalls()
	require.NoError(t, eng.RequestReorder(ctx, []string{"c1", "c2"}))
	assert.Equal([]string{"set_rank(c1, 1)", "set_rank(c2, 2)"}, remote.calls)

	v := eng.View()
	assert.Equal([]string{"c1", "c2"}, rankedIDs(v))
	require.Len(t, v.Unranked, 1)
	assert.Equal("c3", v.Unranked[0].Candidate.ID)
	assert.Equal(1, v.Ranked[0].Rank)
	assert.Equal(2, v.Ranked[1].Rank)
	assert.NoError(v.BallotErr)
}

func TestEngine_ReorderIdempotent(t *testing.T) {
	ctx := context.Background()

	remote := newFakeRemote("c1", "c2")
	eng := loadedEngine(t, remote)
	require.NoError(t, eng.RequestReorder(ctx, []string{"c1", "c2"}))
	remote.resetCalls()

	require.NoError(t, eng.RequestReorder(ctx, []string{"c1", "c2"}))
	assert.Empty(t, remote.calls)
}

func TestEngine_ReorderIgnoresInvalidOnlyInput(t *testing.T) {
	ctx := context.Background()

	remote := newFakeRemote("c1", "c2")
	eng := loadedEngine(t, remote)
	require.NoError(t, eng.RequestReorder(ctx, []string{"c1"}))
	remote.resetCalls()

	require.NoError(t, eng.RequestReorder(ctx, []string{"nope", "gone"}))
	assert.Empty(t, remote.calls)
	assert.Equal(t, []string{"c1"}, rankedIDs(eng.View()))
}

func TestEngine_ClearBallot(t *testing.T) {
	ctx := context.Background()

	remote := newFakeRemote("c1", "c2")
	eng := loadedEngine(t, remote)
	require.NoError(t, eng.RequestReorder(ctx, []string{"c2", "c1"}))
	remote.resetCalls()

	require.NoError(t, eng.RequestClearBallot(ctx))
	assert.Equal(t, []string{"clear_rank(c2)", "clear_rank(c1)"}, remote.calls)
	assert.Empty(t, rankedIDs(eng.View()))
	assert.Empty(t, remote.serverOrder())
}

func TestEngine_ReorderFailureRollsBack(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	remote := newFakeRemote("c1", "c2", "c3")
	eng := loadedEngine(t, remote, WithMetrics(metrics.NewEngine("test", reg)))
	require.NoError(t, eng.RequestReorder(ctx, []string{"c1", "c2"}))

	remote.fail["set_rank(c1, 3)"] = errServer
	err := eng.RequestReorder(ctx, []string{"c3", "c2", "c1"})

	var partial *ballot.PartialProgressError
	require.ErrorAs(t, err, &partial)
	assert.ErrorIs(err, errServer)
	assert.Equal([]string{"c1", "c2"}, rankedIDs(eng.View()))
	assert.ErrorIs(eng.LastError(FamilyBallot), errServer)
	assert.ErrorIs(eng.View().BallotErr, errServer)

	// the next successful request clears the error
	delete(remote.fail, "set_rank(c1, 3)")
	require.NoError(t, eng.RequestReorder(ctx, []string{"c3", "c2", "c1"}))
	assert.NoError(eng.LastError(FamilyBallot))
	assert.Equal([]string{"c3", "c2", "c1"}, remote.serverOrder())

	expected := `
# HELP test_ballot_reconciliations_total Ballot reconciliations by result
# TYPE test_ballot_reconciliations_total counter
test_ballot_reconciliations_total{result="committed"} 2
test_ballot_reconciliations_total{result="rolled_back"} 1
`
	assert.NoError(promtest.GatherAndCompare(reg, strings.NewReader(expected), "test_ballot_reconciliations_total"))
}

func TestEngine_FirstOperationRejected(t *testing.T) {
	ctx := context.Background()

	remote := newFakeRemote("c1")
	eng := loadedEngine(t, remote)
	remote.fail["set_rank(c1, 1)"] = errServer

	err := eng.RequestRankChange(ctx, "c1", 1)

	var rejection *ballot.RemoteRejection
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "c1", rejection.Op.CandidateID)
	assert.Empty(t, rankedIDs(eng.View()))
}

func TestEngine_RankChange(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		candidate string
		rank      int
		want      []string
	}{
		{"move to front", "c3", 1, []string{"c3", "c1", "c2"}},
		{"move to middle", "c1", 2, []string{"c2", "c1", "c3"}},
		{"past the end", "c1", 9, []string{"c2", "c3", "c1"}},
		{"unrank", "c2", 0, []string{"c1", "c3"}},
		{"rank new candidate", "c4", 2, []string{"c1", "c4", "c2", "c3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := newFakeRemote("c1", "c2", "c3", "c4")
			eng := loadedEngine(t, remote)
			require.NoError(t, eng.RequestReorder(ctx, []string{"c1", "c2", "c3"}))

			require.NoError(t, eng.RequestRankChange(ctx, tt.candidate, tt.rank))
			assert.Equal(t, tt.want, rankedIDs(eng.View()))
			assert.Equal(t, tt.want, remote.serverOrder())
		})
	}
}

func TestEngine_RankChangeValidation(t *testing.T) {
	ctx := context.Background()

	remote := newFakeRemote("c1")
	eng := loadedEngine(t, remote)

	assert.ErrorIs(t, eng.RequestRankChange(ctx, "c1", -1), ErrInvalidRank)
	assert.ErrorIs(t, eng.RequestRankChange(ctx, "zzz", 1), ErrUnknownCandidate)
	assert.Empty(t, remote.calls)
}

func TestEngine_BusyDropsSecondReorder(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	remote := newFakeRemote("c1", "c2")
	eng := loadedEngine(t, remote, WithMetrics(metrics.NewEngine("test", reg)))

	remote.entered = make(chan struct{})
	remote.release = make(chan struct{})

	done := make(chan error)
	go func() { done <- eng.RequestRankChange(ctx, "c1", 1) }()
	<-remote.entered

	v := eng.View()
	assert.True(v.ReorderBusy)
	require.Len(t, v.Items, 2)
	assert.True(v.Items[0].Busy || v.Items[1].Busy)

	// dropped while busy: no error, no remote call
	assert.NoError(eng.RequestReorder(ctx, []string{"c2", "c1"}))

	close(remote.release)
	require.NoError(t, <-done)

	assert.False(eng.View().ReorderBusy)
	assert.Equal([]string{"c1"}, rankedIDs(eng.View()))
	assert.Equal([]string{"set_rank(c1, 1)"}, remote.calls)
}

func TestEngine_NominateCreatesThenAttaches(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	remote := newFakeRemote("c1")
	eng := loadedEngine(t, remote)

	title := fake.WordsN(3)
	c, err := eng.RequestNominate(ctx, nomination.FromCustom(title, fake.WordsN(2), "", ""))

	require.NoError(t, err)
	assert.Equal(title, c.Book.Title)
	assert.Equal([]string{"create_book", "nominate(b1)"}, remote.calls)

	v := eng.View()
	require.Len(t, v.Items, 2)
	assert.Equal(c.ID, v.Items[0].Candidate.ID)
	assert.False(v.Items[0].Pending)
	assert.NoError(v.NominationErr)
}

func TestEngine_NominateExistingBookSkipsCreate(t *testing.T) {
	ctx := context.Background()

	remote := newFakeRemote()
	eng := loadedEngine(t, remote)

	_, err := eng.RequestNominate(ctx, nomination.FromExistingBook("b-42"))
	require.NoError(t, err)
	assert.Equal(t, []string{"nominate(b-42)"}, remote.calls)
}

func TestEngine_NominateAttachFailureLeavesNoOrphan(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	remote := newFakeRemote("c1")
	eng := loadedEngine(t, remote)
	remote.fail["nominate(b1)"] = errServer

	c, err := eng.RequestNominate(ctx, nomination.FromCustom(fake.WordsN(2), fake.WordsN(2), "", ""))

	assert.ErrorIs(err, errServer)
	assert.Empty(c.ID)
	assert.Equal([]string{"create_book", "nominate(b1)"}, remote.calls)

	v := eng.View()
	require.Len(t, v.Items, 1)
	assert.Equal("c1", v.Items[0].Candidate.ID)
	assert.ErrorIs(v.NominationErr, errServer)
}

func TestEngine_PlaceholderVisibleButNotRankable(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	remote := newFakeRemote("c1")
	eng := loadedEngine(t, remote)

	// nominate blocks on a remote call that inspects the engine mid-flight
	blocking := &inspectRemote{fakeRemote: remote, inspect: func() {
		v := eng.View()
		require.Len(t, v.Items, 2)
		assert.True(v.Items[0].Pending)
		assert.True(v.NominationBusy)
		assert.Len(v.Unranked, 2)

		assert.ErrorIs(eng.RequestRankChange(ctx, v.Items[0].Candidate.ID, 1), ErrUnknownCandidate)
		assert.NoError(eng.RequestReorder(ctx, []string{v.Items[0].Candidate.ID}))
	}}
	eng.remote = blocking

	_, err := eng.RequestNominate(ctx, nomination.FromExistingBook("b-9"))
	require.NoError(t, err)
	assert.Empty(rankedIDs(eng.View()))
}

type inspectRemote struct {
	*fakeRemote
	inspect func()
}

func (r *inspectRemote) Nominate(ctx context.Context, electionID, bookID string) (models.Candidate, error) {
	r.inspect()
	return r.fakeRemote.Nominate(ctx, electionID, bookID)
}

func TestEngine_WithdrawDropsVote(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	remote := newFakeRemote("c1", "c2")
	eng := loadedEngine(t, remote)
	require.NoError(t, eng.RequestReorder(ctx, []string{"c1", "c2"}))

	require.NoError(t, eng.RequestWithdraw(ctx, "c1"))

	v := eng.View()
	assert.Equal([]string{"c2"}, rankedIDs(v))
	require.Len(t, v.Items, 1)
	assert.Equal("c2", v.Items[0].Candidate.ID)

	// the leftover gap is repaired by the next reorder
	remote.resetCalls()
	require.NoError(t, eng.RequestReorder(ctx, []string{"c2"}))
	assert.Equal([]string{"set_rank(c2, 1)"}, remote.calls)
}

func TestEngine_WithdrawFailureRestores(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	remote := newFakeRemote("c1", "c2", "c3")
	eng := loadedEngine(t, remote)
	before := eng.View().Items
	remote.fail["withdraw(c2)"] = errServer

	assert.ErrorIs(eng.RequestWithdraw(ctx, "c2"), errServer)
	assert.Equal(before, eng.View().Items)
	assert.ErrorIs(eng.LastError(FamilyNomination), errServer)

	assert.ErrorIs(eng.RequestWithdraw(ctx, "missing"), nomination.ErrNotFound)
}

func TestEngine_RefreshCandidatesPrunesVotes(t *testing.T) {
	ctx := context.Background()

	remote := newFakeRemote("c1", "c2")
	eng := loadedEngine(t, remote)
	require.NoError(t, eng.RequestReorder(ctx, []string{"c1", "c2"}))

	// withdrawn by someone else
	require.NoError(t, remote.Withdraw(ctx, "e1", "c1"))
	require.NoError(t, eng.RefreshCandidates(ctx))

	assert.Equal(t, []string{"c2"}, rankedIDs(eng.View()))
}

func TestEngine_LoadErrors(t *testing.T) {
	remote := newFakeRemote("c1")
	remote.fail["list_candidates"] = errServer

	eng := New("e1", "voter", remote)
	assert.ErrorIs(t, eng.Load(context.Background()), errServer)
}

func TestEngine_Isolated(t *testing.T) {
	ctx := context.Background()

	a := loadedEngine(t, newFakeRemote("c1"))
	bRemote := newFakeRemote("c1")
	b := loadedEngine(t, bRemote)
	bRemote.fail["set_rank(c1, 1)"] = errServer

	require.Error(t, b.RequestReorder(ctx, []string{"c1"}))
	require.NoError(t, a.RequestReorder(ctx, []string{"c1"}))

	assert.NoError(t, a.LastError(FamilyBallot))
	assert.Error(t, b.LastError(FamilyBallot))
	assert.Equal(t, []string{"c1"}, rankedIDs(a.View()))
}

func TestEngine_WithdrawDuringReorder(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	remote := newFakeRemote("c1", "c2", "c3")
	eng := loadedEngine(t, remote)
	require.NoError(t, eng.RequestReorder(ctx, []string{"c1", "c2", "c3"}))
	remote.resetCalls()

	remote.entered = make(chan struct{}, 4)
	remote.release = make(chan struct{})

	// c2 keeps rank 2, so the reorder sends no operation for it
	done := make(chan error)
	go func() { done <- eng.RequestReorder(ctx, []string{"c3", "c2", "c1"}) }()
	<-remote.entered

	require.NoError(t, eng.RequestWithdraw(ctx, "c2"))

	close(remote.release)
	require.NoError(t, <-done)
	remote.entered, remote.release = nil, nil

	v := eng.View()
	assert.Equal([]string{"c3", "c1"}, rankedIDs(v))
	assert.Equal([]string{"c3", "c1"}, remote.serverOrder())
	assert.Equal(3, v.Ranked[1].Rank, "local ranks mirror the server until the next reorder")

	remote.resetCalls()
	require.NoError(t, eng.RequestReorder(ctx, []string{"c1", "c3"}))
	assert.Equal([]string{"set_rank(c1, 1)", "set_rank(c3, 2)"}, remote.calls)
	assert.NoError(eng.LastError(FamilyBallot))

	require.NoError(t, eng.RequestClearBallot(ctx))
	assert.Empty(remote.serverOrder())
	assert.Empty(rankedIDs(eng.View()))
}

func TestEngine_RefreshCandidatesDuringReorder(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	remote := newFakeRemote("c1", "c2", "c3")
	eng := loadedEngine(t, remote)
	require.NoError(t, eng.RequestReorder(ctx, []string{"c1", "c2", "c3"}))

	remote.entered = make(chan struct{}, 4)
	remote.release = make(chan struct{})

	done := make(chan error)
	go func() { done <- eng.RequestReorder(ctx, []string{"c3", "c2", "c1"}) }()
	<-remote.entered

	// withdrawn by another voter while the reorder is in flight
	require.NoError(t, remote.Withdraw(ctx, "e1", "c2"))
	require.NoError(t, eng.RefreshCandidates(ctx))

	close(remote.release)
	require.NoError(t, <-done)
	remote.entered, remote.release = nil, nil

	assert.Equal([]string{"c3", "c1"}, rankedIDs(eng.View()))

	remote.resetCalls()
	require.NoError(t, eng.RequestRankChange(ctx, "c1", 1))
	assert.Equal([]string{"set_rank(c1, 1)", "set_rank(c3, 2)"}, remote.calls)
	assert.Equal([]string{"c1", "c3"}, remote.serverOrder())
}
