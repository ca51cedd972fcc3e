// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package nomination

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grifftatarsky/bonk/models"
)

var errRemote = errors.New("remote failure")

func candidate(id string) models.Candidate {
	return models.Candidate{ID: id, ElectionID: "e1", Book: models.Book{ID: "b-" + id, Title: fake.WordsN(3)}}
}

func seededList(ids ...string) *List {
	l := NewList()
	cs := make([]models.Candidate, len(ids))
	for i, id := range ids {
		cs[i] = candidate(id)
	}
	l.ReplaceAll(cs)
	return l
}

func ids(l *List) []string {
	out := []string{}
	for _, e := range l.Entries() {
		out = append(out, e.ID())
	}
	return out
}

func TestNominate_PlaceholderVisibleThenReplaced(t *testing.T) {
	assert := assert.New(t)

	list := seededList("c1", "c2")
	lc := NewLifecycle(list, nil)
	d := FromCustom(fake.WordsN(3), fake.WordsN(2), "", "")

	materialize := func(ctx context.Context, got Descriptor) (models.Candidate, error) {
		entries := list.Entries()
		require.Len(t, entries, 3)
		p, ok := entries[0].(Placeholder)
		require.True(t, ok, "placeholder must be first while in flight")
		assert.True(strings.HasPrefix(p.SyntheticID, "tmp-"))
		assert.Equal(d, p.Descriptor)
		assert.False(list.ConfirmedIDs()[p.SyntheticID], "placeholders are not rankable")
		assert.True(lc.Busy())
		return candidate("c3"), nil
	}

	got, err := lc.Nominate(context.Background(), d, materialize)

	assert.NoError(err)
	assert.Equal("c3", got.ID)
	assert.Equal([]string{"c3", "c1", "c2"}, ids(list))
	_, isConfirmed := list.Entries()[0].(Confirmed)
	assert.True(isConfirmed)
	assert.False(lc.Busy())
}

func TestNominate_SecondStepFailureLeavesNoOrphan(t *testing.T) {
	assert := assert.New(t)

	list := seededList("c1")
	before := list.Entries()
	lc := NewLifecycle(list, nil)

	createdBook := false
	materialize := func(ctx context.Context, d Descriptor) (models.Candidate, error) {
		createdBook = true // create-book succeeded
		return models.Candidate{}, errRemote
	}

	_, err := lc.Nominate(context.Background(), FromCustom("t", "a", "", ""), materialize)

	assert.ErrorIs(err, errRemote)
	assert.True(createdBook)
	assert.Equal(before, list.Entries())
	assert.False(lc.Busy())
}

func TestNominate_Busy(t *testing.T) {
	assert := assert.New(t)

	list := NewList()
	lc := NewLifecycle(list, nil)

	var inner error
	materialize := func(ctx context.Context, d Descriptor) (models.Candidate, error) {
		_, inner = lc.Nominate(ctx, d, func(context.Context, Descriptor) (models.Candidate, error) {
			t.Fatal("nested nomination must not run")
			return models.Candidate{}, nil
		})
		return candidate("c1"), nil
	}

	_, err := lc.Nominate(context.Background(), FromExistingBook("b1"), materialize)
	assert.NoError(err)
	assert.ErrorIs(inner, ErrBusy)
	assert.Equal([]string{"c1"}, ids(list))
}

func TestNominate_RefreshDuringFlight(t *testing.T) {
	assert := assert.New(t)

	list := seededList("c1")
	lc := NewLifecycle(list, nil)

	materialize := func(ctx context.Context, d Descriptor) (models.Candidate, error) {
		// a refresh lands that already includes the new candidate
		list.ReplaceAll([]models.Candidate{candidate("c2"), candidate("c1")})
		return candidate("c2"), nil
	}

	_, err := lc.Nominate(context.Background(), FromExistingBook("b-c2"), materialize)

	assert.NoError(err)
	assert.Equal([]string{"c2", "c1"}, ids(list))
}

func TestWithdraw(t *testing.T) {
	assert := assert.New(t)

	list := seededList("c1", "c2", "c3")
	lc := NewLifecycle(list, nil)

	var removed string
	err := lc.Withdraw(context.Background(), "c2", func(ctx context.Context, id string) error {
		removed = id
		assert.Equal([]string{"c1", "c3"}, ids(list), "removal is optimistic")
		return nil
	})

	assert.NoError(err)
	assert.Equal("c2", removed)
	assert.Equal([]string{"c1", "c3"}, ids(list))
}

func TestWithdraw_RollbackRestoresPosition(t *testing.T) {
	assert := assert.New(t)

	list := seededList("c1", "c2", "c3")
	before := list.Entries()
	lc := NewLifecycle(list, nil)

	err := lc.Withdraw(context.Background(), "c2", func(context.Context, string) error {
		return errRemote
	})

	assert.ErrorIs(err, errRemote)
	assert.Equal(before, list.Entries())
}

func TestWithdraw_Errors(t *testing.T) {
	assert := assert.New(t)

	list := seededList("c1")
	list.InsertFront(Placeholder{SyntheticID: "tmp-1"})
	lc := NewLifecycle(list, nil)

	never := func(context.Context, string) error {
		t.Fatal("remote must not be called")
		return nil
	}

	assert.ErrorIs(lc.Withdraw(context.Background(), "missing", never), ErrNotFound)
	assert.ErrorIs(lc.Withdraw(context.Background(), "tmp-1", never), ErrPlaceholder)
	assert.Equal([]string{"tmp-1", "c1"}, ids(list))
}

func TestList_ReplaceAllKeepsPlaceholders(t *testing.T) {
	assert := assert.New(t)

	list := seededList("c1")
	list.InsertFront(Placeholder{SyntheticID: "tmp-1"})
	list.ReplaceAll([]models.Candidate{candidate("c2")})

	assert.Equal([]string{"tmp-1", "c2"}, ids(list))
	assert.Equal(map[string]bool{"c2": true}, list.ConfirmedIDs())
}
