// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package nomination

import (
	"strings"
	"testing"

	"github.com/grifftatarsky/bonk/models"
	"github.com/stretchr/testify/assert"
)

func TestFromSearchResult(t *testing.T) {
	assert := assert.New(t)

	d := FromSearchResult(models.OpenLibraryDoc{
		Key:        "/works/OL45883W",
		Title:      "Dune",
		AuthorName: []string{"Frank Herbert", "Someone Else"},
		CoverID:    12345,
	})

	assert.Equal("Dune", d.Title)
	assert.Equal("Frank Herbert", d.Author)
	assert.Equal("https://covers.openlibrary.org/b/id/12345-M.jpg", d.ImageURL)
	assert.Equal("OL45883W", d.OpenLibraryID)
	assert.Empty(d.BookID)
}

func TestFromSearchResult_Defaults(t *testing.T) {
	assert := assert.New(t)

	d := FromSearchResult(models.OpenLibraryDoc{Key: "OL1W"})

	assert.Equal("Untitled", d.Title)
	assert.Equal("Unknown author", d.Author)
	assert.Empty(d.ImageURL)
	assert.Equal("OL1W", d.OpenLibraryID)
}

func TestFromCustom(t *testing.T) {
	assert := assert.New(t)

	a := FromCustom("Title", "Author", "http://img", "blurb")
	b := FromCustom("Title", "Author", "http://img", "blurb")

	assert.True(strings.HasPrefix(a.OpenLibraryID, "custom-"))
	assert.NotEqual(a.OpenLibraryID, b.OpenLibraryID)
	assert.Equal(models.BookRequest{
		Title:         "Title",
		Author:        "Author",
		ImageURL:      "http://img",
		Blurb:         "blurb",
		OpenLibraryID: a.OpenLibraryID,
	}, a.BookRequest())
}

func TestFromExistingBook(t *testing.T) {
	assert := assert.New(t)

	d := FromExistingBook("book-1")
	assert.Equal("book-1", d.BookID)
	assert.Equal("Loading…", d.Title)
}
