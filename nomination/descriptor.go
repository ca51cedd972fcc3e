// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package nomination

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/grifftatarsky/bonk/models"
)

// Descriptor carries what is known about a book before the server has
// materialized it as a candidate.
type Descriptor struct {
	Title         string
	Author        string
	ImageURL      string
	Blurb         string
	OpenLibraryID string

	// BookID is set when nominating a book that already exists; the
	// create-book step is skipped.
	BookID string
}

// FromSearchResult builds a descriptor from an Open Library search document.
func FromSearchResult(doc models.OpenLibraryDoc) Descriptor {
	d := Descriptor{
		Title:  doc.Title,
		Author: "Unknown author",
	}
	if d.Title == "" {
		d.Title = "Untitled"
	}
	if len(doc.AuthorName) > 0 && doc.AuthorName[0] != "" {
		d.Author = doc.AuthorName[0]
	}
	if doc.CoverID > 0 {
		d.ImageURL = CoverURL(doc.CoverID, "M")
	}
	d.OpenLibraryID = strings.TrimPrefix(doc.Key, "/works/")
	return d
}

// FromCustom builds a descriptor for a book typed in by hand. It gets a
// synthetic open-library id so the server can tell it apart.
func FromCustom(title, author, imageURL, blurb string) Descriptor {
	return Descriptor{
		Title:         title,
		Author:        author,
		ImageURL:      imageURL,
		Blurb:         blurb,
		OpenLibraryID: "custom-" + uuid.NewString(),
	}
}

func FromExistingBook(bookID string) Descriptor {
	return Descriptor{BookID: bookID, Title: "Loading…"}
}

// CoverURL returns the Open Library cover image for a cover id. size is S, M or L.
func CoverURL(coverID int, size string) string {
	return fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-%s.jpg", coverID, size)
}

func (d Descriptor) BookRequest() models.BookRequest {
	return models.BookRequest{
		Title:         d.Title,
		Author:        d.Author,
		ImageURL:      d.ImageURL,
		Blurb:         d.Blurb,
		OpenLibraryID: d.OpenLibraryID,
	}
}
