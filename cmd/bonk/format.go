// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/grifftatarsky/bonk/election"
	"github.com/grifftatarsky/bonk/models"
)

func describeBook(b models.Book) string {
	if b.Author == "" {
		return b.Title
	}
	return b.Title + " by " + b.Author
}

func printBallot(w io.Writer, v election.View) {
	fmt.Fprintf(w, "Ballot for election %s\n", v.ElectionID)
	if len(v.Ranked) == 0 {
		fmt.Fprintln(w, "  (nothing ranked)")
	}
	for _, it := range v.Ranked {
		fmt.Fprintf(w, "  %-5s %s  [%s]\n", humanize.Ordinal(it.Rank), describeBook(it.Candidate.Book), it.Candidate.ID)
	}
	if len(v.Unranked) > 0 {
		fmt.Fprintln(w, "Unranked:")
		for _, it := range v.Unranked {
			fmt.Fprintf(w, "  %-5s %s  [%s]\n", "-", describeBook(it.Candidate.Book), it.Candidate.ID)
		}
	}
	if v.BallotErr != nil {
		fmt.Fprintf(w, "last ballot error: %v\n", v.BallotErr)
	}
}

func printCandidates(w io.Writer, v election.View) {
	if len(v.Items) == 0 {
		fmt.Fprintln(w, "No candidates yet")
		return
	}
	for _, it := range v.Items {
		when := "pending"
		if !it.Pending {
			when = "nominated " + humanize.Time(it.Candidate.CreatedAt)
		}
		rank := "-"
		if it.Rank > 0 {
			rank = humanize.Ordinal(it.Rank)
		}
		fmt.Fprintf(w, "%-5s %s  [%s] %s, %s\n", rank, describeBook(it.Candidate.Book), it.Candidate.ID,
			when, english.Plural(it.Candidate.VoteCount, "vote", "votes"))
	}
}

func printSearch(w io.Writer, docs []models.OpenLibraryDoc) {
	if len(docs) == 0 {
		fmt.Fprintln(w, "No results")
		return
	}
	for i, doc := range docs {
		author := "Unknown author"
		if len(doc.AuthorName) > 0 {
			author = doc.AuthorName[0]
		}
		year := ""
		if doc.FirstPublishYear > 0 {
			year = fmt.Sprintf(" (%d)", doc.FirstPublishYear)
		}
		fmt.Fprintf(w, "%2d. %s by %s%s\n", i+1, doc.Title, author, year)
	}
	fmt.Fprintln(w, "Nominate one with --pick <n>")
}
