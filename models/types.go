// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Election status constants
const (
	StatusOpen       = "open"
	StatusClosed     = "closed"
	StatusIndefinite = "indefinite"
)

// Request types

type RegisterVoterRequest struct {
	Username string `json:"username"`
}

type CreateElectionRequest struct {
	Title       string     `json:"title"`
	EndDateTime *time.Time `json:"end_date_time,omitempty"`
}

// BookRequest doubles as the create-entity payload of a nomination
type BookRequest struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	ImageURL      string `json:"image_url"`
	Blurb         string `json:"blurb"`
	OpenLibraryID string `json:"open_library_id"`
}

type NominateRequest struct {
	Pitch string `json:"pitch"`
}

// Response types

type RegisterVoterResponse struct {
	VoterID    string `json:"voter_id"`
	VoterToken string `json:"voter_token"`
}

type CreateElectionResponse struct {
	ElectionID string `json:"election_id"`
	AdminKey   string `json:"admin_key"`
}

type CloseElectionResponse struct {
	ClosedAt time.Time `json:"closed_at"`
}

// Domain types

type Election struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	EndDateTime *time.Time `json:"end_date_time,omitempty"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	ImageURL      string    `json:"image_url"`
	Blurb         string    `json:"blurb"`
	OpenLibraryID string    `json:"open_library_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type Candidate struct {
	ID          string    `json:"id"`
	ElectionID  string    `json:"election_id"`
	Book        Book      `json:"book"`
	Pitch       string    `json:"pitch"`
	NominatorID string    `json:"nominator_id"`
	VoteCount   int       `json:"vote_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Vote is one (candidate, rank) pair of a voter's ballot. Rank 1 is most preferred.
type Vote struct {
	ID          string `json:"id"`
	CandidateID string `json:"candidate_id"`
	VoterID     string `json:"voter_id"`
	Rank        int    `json:"rank"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Open Library search types (https://openlibrary.org/search.json)

type OpenLibraryDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	CoverID          int      `json:"cover_i"`
	FirstPublishYear int      `json:"first_publish_year"`
}

type OpenLibrarySearchResponse struct {
	Start    int              `json:"start"`
	NumFound int              `json:"num_found"`
	Docs     []OpenLibraryDoc `json:"docs"`
}
