// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types shared by the API
server, the HTTP client, and the ballot engine.

# Request Types

Types for parsing incoming JSON:

  - RegisterVoterRequest: username
  - CreateElectionRequest: title, end_date_time
  - BookRequest: title, author, image_url, blurb, open_library_id

# Response Types

  - RegisterVoterResponse: voter_id, voter_token
  - CreateElectionResponse: election_id, admin_key
  - CloseElectionResponse: closed_at
  - ErrorResponse: error, message

# Domain Types

  - Election: election metadata and lifecycle state
  - Book: the work behind a candidate
  - Candidate: a book nominated into one election
  - Vote: one (candidate, rank) pair of a voter's ballot

# Constants

Status values:

	StatusOpen       = "open"
	StatusClosed     = "closed"
	StatusIndefinite = "indefinite"
*/
package models
