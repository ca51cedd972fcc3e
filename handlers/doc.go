// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the bonk API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - VoterHandler: Voter registration
  - ElectionHandler: Election lifecycle (create, read, close)
  - BookHandler: Books that can be nominated
  - CandidateHandler: Nominations and withdrawals
  - VotingHandler: A voter's ranked votes

Handlers are created via constructor functions:

	electionHandler := handlers.NewElectionHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg, m)

# Election Lifecycle

Elections without an end date are "indefinite"; elections with one are
"open" until the date passes or an admin closes them.

	POST /elections            → CreateElection (returns admin_key)
	GET  /elections/{id}       → GetElection
	POST /elections/{id}/close → CloseElection

Admin operations require the X-Admin-Key header.

# Nominations

	GET    /elections/{id}/candidates               → ListCandidates
	POST   /books                                   → CreateBook
	POST   /elections/{id}/nominate/{bookId}        → Nominate
	DELETE /elections/{id}/candidates/{candidateId} → Withdraw

# Voting

	POST   /voters                   → Register (returns voter_token)
	GET    /elections/{id}/my-votes  → GetMyVotes
	POST   /votes/{candidateId}/{rank} → SetRank
	DELETE /votes/{candidateId}      → ClearRank

Voter operations require the X-Voter-Token header. Votes and nominations
are refused with 409 once an election is closed.
*/
package handlers
