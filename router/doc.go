// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the bonk API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Elections (close requires X-Admin-Key):

	POST /elections            - Create election
	GET  /elections/{id}       - Election details
	POST /elections/{id}/close - Close election

Nominations (X-Voter-Token):

	GET    /elections/{id}/candidates
	POST   /books
	GET    /books/{id}
	POST   /elections/{id}/nominate/{bookId}
	DELETE /elections/{id}/candidates/{candidateId}

Votes (X-Voter-Token):

	POST   /voters
	GET    /elections/{id}/my-votes
	POST   /votes/{candidateId}/{rank}
	DELETE /votes/{candidateId}

# Metrics

Each router has its own Prometheus registry holding the Go runtime, process
and bonk collectors; GET /metrics serves it.
*/
package router
