// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the bonk API server.

bonk runs ranked-choice book club elections: voters nominate books and rank
the candidates on a personal ballot. The server stores elections, books,
candidates and votes; the election package keeps a voter's local copy in
step with it.

# Starting the Server

	DATABASE_TYPE=sqlite DATABASE_URL=bonk.db go run .

Or with PostgreSQL and flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Settings come from flags, then the environment, then a .env file:

  - DATABASE_URL (-d): connection string or SQLite file
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - ADMIN_KEY_SALT (--admin-salt): secret for election admin key HMAC
  - TOKEN_SALT (--token-salt): secret used to hash stored voter tokens
  - PORT (-p): server port (default: 3318)

# Architecture

  - ballot, nomination, election: optimistic client-side voting core
  - client: HTTP client for the API plus Open Library search
  - handlers, router, middleware: the HTTP server
  - auth, db, cliparse, metrics: supporting packages
  - cmd/bonk: command line client

See package documentation for each component.
*/
package main
