// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connecting

Open selects the driver from the configured database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

"postgres" uses github.com/lib/pq; "sqlite" (the default) uses
modernc.org/sqlite with foreign keys switched on.

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - voter: Registered voters and their hashed tokens
  - election: Election metadata and lifecycle state
  - book: Books that can be nominated
  - candidate: A book nominated into an election
  - vote: One voter's rank for one candidate

# Relationships

	election 1──* candidate
	book     1──* candidate
	candidate 1──* vote
	voter    1──* vote

Deleting a candidate deletes its votes. Ranks are not unique per voter, so a
ballot may hold a repeated rank while a reorder is halfway through.
*/
package db
