// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	// one statement per Exec, lib/pq and sqlite differ on multi-statement support
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

const schema = `
-- Voters
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    token_hash TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL
);

-- Elections
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'closed', 'indefinite')),
    end_date_time TIMESTAMP,
    closed_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_election_status ON election(status);

-- Books
CREATE TABLE IF NOT EXISTS book (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    author TEXT NOT NULL,
    image_url TEXT NOT NULL DEFAULT '',
    blurb TEXT NOT NULL DEFAULT '',
    open_library_id TEXT NOT NULL DEFAULT '',
    created_by TEXT NOT NULL REFERENCES voter(id),
    created_at TIMESTAMP NOT NULL
);

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    book_id TEXT NOT NULL REFERENCES book(id),
    nominator_id TEXT NOT NULL REFERENCES voter(id),
    pitch TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL,
    UNIQUE (election_id, book_id)
);

CREATE INDEX IF NOT EXISTS idx_candidate_election_id ON candidate(election_id);

-- Votes (no uniqueness on rank: a multi-step reorder may briefly repeat one)
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    candidate_id TEXT NOT NULL REFERENCES candidate(id) ON DELETE CASCADE,
    voter_id TEXT NOT NULL REFERENCES voter(id) ON DELETE CASCADE,
    rank INTEGER NOT NULL CHECK (rank >= 1),
    updated_at TIMESTAMP NOT NULL,
    UNIQUE (candidate_id, voter_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_voter_id ON vote(voter_id);
CREATE INDEX IF NOT EXISTS idx_vote_candidate_id ON vote(candidate_id);
`
