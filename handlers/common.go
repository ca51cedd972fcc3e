// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/grifftatarsky/bonk/auth"
	"github.com/grifftatarsky/bonk/cliparse"
	"github.com/grifftatarsky/bonk/models"
)

// Header names used for authentication.
const (
	VoterTokenHeader = "X-Voter-Token"
	AdminKeyHeader   = "X-Admin-Key"
)

var (
	errNoToken      = errors.New("voter token required")
	errUnknownToken = errors.New("unknown voter token")
)

// authenticateVoter resolves the X-Voter-Token header to a voter id.
func authenticateVoter(db *sql.DB, cfg cliparse.Config, r *http.Request) (string, error) {
	token := r.Header.Get(VoterTokenHeader)
	if token == "" {
		return "", errNoToken
	}
	if err := auth.ValidateTokenFormat(token); err != nil {
		return "", errUnknownToken
	}

	var voterID string
	err := db.QueryRow(`SELECT id FROM voter WHERE token_hash = $1`, auth.HashToken(token, cfg.TokenSalt)).Scan(&voterID)
	if err == sql.ErrNoRows {
		return "", errUnknownToken
	}
	if err != nil {
		return "", err
	}
	return voterID, nil
}

// authStatus maps an authenticateVoter error to a status and message.
func authStatus(err error) (int, string) {
	switch err {
	case errNoToken:
		return http.StatusUnauthorized, "X-Voter-Token header required"
	case errUnknownToken:
		return http.StatusUnauthorized, "Invalid voter token"
	}
	return http.StatusInternalServerError, "Database error"
}

// acceptsChanges reports whether an election still takes votes and
// nominations: it is not closed and its end date, if any, has not passed.
func acceptsChanges(status string, end sql.NullTime, now time.Time) bool {
	if status == models.StatusClosed {
		return false
	}
	return !end.Valid || now.Before(end.Time)
}

// electionState loads what acceptsChanges needs. It returns sql.ErrNoRows for
// unknown elections.
func electionState(db *sql.DB, electionID string) (bool, error) {
	var status string
	var end sql.NullTime
	err := db.QueryRow(`SELECT status, end_date_time FROM election WHERE id = $1`, electionID).Scan(&status, &end)
	if err != nil {
		return false, err
	}
	return acceptsChanges(status, end, time.Now()), nil
}

const candidateColumns = `
	c.id, c.election_id, c.pitch, c.nominator_id, c.created_at,
	b.id, b.title, b.author, b.image_url, b.blurb, b.open_library_id, b.created_at,
	(SELECT COUNT(*) FROM vote v WHERE v.candidate_id = c.id)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (models.Candidate, error) {
	var c models.Candidate
	err := row.Scan(
		&c.ID, &c.ElectionID, &c.Pitch, &c.NominatorID, &c.CreatedAt,
		&c.Book.ID, &c.Book.Title, &c.Book.Author, &c.Book.ImageURL, &c.Book.Blurb, &c.Book.OpenLibraryID, &c.Book.CreatedAt,
		&c.VoteCount,
	)
	return c, err
}
