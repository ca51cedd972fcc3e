// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/grifftatarsky/bonk/auth"
	"github.com/grifftatarsky/bonk/cliparse"
	"github.com/grifftatarsky/bonk/db"
	"github.com/grifftatarsky/bonk/models"
)

// TestDBURL is the connection string for the test database
const TestDBURL = ":memory:"

// SetupTestDB creates a fresh in-memory database with the full schema. It is
// closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  TestDBURL,
		DatabaseType: db.TypeSQLite,
		AdminKeySalt: "test-admin-salt",
		TokenSalt:    "test-token-salt",
	}
}

// CreateTestVoter registers a voter and returns its ID and token
func CreateTestVoter(t *testing.T, conn *sql.DB, cfg cliparse.Config, username string) (voterID, token string) {
	t.Helper()

	voterID = uuid.NewString()
	token, err := auth.GenerateVoterToken()
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO voter (id, username, token_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, voterID, username, auth.HashToken(token, cfg.TokenSalt), time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return voterID, token
}

// CreateTestElection creates an election and returns its ID and admin key.
// status should be "open", "closed", or "indefinite"
func CreateTestElection(t *testing.T, conn *sql.DB, cfg cliparse.Config, status string) (electionID, adminKey string) {
	t.Helper()

	electionID = uuid.NewString()
	adminKey = auth.GenerateAdminKey(electionID, cfg.AdminKeySalt)

	var end, closedAt *time.Time
	now := time.Now().UTC()
	switch status {
	case models.StatusOpen:
		e := now.Add(24 * time.Hour)
		end = &e
	case models.StatusClosed:
		closedAt = &now
	}

	_, err := conn.Exec(`
		INSERT INTO election (id, title, status, end_date_time, closed_at, created_at)
		VALUES ($1, 'Test Election', $2, $3, $4, $5)
	`, electionID, status, end, closedAt, now)
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	return electionID, adminKey
}

// CreateTestBook adds a book created by voterID and returns its ID
func CreateTestBook(t *testing.T, conn *sql.DB, voterID, title string) string {
	t.Helper()

	bookID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO book (id, title, author, created_by, created_at)
		VALUES ($1, $2, 'Test Author', $3, $4)
	`, bookID, title, voterID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test book: %v", err)
	}

	return bookID
}

// CreateTestCandidate nominates a new book into an election and returns the
// candidate ID
func CreateTestCandidate(t *testing.T, conn *sql.DB, electionID, nominatorID, title string) string {
	t.Helper()

	bookID := CreateTestBook(t, conn, nominatorID, title)
	candidateID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO candidate (id, election_id, book_id, nominator_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, candidateID, electionID, bookID, nominatorID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return candidateID
}

// CreateTestVote stores a rank for a voter and returns the vote ID
func CreateTestVote(t *testing.T, conn *sql.DB, candidateID, voterID string, rank int) string {
	t.Helper()

	voteID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO vote (id, candidate_id, voter_id, rank, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, voteID, candidateID, voterID, rank, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	return voteID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
