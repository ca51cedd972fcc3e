// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/grifftatarsky/bonk/auth"
	"github.com/grifftatarsky/bonk/cliparse"
	"github.com/grifftatarsky/bonk/metrics"
	"github.com/grifftatarsky/bonk/middleware"
	"github.com/grifftatarsky/bonk/models"
)

type CandidateHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	metrics *metrics.Metrics
}

func NewCandidateHandler(db *sql.DB, cfg cliparse.Config, m *metrics.Metrics) *CandidateHandler {
	return &CandidateHandler{db: db, cfg: cfg, metrics: m}
}

// ListCandidates handles GET /elections/{id}/candidates
// Newest nominations come first.
func (h *CandidateHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	if _, err := electionState(h.db, electionID); err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	} else if err != nil {
		slog.Error("failed to query election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.Query(`
		SELECT `+candidateColumns+`
		FROM candidate c
		JOIN book b ON b.id = c.book_id
		WHERE c.election_id = $1
		ORDER BY c.created_at DESC, c.id
	`, electionID)
	if err != nil {
		slog.Error("failed to query candidates", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			slog.Error("failed to scan candidate", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, candidates)
}

// Nominate handles POST /elections/{id}/nominate/{bookId}
// The body is optional and may carry a pitch.
func (h *CandidateHandler) Nominate(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	bookID := r.PathValue("bookId")

	voterID, err := authenticateVoter(h.db, h.cfg, r)
	if err != nil {
		code, msg := authStatus(err)
		middleware.ErrorResponse(w, code, msg)
		return
	}

	var req models.NominateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	open, err := electionState(h.db, electionID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !open {
		middleware.ErrorResponse(w, http.StatusConflict, "Election is not accepting nominations")
		return
	}

	var exists bool
	if err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM book WHERE id = $1)`, bookID).Scan(&exists); err != nil {
		slog.Error("failed to query book", "error", err, "book_id", bookID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Book not found")
		return
	}

	err = h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM candidate WHERE election_id = $1 AND book_id = $2)
	`, electionID, bookID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if exists {
		middleware.ErrorResponse(w, http.StatusConflict, "Book is already nominated in this election")
		return
	}

	candidateID := uuid.NewString()
	_, err = h.db.Exec(`
		INSERT INTO candidate (id, election_id, book_id, nominator_id, pitch, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, candidateID, electionID, bookID, voterID, req.Pitch, time.Now().UTC())
	if err != nil {
		slog.Error("failed to insert candidate", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to nominate book")
		return
	}

	c, err := scanCandidate(h.db.QueryRow(`
		SELECT `+candidateColumns+`
		FROM candidate c
		JOIN book b ON b.id = c.book_id
		WHERE c.id = $1
	`, candidateID))
	if err != nil {
		slog.Error("failed to reload candidate", "error", err, "candidate_id", candidateID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	h.metrics.CandidateAccepted("nominate")
	slog.Info("book nominated", "election_id", electionID, "candidate_id", candidateID, "voter_id", voterID)

	middleware.JSONResponse(w, http.StatusCreated, c)
}

// Withdraw handles DELETE /elections/{id}/candidates/{candidateId}
// Either the nominator's voter token or the election admin key is accepted.
// Votes for the candidate are deleted with it.
func (h *CandidateHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	candidateID := r.PathValue("candidateId")

	var nominatorID string
	err := h.db.QueryRow(`
		SELECT nominator_id FROM candidate WHERE id = $1 AND election_id = $2
	`, candidateID, electionID).Scan(&nominatorID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}
	if err != nil {
		slog.Error("failed to query candidate", "error", err, "candidate_id", candidateID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if adminKey := r.Header.Get(AdminKeyHeader); adminKey != "" {
		if err := auth.ValidateAdminKey(electionID, adminKey, h.cfg.AdminKeySalt); err != nil {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
			return
		}
	} else {
		voterID, err := authenticateVoter(h.db, h.cfg, r)
		if err != nil {
			code, msg := authStatus(err)
			middleware.ErrorResponse(w, code, msg)
			return
		}
		if voterID != nominatorID {
			middleware.ErrorResponse(w, http.StatusForbidden, "Only the nominator can withdraw this candidate")
			return
		}
	}

	open, err := electionState(h.db, electionID)
	if err != nil {
		slog.Error("failed to query election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !open {
		middleware.ErrorResponse(w, http.StatusConflict, "Election is closed")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM vote WHERE candidate_id = $1`, candidateID); err != nil {
		slog.Error("failed to delete votes", "error", err, "candidate_id", candidateID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to withdraw candidate")
		return
	}
	if _, err := tx.Exec(`DELETE FROM candidate WHERE id = $1`, candidateID); err != nil {
		slog.Error("failed to delete candidate", "error", err, "candidate_id", candidateID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to withdraw candidate")
		return
	}
	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit withdrawal", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to withdraw candidate")
		return
	}

	h.metrics.CandidateAccepted("withdraw")
	slog.Info("candidate withdrawn", "election_id", electionID, "candidate_id", candidateID)

	w.WriteHeader(http.StatusNoContent)
}
