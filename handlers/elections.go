// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/grifftatarsky/bonk/auth"
	"github.com/grifftatarsky/bonk/cliparse"
	"github.com/grifftatarsky/bonk/middleware"
	"github.com/grifftatarsky/bonk/models"
)

type ElectionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewElectionHandler(db *sql.DB, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{db: db, cfg: cfg}
}

// CreateElection handles POST /elections
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	now := time.Now().UTC()
	status := models.StatusIndefinite
	var end *time.Time
	if req.EndDateTime != nil {
		if !req.EndDateTime.After(now) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "end_date_time must be in the future")
			return
		}
		t := req.EndDateTime.UTC()
		end = &t
		status = models.StatusOpen
	}

	electionID := uuid.NewString()
	adminKey := auth.GenerateAdminKey(electionID, h.cfg.AdminKeySalt)

	_, err := h.db.Exec(`
		INSERT INTO election (id, title, status, end_date_time, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, electionID, req.Title, status, end, now)
	if err != nil {
		slog.Error("failed to insert election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	slog.Info("election created", "election_id", electionID, "status", status)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateElectionResponse{
		ElectionID: electionID,
		AdminKey:   adminKey,
	})
}

// GetElection handles GET /elections/{id}
func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	var e models.Election
	var end, closed sql.NullTime
	err := h.db.QueryRow(`
		SELECT id, title, status, end_date_time, closed_at, created_at
		FROM election WHERE id = $1
	`, electionID).Scan(&e.ID, &e.Title, &e.Status, &end, &closed, &e.CreatedAt)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if end.Valid {
		e.EndDateTime = &end.Time
	}
	if closed.Valid {
		e.ClosedAt = &closed.Time
	}
	// an election past its end date reads as closed even before anyone closes it
	if e.Status != models.StatusClosed && !acceptsChanges(e.Status, end, time.Now()) {
		e.Status = models.StatusClosed
	}

	middleware.JSONResponse(w, http.StatusOK, e)
}

// CloseElection handles POST /elections/{id}/close
func (h *ElectionHandler) CloseElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	adminKey := r.Header.Get(AdminKeyHeader)
	if err := auth.ValidateAdminKey(electionID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	var status string
	err := h.db.QueryRow(`SELECT status FROM election WHERE id = $1`, electionID).Scan(&status)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if status == models.StatusClosed {
		middleware.ErrorResponse(w, http.StatusConflict, "Election is already closed")
		return
	}

	closedAt := time.Now().UTC()
	_, err = h.db.Exec(`
		UPDATE election SET status = $1, closed_at = $2 WHERE id = $3
	`, models.StatusClosed, closedAt, electionID)
	if err != nil {
		slog.Error("failed to close election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close election")
		return
	}

	slog.Info("election closed", "election_id", electionID)

	middleware.JSONResponse(w, http.StatusOK, models.CloseElectionResponse{ClosedAt: closedAt})
}
