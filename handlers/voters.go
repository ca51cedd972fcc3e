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

type VoterHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVoterHandler(db *sql.DB, cfg cliparse.Config) *VoterHandler {
	return &VoterHandler{db: db, cfg: cfg}
}

// Register handles POST /voters
func (h *VoterHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username is required")
		return
	}
	if len(req.Username) < 2 || len(req.Username) > 50 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username must be 2-50 characters")
		return
	}

	var taken bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM voter WHERE username = $1)`, req.Username).Scan(&taken)
	if err != nil {
		slog.Error("failed to check username", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if taken {
		middleware.ErrorResponse(w, http.StatusConflict, "Username already taken")
		return
	}

	voterToken, err := auth.GenerateVoterToken()
	if err != nil {
		slog.Error("failed to generate voter token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register voter")
		return
	}
	voterID := uuid.NewString()

	_, err = h.db.Exec(`
		INSERT INTO voter (id, username, token_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, voterID, req.Username, auth.HashToken(voterToken, h.cfg.TokenSalt), time.Now().UTC())
	if err != nil {
		slog.Error("failed to insert voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register voter")
		return
	}

	slog.Info("voter registered", "voter_id", voterID, "username", req.Username)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterVoterResponse{
		VoterID:    voterID,
		VoterToken: voterToken,
	})
}
