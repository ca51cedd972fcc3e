// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/grifftatarsky/bonk/cliparse"
	"github.com/grifftatarsky/bonk/metrics"
	"github.com/grifftatarsky/bonk/middleware"
	"github.com/grifftatarsky/bonk/models"
)

// VotingHandler serves one voter's ranks. Each call changes a single vote;
// clients reorder a ballot by sending several in sequence, so the server
// tolerates a voter briefly holding the same rank twice.
type VotingHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	metrics *metrics.Metrics
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config, m *metrics.Metrics) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg, metrics: m}
}

// GetMyVotes handles GET /elections/{id}/my-votes
func (h *VotingHandler) GetMyVotes(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	voterID, err := authenticateVoter(h.db, h.cfg, r)
	if err != nil {
		code, msg := authStatus(err)
		middleware.ErrorResponse(w, code, msg)
		return
	}

	if _, err := electionState(h.db, electionID); err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	} else if err != nil {
		slog.Error("failed to query election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.Query(`
		SELECT v.id, v.candidate_id, v.voter_id, v.rank
		FROM vote v
		JOIN candidate c ON c.id = v.candidate_id
		WHERE c.election_id = $1 AND v.voter_id = $2
		ORDER BY v.rank, v.candidate_id
	`, electionID, voterID)
	if err != nil {
		slog.Error("failed to query votes", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ID, &v.CandidateID, &v.VoterID, &v.Rank); err != nil {
			slog.Error("failed to scan vote", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, votes)
}

// SetRank handles POST /votes/{candidateId}/{rank}
// Creates the vote (201) or moves it (200). Asking for the rank the vote
// already has is a conflict.
func (h *VotingHandler) SetRank(w http.ResponseWriter, r *http.Request) {
	candidateID := r.PathValue("candidateId")
	rank, err := strconv.Atoi(r.PathValue("rank"))
	if err != nil || rank < 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "rank must be a positive integer")
		return
	}

	voterID, err := authenticateVoter(h.db, h.cfg, r)
	if err != nil {
		code, msg := authStatus(err)
		middleware.ErrorResponse(w, code, msg)
		return
	}

	if code, msg := h.checkCandidateOpen(candidateID); code != 0 {
		middleware.ErrorResponse(w, code, msg)
		return
	}

	vote := models.Vote{CandidateID: candidateID, VoterID: voterID, Rank: rank}
	var current int
	err = h.db.QueryRow(`
		SELECT id, rank FROM vote WHERE candidate_id = $1 AND voter_id = $2
	`, candidateID, voterID).Scan(&vote.ID, &current)

	switch {
	case err == sql.ErrNoRows:
		vote.ID = uuid.NewString()
		_, err = h.db.Exec(`
			INSERT INTO vote (id, candidate_id, voter_id, rank, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, vote.ID, candidateID, voterID, rank, time.Now().UTC())
		if err != nil {
			slog.Error("failed to insert vote", "error", err, "candidate_id", candidateID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save vote")
			return
		}
		h.metrics.VoteAccepted("set")
		slog.Info("vote cast", "candidate_id", candidateID, "voter_id", voterID, "rank", rank)
		middleware.JSONResponse(w, http.StatusCreated, vote)

	case err != nil:
		slog.Error("failed to query vote", "error", err, "candidate_id", candidateID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")

	case current == rank:
		middleware.ErrorResponse(w, http.StatusConflict, "Candidate already has this rank")

	default:
		_, err = h.db.Exec(`
			UPDATE vote SET rank = $1, updated_at = $2 WHERE id = $3
		`, rank, time.Now().UTC(), vote.ID)
		if err != nil {
			slog.Error("failed to update vote", "error", err, "vote_id", vote.ID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save vote")
			return
		}
		h.metrics.VoteAccepted("set")
		slog.Info("vote moved", "candidate_id", candidateID, "voter_id", voterID, "from", current, "to", rank)
		middleware.JSONResponse(w, http.StatusOK, vote)
	}
}

// ClearRank handles DELETE /votes/{candidateId}
func (h *VotingHandler) ClearRank(w http.ResponseWriter, r *http.Request) {
	candidateID := r.PathValue("candidateId")

	voterID, err := authenticateVoter(h.db, h.cfg, r)
	if err != nil {
		code, msg := authStatus(err)
		middleware.ErrorResponse(w, code, msg)
		return
	}

	if code, msg := h.checkCandidateOpen(candidateID); code != 0 {
		middleware.ErrorResponse(w, code, msg)
		return
	}

	res, err := h.db.Exec(`DELETE FROM vote WHERE candidate_id = $1 AND voter_id = $2`, candidateID, voterID)
	if err != nil {
		slog.Error("failed to delete vote", "error", err, "candidate_id", candidateID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete vote")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Vote not found")
		return
	}

	h.metrics.VoteAccepted("clear")
	slog.Info("vote cleared", "candidate_id", candidateID, "voter_id", voterID)

	w.WriteHeader(http.StatusNoContent)
}

// checkCandidateOpen returns a non-zero status when votes on the candidate
// must be refused.
func (h *VotingHandler) checkCandidateOpen(candidateID string) (int, string) {
	var electionID string
	err := h.db.QueryRow(`SELECT election_id FROM candidate WHERE id = $1`, candidateID).Scan(&electionID)
	if err == sql.ErrNoRows {
		return http.StatusNotFound, "Candidate not found"
	}
	if err != nil {
		slog.Error("failed to query candidate", "error", err, "candidate_id", candidateID)
		return http.StatusInternalServerError, "Database error"
	}

	open, err := electionState(h.db, electionID)
	if err != nil {
		slog.Error("failed to query election", "error", err, "election_id", electionID)
		return http.StatusInternalServerError, "Database error"
	}
	if !open {
		return http.StatusConflict, "Election is closed"
	}
	return 0, ""
}
