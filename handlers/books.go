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

	"github.com/grifftatarsky/bonk/cliparse"
	"github.com/grifftatarsky/bonk/middleware"
	"github.com/grifftatarsky/bonk/models"
)

type BookHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewBookHandler(db *sql.DB, cfg cliparse.Config) *BookHandler {
	return &BookHandler{db: db, cfg: cfg}
}

// CreateBook handles POST /books
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	voterID, err := authenticateVoter(h.db, h.cfg, r)
	if err != nil {
		code, msg := authStatus(err)
		middleware.ErrorResponse(w, code, msg)
		return
	}

	var req models.BookRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Author == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "author is required")
		return
	}

	book := models.Book{
		ID:            uuid.NewString(),
		Title:         req.Title,
		Author:        req.Author,
		ImageURL:      req.ImageURL,
		Blurb:         req.Blurb,
		OpenLibraryID: req.OpenLibraryID,
		CreatedAt:     time.Now().UTC(),
	}
	_, err = h.db.Exec(`
		INSERT INTO book (id, title, author, image_url, blurb, open_library_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, book.ID, book.Title, book.Author, book.ImageURL, book.Blurb, book.OpenLibraryID, voterID, book.CreatedAt)
	if err != nil {
		slog.Error("failed to insert book", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create book")
		return
	}

	slog.Info("book created", "book_id", book.ID, "voter_id", voterID)
	middleware.JSONResponse(w, http.StatusCreated, book)
}

// GetBook handles GET /books/{id}
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("id")

	var b models.Book
	err := h.db.QueryRow(`
		SELECT id, title, author, image_url, blurb, open_library_id, created_at
		FROM book WHERE id = $1
	`, bookID).Scan(&b.ID, &b.Title, &b.Author, &b.ImageURL, &b.Blurb, &b.OpenLibraryID, &b.CreatedAt)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Book not found")
		return
	}
	if err != nil {
		slog.Error("failed to query book", "error", err, "book_id", bookID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, b)
}
