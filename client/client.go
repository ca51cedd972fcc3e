// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/grifftatarsky/bonk/models"
)

// TokenHeader carries the voter token on every request.
const TokenHeader = "X-Voter-Token"

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, e.Message)
}

// Client is a bonk API client authenticated as one voter.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for the server at baseURL using voterToken.
func New(baseURL, voterToken string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   voterToken,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetRank handles POST /votes/{candidateId}/{rank}
func (c *Client) SetRank(ctx context.Context, candidateID string, rank int) (models.Vote, error) {
	var v models.Vote
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/votes/%s/%d", url.PathEscape(candidateID), rank), nil, &v)
	return v, err
}

// ClearRank handles DELETE /votes/{candidateId}
func (c *Client) ClearRank(ctx context.Context, candidateID string) error {
	return c.do(ctx, http.MethodDelete, "/votes/"+url.PathEscape(candidateID), nil, nil)
}

// ListVotes returns voterID's votes in the election. The server only ever
// returns the token holder's votes; voterID filters out anything else.
func (c *Client) ListVotes(ctx context.Context, voterID, electionID string) ([]models.Vote, error) {
	var votes []models.Vote
	if err := c.do(ctx, http.MethodGet, "/elections/"+url.PathEscape(electionID)+"/my-votes", nil, &votes); err != nil {
		return nil, err
	}
	if voterID == "" {
		return votes, nil
	}
	out := votes[:0]
	for _, v := range votes {
		if v.VoterID == voterID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (c *Client) CreateBook(ctx context.Context, req models.BookRequest) (models.Book, error) {
	var b models.Book
	err := c.do(ctx, http.MethodPost, "/books", req, &b)
	return b, err
}

func (c *Client) Nominate(ctx context.Context, electionID, bookID string) (models.Candidate, error) {
	var cand models.Candidate
	path := fmt.Sprintf("/elections/%s/nominate/%s", url.PathEscape(electionID), url.PathEscape(bookID))
	err := c.do(ctx, http.MethodPost, path, nil, &cand)
	return cand, err
}

func (c *Client) Withdraw(ctx context.Context, electionID, candidateID string) error {
	path := fmt.Sprintf("/elections/%s/candidates/%s", url.PathEscape(electionID), url.PathEscape(candidateID))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) ListCandidates(ctx context.Context, electionID string) ([]models.Candidate, error) {
	var cands []models.Candidate
	err := c.do(ctx, http.MethodGet, "/elections/"+url.PathEscape(electionID)+"/candidates", nil, &cands)
	return cands, err
}

func (c *Client) GetElection(ctx context.Context, electionID string) (models.Election, error) {
	var e models.Election
	err := c.do(ctx, http.MethodGet, "/elections/"+url.PathEscape(electionID), nil, &e)
	return e, err
}

// RegisterVoter creates a voter. The returned token authenticates later
// requests; RegisterVoter itself needs none.
func (c *Client) RegisterVoter(ctx context.Context, username string) (models.RegisterVoterResponse, error) {
	var resp models.RegisterVoterResponse
	err := c.do(ctx, http.MethodPost, "/voters", models.RegisterVoterRequest{Username: username}, &resp)
	return resp, err
}

func (c *Client) CreateElection(ctx context.Context, req models.CreateElectionRequest) (models.CreateElectionResponse, error) {
	var resp models.CreateElectionResponse
	err := c.do(ctx, http.MethodPost, "/elections", req, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(TokenHeader, c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("api call", "method", method, "path", path, "status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Method: method, Path: path, Code: resp.StatusCode}
		var er models.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&er) == nil {
			se.Message = er.Message
		}
		return se
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
