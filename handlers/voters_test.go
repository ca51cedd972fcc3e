// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/grifftatarsky/bonk/auth"
	"github.com/grifftatarsky/bonk/models"
	"github.com/grifftatarsky/bonk/testutil"
)

func TestRegisterVoter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVoterHandler(db, cfg)

	testutil.CreateTestVoter(t, db, cfg, "taken")

	tests := []struct {
		name           string
		body           any
		expectedStatus int
	}{
		{"valid", models.RegisterVoterRequest{Username: "alice"}, http.StatusCreated},
		{"username taken", models.RegisterVoterRequest{Username: "taken"}, http.StatusConflict},
		{"empty username", models.RegisterVoterRequest{Username: "   "}, http.StatusBadRequest},
		{"too short", models.RegisterVoterRequest{Username: "a"}, http.StatusBadRequest},
		{"invalid JSON", "not json", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/voters", tt.body, nil)
			w := httptest.NewRecorder()

			handler.Register(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestRegisterVoter_TokenAuthenticates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVoterHandler(db, cfg)

	req := testutil.MakeRequest("POST", "/voters", models.RegisterVoterRequest{Username: "bob"}, nil)
	w := httptest.NewRecorder()
	handler.Register(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.RegisterVoterResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.VoterID == "" || resp.VoterToken == "" {
		t.Fatalf("Expected voter_id and voter_token, got %+v", resp)
	}

	// only the hash is stored
	var stored string
	if err := db.QueryRow(`SELECT token_hash FROM voter WHERE id = $1`, resp.VoterID).Scan(&stored); err != nil {
		t.Fatalf("Failed to query voter: %v", err)
	}
	if stored == resp.VoterToken {
		t.Error("Voter token stored in plain text")
	}
	if stored != auth.HashToken(resp.VoterToken, cfg.TokenSalt) {
		t.Error("Stored hash does not match token")
	}

	authReq := testutil.MakeRequest("GET", "/", nil, map[string]string{VoterTokenHeader: resp.VoterToken})
	voterID, err := authenticateVoter(db, cfg, authReq)
	if err != nil {
		t.Fatalf("authenticateVoter() error = %v", err)
	}
	if voterID != resp.VoterID {
		t.Errorf("authenticateVoter() = %s, want %s", voterID, resp.VoterID)
	}
}

func TestAuthenticateVoter_Errors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	token, _ := auth.GenerateVoterToken()

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"missing", "", errNoToken},
		{"malformed", "abc", errUnknownToken},
		{"unknown", token, errUnknownToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/", nil, map[string]string{VoterTokenHeader: tt.token})
			if _, err := authenticateVoter(db, cfg, req); err != tt.wantErr {
				t.Errorf("authenticateVoter() error = %v, want %v", err, tt.wantErr)
			}
			if code, _ := authStatus(tt.wantErr); code != http.StatusUnauthorized {
				t.Errorf("authStatus() = %d, want 401", code)
			}
		})
	}
}
