// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrInvalidToken    = errors.New("invalid token format")
)

const voterTokenBytes = 24

func mac(salt, msg string) []byte {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(msg))
	return h.Sum(nil)
}

// GenerateAdminKey derives the admin key of an election. Keys are never
// stored; ValidateAdminKey recomputes them.
func GenerateAdminKey(electionID, salt string) string {
	return base64.RawURLEncoding.EncodeToString(mac(salt, electionID))
}

func ValidateAdminKey(electionID, adminKey, salt string) error {
	if adminKey == "" || !hmac.Equal([]byte(adminKey), []byte(GenerateAdminKey(electionID, salt))) {
		return ErrInvalidAdminKey
	}
	return nil
}

// GenerateVoterToken returns a fresh 192-bit token, unpadded URL-safe base64.
// It authenticates every vote and nomination its voter makes.
func GenerateVoterToken() (string, error) {
	b := make([]byte, voterTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate voter token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ValidateTokenFormat rejects tokens GenerateVoterToken could not have made.
func ValidateTokenFormat(token string) error {
	if len(token) != base64.RawURLEncoding.EncodedLen(voterTokenBytes) {
		return ErrInvalidToken
	}
	if _, err := base64.RawURLEncoding.DecodeString(token); err != nil {
		return ErrInvalidToken
	}
	return nil
}

// HashToken derives the value stored for a voter token, so a leaked
// database does not leak usable tokens.
func HashToken(token, salt string) string {
	return hex.EncodeToString(mac(salt, token))
}
