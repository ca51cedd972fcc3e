// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth issues and checks the two credentials the bonk API knows.

An election's admin key is an HMAC of its id under the server's admin salt.
Nothing is stored; the close and withdraw handlers recompute it:

	key := auth.GenerateAdminKey(electionID, cfg.AdminKeySalt)
	if err := auth.ValidateAdminKey(electionID, key, cfg.AdminKeySalt); err != nil {
		// 403
	}

A voter token is random and returned once, from POST /voters. Clients send it
as X-Voter-Token. The voter table keeps only its hash:

	token, _ := auth.GenerateVoterToken()
	stored := auth.HashToken(token, cfg.TokenSalt)

ValidateTokenFormat lets handlers reject malformed tokens before a lookup.
*/
package auth
