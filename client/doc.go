// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package client talks to a bonk API server on behalf of one voter.
//
// Client implements election.Remote, so an election.Engine can reconcile a
// ballot against a live server. OpenLibrary searches the Open Library
// catalogue for books to nominate and caches recent queries.
package client
