// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package election ties the ballot and nomination cores to a remote voting
// service for a single election.
//
// An Engine is created per election and owns everything that election's UI
// needs: the voter's ranked votes, the candidate list (including in-flight
// nomination placeholders), the busy flags and the last error per action
// family. Engines share nothing, so one election's failures or in-flight work
// never affect another's.
//
//	eng := election.New(electionID, voterID, client.New(url, token))
//	if err := eng.Load(ctx); err != nil { ... }
//	err := eng.RequestReorder(ctx, []string{"c3", "c1"})
//	v := eng.View()
//
// Requests that arrive while the same family is busy are dropped: they
// return nil and change nothing.
package election
