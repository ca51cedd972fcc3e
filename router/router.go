// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/grifftatarsky/bonk/cliparse"
	"github.com/grifftatarsky/bonk/handlers"
	"github.com/grifftatarsky/bonk/metrics"
	"github.com/grifftatarsky/bonk/middleware"
)

// MetricsNamespace prefixes every exported metric.
const MetricsNamespace = "bonk"

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// each router owns its registry so several can coexist in one process
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewServer(MetricsNamespace, reg)

	// Initialize handlers
	voterHandler := handlers.NewVoterHandler(db, cfg)
	electionHandler := handlers.NewElectionHandler(db, cfg)
	bookHandler := handlers.NewBookHandler(db, cfg)
	candidateHandler := handlers.NewCandidateHandler(db, cfg, m)
	votingHandler := handlers.NewVotingHandler(db, cfg, m)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Voters
	mux.HandleFunc("POST /voters", middleware.WithLogging(voterHandler.Register))

	// Election lifecycle (close requires X-Admin-Key)
	mux.HandleFunc("POST /elections", middleware.WithLogging(electionHandler.CreateElection))
	mux.HandleFunc("GET /elections/{id}", middleware.WithLogging(electionHandler.GetElection))
	mux.HandleFunc("POST /elections/{id}/close", middleware.WithLogging(electionHandler.CloseElection))

	// Books and nominations
	mux.HandleFunc("POST /books", middleware.WithLogging(bookHandler.CreateBook))
	mux.HandleFunc("GET /books/{id}", middleware.WithLogging(bookHandler.GetBook))
	mux.HandleFunc("GET /elections/{id}/candidates", middleware.WithLogging(candidateHandler.ListCandidates))
	mux.HandleFunc("POST /elections/{id}/nominate/{bookId}", middleware.WithLogging(candidateHandler.Nominate))
	mux.HandleFunc("DELETE /elections/{id}/candidates/{candidateId}", middleware.WithLogging(candidateHandler.Withdraw))

	// Votes (X-Voter-Token)
	mux.HandleFunc("GET /elections/{id}/my-votes", middleware.WithLogging(votingHandler.GetMyVotes))
	mux.HandleFunc("POST /votes/{candidateId}/{rank}", middleware.WithLogging(votingHandler.SetRank))
	mux.HandleFunc("DELETE /votes/{candidateId}", middleware.WithLogging(votingHandler.ClearRank))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bonk API v1"))
	})

	return mux
}
