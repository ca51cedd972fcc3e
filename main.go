// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/grifftatarsky/bonk/cliparse"
	"github.com/grifftatarsky/bonk/db"
	"github.com/grifftatarsky/bonk/middleware"
	"github.com/grifftatarsky/bonk/router"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("bonk server stopped", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := cliparse.ParseFlags(args)
	if err != nil {
		return err
	}

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.CreateSchema(conn); err != nil {
		return err
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           middleware.CORS(router.NewRouter(conn, cfg)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		slog.Info("Listening", "port", cfg.Port)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
