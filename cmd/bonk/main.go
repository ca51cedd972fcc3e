// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command bonk is a command line client for a bonk server: it shows and edits
// a voter's ranked ballot and nominates or withdraws books.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"

	"github.com/grifftatarsky/bonk/cliparse"
	"github.com/grifftatarsky/bonk/client"
	"github.com/grifftatarsky/bonk/election"
	"github.com/grifftatarsky/bonk/metrics"
)

const (
	metricsNamespace = "bonk"
	pushJob          = "bonk_cli"
)

var errNoElection = errors.New("no election selected, use --election or BONK_ELECTION_ID")

type globalFlags struct {
	server      string
	token       string
	voter       string
	election    string
	pushgateway string
	verbose     bool

	// registry holds the engine collectors of this invocation
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, g, err := newRootCmd(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := execute(ctx, root, g); err != nil {
		os.Exit(1)
	}
}

// execute runs the command line, then pushes the engine metrics when a
// Pushgateway is configured, whether or not the command succeeded.
func execute(ctx context.Context, root *cobra.Command, g *globalFlags) error {
	runErr := root.ExecuteContext(ctx)
	if err := g.push(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "metrics push failed:", err)
		if runErr == nil {
			return err
		}
	}
	return runErr
}

func newRootCmd(envFile string) (*cobra.Command, *globalFlags, error) {
	env, err := cliparse.ClientFromEnv(envFile)
	if err != nil {
		return nil, nil, err
	}

	g := &globalFlags{registry: prometheus.NewRegistry()}
	g.metrics = metrics.NewEngine(metricsNamespace, g.registry)
	root := &cobra.Command{
		Use:          "bonk",
		Short:        "Rank and nominate books in a bonk election",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.server, "server", env.ServerURL, "bonk server URL")
	root.PersistentFlags().StringVar(&g.token, "token", env.VoterToken, "voter token")
	root.PersistentFlags().StringVar(&g.voter, "voter", env.VoterID, "voter id")
	root.PersistentFlags().StringVar(&g.election, "election", env.ElectionID, "election id")
	root.PersistentFlags().StringVar(&g.pushgateway, "pushgateway", env.Pushgateway, "Pushgateway URL for ballot and nomination metrics")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log API calls")

	root.AddCommand(
		newBallotCmd(g),
		newNominateCmd(g),
		newWithdrawCmd(g),
		newCandidatesCmd(g),
	)
	return root, g, nil
}

func (g *globalFlags) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// engine builds an election engine for the selected election and loads it.
func (g *globalFlags) engine(cmd *cobra.Command) (*election.Engine, error) {
	if g.election == "" {
		return nil, errNoElection
	}
	logger := g.logger(cmd)
	remote := client.New(g.server, g.token, client.WithLogger(logger))
	eng := election.New(g.election, g.voter, remote, election.WithLogger(logger), election.WithMetrics(g.metrics))
	if err := eng.Load(cmd.Context()); err != nil {
		return nil, fmt.Errorf("load election %s: %w", g.election, err)
	}
	return eng, nil
}

func (g *globalFlags) push(ctx context.Context) error {
	if g.pushgateway == "" {
		return nil
	}
	p := push.New(g.pushgateway, pushJob).Gatherer(g.registry)
	if g.election != "" {
		p = p.Grouping("election", g.election)
	}
	return p.PushContext(ctx)
}
