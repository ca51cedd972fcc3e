// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newBallotCmd(g *globalFlags) *cobra.Command {
	ballotCmd := &cobra.Command{
		Use:   "ballot",
		Short: "Show or change your ranked ballot",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print your ballot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := g.engine(cmd)
			if err != nil {
				return err
			}
			printBallot(cmd.OutOrStdout(), eng.View())
			return nil
		},
	}

	reorderCmd := &cobra.Command{
		Use:   "reorder <candidate-id>...",
		Short: "Rank candidates in the given order, unranking the rest",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := g.engine(cmd)
			if err != nil {
				return err
			}
			if err := eng.RequestReorder(cmd.Context(), args); err != nil {
				return err
			}
			printBallot(cmd.OutOrStdout(), eng.View())
			return nil
		},
	}

	rankCmd := &cobra.Command{
		Use:   "rank <candidate-id> <rank>",
		Short: "Move one candidate to a rank",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rank, err := parseRank(args[1])
			if err != nil {
				return err
			}
			eng, err := g.engine(cmd)
			if err != nil {
				return err
			}
			if err := eng.RequestRankChange(cmd.Context(), args[0], rank); err != nil {
				return err
			}
			printBallot(cmd.OutOrStdout(), eng.View())
			return nil
		},
	}

	unrankCmd := &cobra.Command{
		Use:   "unrank <candidate-id>",
		Short: "Remove one candidate from your ballot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := g.engine(cmd)
			if err != nil {
				return err
			}
			if err := eng.RequestRankChange(cmd.Context(), args[0], 0); err != nil {
				return err
			}
			printBallot(cmd.OutOrStdout(), eng.View())
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Unrank every candidate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := g.engine(cmd)
			if err != nil {
				return err
			}
			if err := eng.RequestClearBallot(cmd.Context()); err != nil {
				return err
			}
			printBallot(cmd.OutOrStdout(), eng.View())
			return nil
		},
	}

	ballotCmd.AddCommand(showCmd, reorderCmd, rankCmd, unrankCmd, clearCmd)
	return ballotCmd
}

func parseRank(s string) (int, error) {
	rank, err := strconv.Atoi(s)
	if err != nil || rank < 1 {
		return 0, fmt.Errorf("rank must be a positive number, got %q", s)
	}
	return rank, nil
}
