// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grifftatarsky/bonk/client"
	"github.com/grifftatarsky/bonk/models"
	"github.com/grifftatarsky/bonk/nomination"
)

const searchLimit = 10

type nominateFlags struct {
	title  string
	author string
	cover  string
	blurb  string
	book   string
	search string
	pick   int
	olURL  string
}

func newNominateCmd(g *globalFlags) *cobra.Command {
	f := &nominateFlags{}
	cmd := &cobra.Command{
		Use:   "nominate",
		Short: "Nominate a book by details, existing book id, or Open Library search",
		Long: `Nominate a book into the election. Exactly one source is used:

  --title/--author [--cover --blurb]   a book described by hand
  --book <id>                          a book the server already knows
  --search <query> [--pick n]          an Open Library result; without
                                       --pick the results are listed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.search != "" && f.pick == 0 {
				return listSearch(cmd, f)
			}
			d, err := f.descriptor(cmd)
			if err != nil {
				return err
			}
			eng, err := g.engine(cmd)
			if err != nil {
				return err
			}
			c, err := eng.RequestNominate(cmd.Context(), d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "nominated %s (%s)\n", describeBook(c.Book), c.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.title, "title", "", "book title")
	cmd.Flags().StringVar(&f.author, "author", "", "book author")
	cmd.Flags().StringVar(&f.cover, "cover", "", "cover image URL")
	cmd.Flags().StringVar(&f.blurb, "blurb", "", "short description")
	cmd.Flags().StringVar(&f.book, "book", "", "existing book id")
	cmd.Flags().StringVar(&f.search, "search", "", "Open Library search query")
	cmd.Flags().IntVar(&f.pick, "pick", 0, "1-based search result to nominate")
	cmd.Flags().StringVar(&f.olURL, "openlibrary-url", client.DefaultOpenLibraryURL, "Open Library base URL")
	return cmd
}

func (f *nominateFlags) descriptor(cmd *cobra.Command) (nomination.Descriptor, error) {
	switch {
	case f.book != "":
		return nomination.FromExistingBook(f.book), nil
	case f.search != "":
		docs, err := f.searchDocs(cmd)
		if err != nil {
			return nomination.Descriptor{}, err
		}
		if f.pick < 1 || f.pick > len(docs) {
			return nomination.Descriptor{}, fmt.Errorf("--pick %d out of range, %d results", f.pick, len(docs))
		}
		return nomination.FromSearchResult(docs[f.pick-1]), nil
	case strings.TrimSpace(f.title) != "":
		if strings.TrimSpace(f.author) == "" {
			return nomination.Descriptor{}, errors.New("--author is required with --title")
		}
		return nomination.FromCustom(f.title, f.author, f.cover, f.blurb), nil
	}
	return nomination.Descriptor{}, errors.New("one of --title, --book or --search is required")
}

func (f *nominateFlags) searchDocs(cmd *cobra.Command) ([]models.OpenLibraryDoc, error) {
	ol := client.NewOpenLibrary(f.olURL, 1)
	res, err := ol.Search(cmd.Context(), f.search, 0, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", f.search, err)
	}
	return res.Docs, nil
}

func listSearch(cmd *cobra.Command, f *nominateFlags) error {
	docs, err := f.searchDocs(cmd)
	if err != nil {
		return err
	}
	printSearch(cmd.OutOrStdout(), docs)
	return nil
}

func newWithdrawCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <candidate-id>",
		Short: "Withdraw a nomination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := g.engine(cmd)
			if err != nil {
				return err
			}
			if err := eng.RequestWithdraw(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "withdrew %s\n", args[0])
			return nil
		},
	}
}

func newCandidatesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "candidates",
		Short: "List the election's candidates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := g.engine(cmd)
			if err != nil {
				return err
			}
			printCandidates(cmd.OutOrStdout(), eng.View())
			return nil
		},
	}
}
