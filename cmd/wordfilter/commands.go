package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/japaniel/wordfilter/pkg/config"
	"github.com/japaniel/wordfilter/pkg/repl"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	a := &app{}
	var skipIngest bool

	rootCmd := &cobra.Command{
		Use:   "wordfilter",
		Short: "Build an English word corpus and search it for sub-anagrams",
		Long: `wordfilter ingests candidate words, keeps those a dictionary service knows,
and answers "which words can I spell from these letters" queries.

Without a subcommand it runs ingestion and backfill, then reads queries from
stdin: a number rolls a random word of that length, anything else is searched.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), func(ctx context.Context) error {
				if err := a.pipeline(ctx, cmd.OutOrStdout(), skipIngest); err != nil {
					return err
				}
				in := cmd.InOrStdin()
				loop := repl.New(a.searcher(), a.sampler(), a.logger)
				if !isTerminal(in) {
					loop.Prompt = ""
				}
				return loop.Run(ctx, in, cmd.OutOrStdout())
			})
		},
	}
	rootCmd.Flags().BoolVar(&skipIngest, "skip-ingest", false, "Skip ingestion (backfill still runs)")
	rootCmd.Flags().StringVar(&a.articleURL, "url", "", "Ingest words from the article at this URL instead of the word list")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", config.DefaultPath, "Path to YAML config (optional)")
	pf.StringVar(&a.dbPath, "db", "", "Path to SQLite database (overrides config)")
	pf.StringVar(&a.wordListPath, "wordlist", "", "Path to newline-delimited word list (overrides config)")
	pf.BoolVar(&a.debug, "debug", false, "Log per-word detail")

	rootCmd.AddCommand(
		newIngestCmd(a),
		newBackfillCmd(a),
		newSearchCmd(a),
		newRollCmd(a),
	)
	return rootCmd
}

func newIngestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Look up new candidate words and store the known ones, then backfill",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), func(ctx context.Context) error {
				return a.pipeline(ctx, cmd.OutOrStdout(), false)
			})
		},
	}
	cmd.Flags().StringVar(&a.articleURL, "url", "", "Ingest words from the article at this URL instead of the word list")
	return cmd
}

func newBackfillCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Add definitions to stored words that have none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), func(ctx context.Context) error {
				return a.pipeline(ctx, cmd.OutOrStdout(), true)
			})
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	var definitions bool
	cmd := &cobra.Command{
		Use:   "search WORD",
		Short: "List stored words spellable from the letters of WORD, longest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), func(ctx context.Context) error {
				out := cmd.OutOrStdout()
				matches, err := a.searcher().Matches(ctx, args[0])
				if err != nil {
					return err
				}
				for _, m := range matches {
					fmt.Fprintln(out, m.Word)
					if !definitions {
						continue
					}
					defs, err := a.store.Definitions(ctx, m.ID)
					if err != nil {
						return err
					}
					for _, d := range defs {
						fmt.Fprintf(out, "  (%s) %s\n", d.PartOfSpeech, d.Definition)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&definitions, "definitions", false, "Print stored definitions under each result")
	return cmd
}

func newRollCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "roll LENGTH",
		Short: "Pick a random stored word of LENGTH letters and list its sub-anagrams",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("LENGTH must be an integer: %w", err)
			}
			return a.run(cmd.Context(), func(ctx context.Context) error {
				word, err := a.sampler().Roll(ctx, n)
				if err != nil {
					return err
				}
				results, err := a.searcher().Search(ctx, word)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, word)
				for _, w := range results {
					fmt.Fprintln(out, w)
				}
				return nil
			})
		},
	}
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
