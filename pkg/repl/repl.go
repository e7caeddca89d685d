// Package repl runs the interactive query loop.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/japaniel/wordfilter/pkg/anagram"
	"github.com/japaniel/wordfilter/pkg/lexicon"
	"go.uber.org/zap"
)

// DefaultPrompt is written once before the first line is read.
const DefaultPrompt = "Enter a letter count or a word"

type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

type Roller interface {
	Roll(ctx context.Context, length int) (string, error)
}

// REPL answers one query per input line. An integer line rolls a random word
// of that length and searches it; any other line is searched as given.
type REPL struct {
	Searcher Searcher
	Roller   Roller
	// Prompt is printed before reading; empty disables it.
	Prompt string
	Logger *zap.Logger
}

func New(searcher Searcher, roller Roller, logger *zap.Logger) *REPL {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &REPL{Searcher: searcher, Roller: roller, Prompt: DefaultPrompt, Logger: logger}
}

// Run reads in until EOF or ctx ends. Query failures are logged and the loop
// continues; only I/O and store errors end it.
func (r *REPL) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if r.Prompt != "" {
		if _, err := fmt.Fprintln(out, r.Prompt); err != nil {
			return err
		}
	}
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := r.handle(ctx, line, out); err != nil {
			return err
		}
	}
	return sc.Err()
}

func (r *REPL) handle(ctx context.Context, line string, out io.Writer) error {
	word := line
	if n, err := strconv.Atoi(line); err == nil {
		word, err = r.Roller.Roll(ctx, n)
		if errors.Is(err, anagram.ErrNoWordsOfLength) {
			r.Logger.Info("no words of that length", zap.Int("length", n))
			return nil
		}
		if err != nil {
			return err
		}
	}

	results, err := r.Searcher.Search(ctx, word)
	if errors.Is(err, anagram.ErrQueryTooLong) {
		r.Logger.Info("query too long", zap.String("query", word), zap.Int("limit", anagram.MaxQueryLength))
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s [%s]\n", word, lexicon.Signature(strings.ToLower(word)))
	for _, w := range results {
		if _, err := fmt.Fprintln(out, w); err != nil {
			return err
		}
	}
	return nil
}
