// Package anagram answers sub-anagram queries and random draws against the
// word store.
package anagram

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math/bits"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/japaniel/wordfilter/pkg/db"
	"github.com/japaniel/wordfilter/pkg/lexicon"
	"go.uber.org/zap"
)

// MaxQueryLength bounds the number of runes in a search query. The subset
// enumeration is exponential in the query length.
const MaxQueryLength = 16

// ErrQueryTooLong is returned for queries longer than MaxQueryLength runes.
var ErrQueryTooLong = errors.New("query too long")

// SignatureFinder resolves a canonical signature to the stored words sharing it.
type SignatureFinder interface {
	FindBySignature(ctx context.Context, signature string) ([]db.WordEntry, error)
}

// Searcher finds every stored word that can be spelled from a subset of the
// query's letters.
type Searcher struct {
	Store  SignatureFinder
	Logger *zap.Logger
}

// NewSearcher creates a new Searcher.
func NewSearcher(store SignatureFinder, logger *zap.Logger) *Searcher {
	return &Searcher{Store: store, Logger: logger}
}

// Search returns the words buildable from query's letters, each letter used at
// most as often as it occurs in query. Results are ordered longest first, ties
// alphabetically. An empty result is not an error.
func (s *Searcher) Search(ctx context.Context, query string) ([]string, error) {
	matches, err := s.Matches(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Word
	}
	return out, nil
}

// Matches is Search returning the full stored entries.
func (s *Searcher) Matches(ctx context.Context, query string) ([]db.WordEntry, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	n := utf8.RuneCountInString(query)
	if n > MaxQueryLength {
		return nil, fmt.Errorf("%w: %d letters, limit %d", ErrQueryTooLong, n, MaxQueryLength)
	}

	pattern := []rune(lexicon.Signature(query))
	seenSubset := make(map[string]struct{})
	byWord := make(map[string]db.WordEntry)
	lookups := 0

	for mask := uint32(1); mask < 1<<n; mask++ {
		size := bits.OnesCount32(mask)
		if size < lexicon.MinLength || size > lexicon.MaxLength {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		subset := subsetOf(pattern, mask, size)
		if _, ok := seenSubset[subset]; ok {
			continue
		}
		seenSubset[subset] = struct{}{}

		found, err := s.Store.FindBySignature(ctx, subset)
		if err != nil {
			return nil, fmt.Errorf("lookup %q: %w", subset, err)
		}
		lookups++
		for _, e := range found {
			byWord[e.Word] = e
		}
	}

	out := make([]db.WordEntry, 0, len(byWord))
	for _, e := range byWord {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b db.WordEntry) int {
		if c := cmp.Compare(b.Length, a.Length); c != 0 {
			return c
		}
		return strings.Compare(a.Word, b.Word)
	})

	s.logger().Debug("search",
		zap.String("query", query),
		zap.Int("lookups", lookups),
		zap.Int("results", len(out)))
	return out, nil
}

// subsetOf keeps the runes of pattern selected by mask, in pattern order.
// Because pattern is sorted the result is itself a canonical signature.
func subsetOf(pattern []rune, mask uint32, size int) string {
	var b strings.Builder
	b.Grow(size)
	for i, r := range pattern {
		if mask&(1<<i) != 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (s *Searcher) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
