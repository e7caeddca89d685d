package anagram

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/japaniel/wordfilter/pkg/db"
	"github.com/japaniel/wordfilter/pkg/lexicon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seededStore(t *testing.T, words ...string) *db.Store {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	store := db.NewStore(conn)
	for _, w := range words {
		_, err := store.InsertWord(ctx, db.WordEntry{
			Word:      w,
			Signature: lexicon.Signature(w),
			Length:    lexicon.Length(w),
		})
		require.NoError(t, err)
	}
	return store
}

var corpus = []string{"eaten", "ate", "eat", "tea", "ten", "tent", "cat", "act", "tact", "attach"}

func TestSearchEaten(t *testing.T) {
	s := NewSearcher(seededStore(t, corpus...), zap.NewNop())

	got, err := s.Search(context.Background(), "eaten")
	require.NoError(t, err)
	assert.Equal(t, []string{"eaten", "ate", "eat", "tea", "ten"}, got)
}

func TestSearchNormalizesQuery(t *testing.T) {
	s := NewSearcher(seededStore(t, corpus...), nil)

	got, err := s.Search(context.Background(), "  EaTeN\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"eaten", "ate", "eat", "tea", "ten"}, got)
}

func TestSearchNoMatches(t *testing.T) {
	s := NewSearcher(seededStore(t, corpus...), nil)

	for _, q := range []string{"xyz", "", "ea", "zzzzzzz"} {
		got, err := s.Search(context.Background(), q)
		require.NoError(t, err, q)
		assert.Empty(t, got, q)
	}
}

func TestSearchQueryTooLong(t *testing.T) {
	s := NewSearcher(&countingFinder{}, nil)

	_, err := s.Search(context.Background(), "abcdefghijklmnopq")
	assert.ErrorIs(t, err, ErrQueryTooLong)

	_, err = s.Search(context.Background(), "abcdefghijklmnop")
	assert.NoError(t, err)
}

// contains reports whether word's letters are a sub-multiset of query's.
func contains(query, word string) bool {
	counts := map[rune]int{}
	for _, r := range query {
		counts[r]++
	}
	for _, r := range word {
		counts[r]--
		if counts[r] < 0 {
			return false
		}
	}
	return true
}

func TestSearchCompletenessAndOrder(t *testing.T) {
	s := NewSearcher(seededStore(t, corpus...), nil)

	for _, q := range []string{"attached", "tenet", "cattle", "eaten", "taco"} {
		got, err := s.Search(context.Background(), q)
		require.NoError(t, err)

		var want int
		for _, w := range corpus {
			if contains(q, w) {
				want++
				assert.Contains(t, got, w, "query %q", q)
			}
		}
		assert.Len(t, got, want, "query %q", q)

		for i := 1; i < len(got); i++ {
			prev, cur := got[i-1], got[i]
			if len(prev) == len(cur) {
				assert.Less(t, prev, cur, "query %q", q)
			} else {
				assert.Greater(t, len(prev), len(cur), "query %q", q)
			}
		}
	}
}

type countingFinder struct {
	calls []string
}

func (c *countingFinder) FindBySignature(ctx context.Context, sig string) ([]db.WordEntry, error) {
	c.calls = append(c.calls, sig)
	return nil, nil
}

func TestSearchLooksUpEachSubsetOnce(t *testing.T) {
	f := &countingFinder{}
	_, err := NewSearcher(f, nil).Search(context.Background(), "aaaa")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"aaa", "aaaa"}, f.calls)
}

func TestSearchSkipsSubsetsLongerThanMaxLength(t *testing.T) {
	f := &countingFinder{}
	_, err := NewSearcher(f, nil).Search(context.Background(), "abcdefghij")
	require.NoError(t, err)
	for _, sig := range f.calls {
		l := len(sig)
		assert.True(t, l >= lexicon.MinLength && l <= lexicon.MaxLength, sig)
	}
}

type failingFinder struct{ err error }

func (f failingFinder) FindBySignature(context.Context, string) ([]db.WordEntry, error) {
	return nil, f.err
}

func TestSearchStoreError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewSearcher(failingFinder{err: boom}, nil).Search(context.Background(), "eaten")
	assert.ErrorIs(t, err, boom)
}

func TestRollSingleCandidate(t *testing.T) {
	sampler := NewSampler(seededStore(t, corpus...), rand.New(rand.NewPCG(1, 2)))

	for range 20 {
		w, err := sampler.Roll(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, "eaten", w)
	}
}

func TestRollPicksOnlyRequestedLength(t *testing.T) {
	sampler := NewSampler(seededStore(t, corpus...), rand.New(rand.NewPCG(1, 2)))
	three := []string{"ate", "eat", "tea", "ten", "cat", "act"}

	seen := map[string]bool{}
	for range 200 {
		w, err := sampler.Roll(context.Background(), 3)
		require.NoError(t, err)
		assert.Contains(t, three, w)
		seen[w] = true
	}
	assert.Len(t, seen, len(three), "every word of the length is reachable")
}

func TestRollNoWordsOfLength(t *testing.T) {
	sampler := NewSampler(seededStore(t, corpus...), rand.New(rand.NewPCG(1, 2)))

	_, err := sampler.Roll(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNoWordsOfLength)
}
