package repl

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/japaniel/wordfilter/pkg/anagram"
	"github.com/japaniel/wordfilter/pkg/db"
	"github.com/japaniel/wordfilter/pkg/lexicon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newREPL(t *testing.T, words ...string) *REPL {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	store := db.NewStore(conn)
	for _, w := range words {
		_, err := store.InsertWord(ctx, db.WordEntry{Word: w, Signature: lexicon.Signature(w), Length: lexicon.Length(w)})
		require.NoError(t, err)
	}
	return New(
		anagram.NewSearcher(store, zap.NewNop()),
		anagram.NewSampler(store, rand.New(rand.NewPCG(7, 7))),
		zap.NewNop(),
	)
}

func run(t *testing.T, r *REPL, input string) []string {
	t.Helper()
	var out strings.Builder
	require.NoError(t, r.Run(context.Background(), strings.NewReader(input), &out))
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Equal(t, DefaultPrompt, lines[0])
	return lines[1:]
}

func TestRunSearchesWords(t *testing.T) {
	r := newREPL(t, "eaten", "ate", "eat", "tea", "ten", "cat")

	got := run(t, r, "eaten\n")
	assert.Equal(t, []string{"eaten [aeent]", "eaten", "ate", "eat", "tea", "ten"}, got)
}

func TestRunRollsIntegers(t *testing.T) {
	r := newREPL(t, "eaten", "ate", "eat", "tea", "ten", "cat")

	got := run(t, r, "5\n")
	assert.Equal(t, []string{"eaten [aeent]", "eaten", "ate", "eat", "tea", "ten"}, got)
}

func TestRunSkipsBlankAndUnmatchedInput(t *testing.T) {
	r := newREPL(t, "cat")

	got := run(t, r, "\n   \nxyz\n9\n4\nabcdefghijklmnopqrstuvwxyz\ncat\n")
	assert.Equal(t, []string{"xyz [xyz]", "cat [act]", "cat"}, got)
}

func TestRunStopsOnCancel(t *testing.T) {
	r := newREPL(t, "cat")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out strings.Builder
	err := r.Run(ctx, strings.NewReader("cat\n"), &out)
	assert.ErrorIs(t, err, context.Canceled)
}

type brokenSearcher struct{}

func (brokenSearcher) Search(context.Context, string) ([]string, error) {
	return nil, errors.New("database is locked")
}

func TestRunWithoutPrompt(t *testing.T) {
	r := newREPL(t, "cat")
	r.Prompt = ""

	var out strings.Builder
	require.NoError(t, r.Run(context.Background(), strings.NewReader("act\n"), &out))
	assert.Equal(t, "act [act]\ncat\n", out.String())
}

func TestRunReturnsStoreErrors(t *testing.T) {
	r := New(brokenSearcher{}, nil, nil)

	var out strings.Builder
	err := r.Run(context.Background(), strings.NewReader("cat\n"), &out)
	assert.ErrorContains(t, err, "database is locked")
}
