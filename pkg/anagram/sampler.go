package anagram

import (
	"context"
	"errors"
	"fmt"

	"github.com/japaniel/wordfilter/pkg/db"
)

// ErrNoWordsOfLength is returned by Roll when the store holds no word of the
// requested length.
var ErrNoWordsOfLength = errors.New("no words of requested length")

// Source supplies uniform integers in [0, n). *rand.Rand from math/rand/v2
// satisfies it.
type Source interface {
	IntN(n int) int
}

// LengthFinder lists the stored words of one length.
type LengthFinder interface {
	FindByLength(ctx context.Context, length int) ([]db.WordEntry, error)
}

// Sampler draws random words of a given length.
type Sampler struct {
	Store  LengthFinder
	Source Source
}

// NewSampler creates a Sampler drawing from src.
func NewSampler(store LengthFinder, src Source) *Sampler {
	return &Sampler{Store: store, Source: src}
}

// Roll picks one stored word of exactly length letters, uniformly.
func (s *Sampler) Roll(ctx context.Context, length int) (string, error) {
	words, err := s.Store.FindByLength(ctx, length)
	if err != nil {
		return "", err
	}
	if len(words) == 0 {
		return "", fmt.Errorf("%w: %d", ErrNoWordsOfLength, length)
	}
	return words[s.Source.IntN(len(words))].Word, nil
}
