package ingest

import (
	"context"

	"github.com/japaniel/wordfilter/pkg/dictionary"
	"go.uber.org/zap"
)

// Backfiller completes metadata for stored words that have no definitions,
// e.g. after a crash between a word insert and its definition inserts.
type Backfiller struct {
	Store  WordStore
	Client Lookuper
	Quota  *Quota
	Logger *zap.Logger
}

// NewBackfiller creates a new Backfiller.
func NewBackfiller(store WordStore, client Lookuper, quota *Quota, logger *zap.Logger) *Backfiller {
	return &Backfiller{
		Store:  store,
		Client: client,
		Quota:  quota,
		Logger: logger,
	}
}

// BackfillReport summarizes one backfill pass.
type BackfillReport struct {
	Scanned     int // stored words visited
	Complete    int // already had definitions
	LookedUp    int
	Filled      int // words that gained definitions
	Definitions int
	Unavailable int

	Halted   bool
	NextWord string
}

// Backfill visits every stored word in id order and adds definitions to those
// lacking any. Word rows are never modified.
func (b *Backfiller) Backfill(ctx context.Context) (BackfillReport, error) {
	logger := loggerOrNop(b.Logger)
	quota := b.Quota
	if quota == nil {
		quota = NewQuota(nil)
	}
	announceCheckpoint(ctx, b.Store, StageBackfill, logger)

	var rep BackfillReport
	// Load the word list up front so no read cursor is open while inserting.
	words, err := b.Store.AllWords(ctx)
	if err != nil {
		return rep, err
	}

	for _, w := range words {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Scanned++

		has, err := b.Store.HasDefinitions(ctx, w.ID)
		if err != nil {
			return rep, err
		}
		if has {
			rep.Complete++
			continue
		}

		if quota.Exhausted() {
			rep.Halted = true
			rep.NextWord = w.Word
			logger.Warn("quota exhausted, halting backfill",
				zap.String("next_word", w.Word),
				zap.Int("quota_remaining", quota.State().Remaining),
				zap.Int("filled", rep.Filled))
			return rep, b.Store.SaveCheckpoint(ctx, StageBackfill, w.Word)
		}

		res, err := b.Client.Lookup(ctx, w.Word)
		if err != nil {
			return rep, err
		}
		quota.Observe(res)
		rep.LookedUp++

		if res.Status != dictionary.StatusFound || len(res.Senses) == 0 {
			rep.Unavailable++
			logger.Debug("no enrichment available", zap.String("word", w.Word), zap.Stringer("result", res))
			continue
		}

		n, err := insertSenses(ctx, b.Store, w.ID, res.Senses)
		rep.Definitions += n
		if err != nil {
			return rep, err
		}
		rep.Filled++
	}

	if err := b.Store.ClearCheckpoint(ctx, StageBackfill); err != nil {
		return rep, err
	}
	logger.Info("backfill complete",
		zap.Int("scanned", rep.Scanned),
		zap.Int("complete", rep.Complete),
		zap.Int("looked_up", rep.LookedUp),
		zap.Int("filled", rep.Filled),
		zap.Int("unavailable", rep.Unavailable))
	return rep, nil
}
