package ingest

import (
	"context"
	"fmt"

	"github.com/japaniel/wordfilter/pkg/db"
	"github.com/japaniel/wordfilter/pkg/dictionary"
	"github.com/japaniel/wordfilter/pkg/lexicon"
	"go.uber.org/zap"
)

// Stage names used for checkpoints.
const (
	StageIngest   = "ingest"
	StageBackfill = "backfill"
)

// Candidates is a lazy, finite sequence of raw input lines.
// *bufio.Scanner satisfies it.
type Candidates interface {
	Scan() bool
	Text() string
	Err() error
}

// Lookuper fetches lexical data for one word. It returns an error only when
// the context ends; service failures come back as a result status.
type Lookuper interface {
	Lookup(ctx context.Context, word string) (dictionary.LookupResult, error)
}

// WordStore is the slice of the corpus store the pipeline writes through.
type WordStore interface {
	Exists(ctx context.Context, word string) (bool, error)
	InsertWord(ctx context.Context, e db.WordEntry) (int64, error)
	InsertDefinition(ctx context.Context, d db.DefinitionEntry) (int64, error)
	AllWords(ctx context.Context) ([]db.WordEntry, error)
	HasDefinitions(ctx context.Context, wordID int64) (bool, error)
	SaveCheckpoint(ctx context.Context, stage, nextWord string) error
	Checkpoint(ctx context.Context, stage string) (db.Checkpoint, bool, error)
	ClearCheckpoint(ctx context.Context, stage string) error
}

// Ingester turns a candidate word list into enriched corpus entries.
type Ingester struct {
	Store  WordStore
	Client Lookuper
	// Quota gates lookups; nil means unlimited.
	Quota *Quota
	// Logger is used for run summaries and per-word detail. nil means no logging.
	Logger *zap.Logger
}

// NewIngester creates a new Ingester.
func NewIngester(store WordStore, client Lookuper, quota *Quota, logger *zap.Logger) *Ingester {
	return &Ingester{
		Store:  store,
		Client: client,
		Quota:  quota,
		Logger: logger,
	}
}

// Report summarizes one ingestion run.
type Report struct {
	Read        int // candidate lines consumed
	Rejected    int // failed the case or length filter
	Existing    int // already in the corpus
	LookedUp    int // lookups issued
	Stored      int // new words persisted
	Definitions int // definition rows persisted
	Unavailable int // lookups that yielded nothing to store

	// Halted is set when the quota stopped the run; NextWord is the
	// candidate that would have been looked up next.
	Halted   bool
	NextWord string
}

// Ingest consumes candidates in order, storing each new, well-formed word the
// lookup service knows. It stops early, without error, once the quota is
// exhausted; rerunning over the same source resumes at the same word because
// stored words are skipped.
func (ig *Ingester) Ingest(ctx context.Context, candidates Candidates) (Report, error) {
	logger := loggerOrNop(ig.Logger)
	quota := ig.Quota
	if quota == nil {
		quota = NewQuota(nil)
	}
	announceCheckpoint(ctx, ig.Store, StageIngest, logger)

	var rep Report
	for candidates.Scan() {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Read++

		word, ok := lexicon.Accept(candidates.Text())
		if !ok {
			rep.Rejected++
			continue
		}

		exists, err := ig.Store.Exists(ctx, word)
		if err != nil {
			return rep, err
		}
		if exists {
			rep.Existing++
			continue
		}

		if quota.Exhausted() {
			rep.Halted = true
			rep.NextWord = word
			logger.Warn("quota exhausted, halting ingest",
				zap.String("next_word", word),
				zap.Int("quota_remaining", quota.State().Remaining),
				zap.Int("stored", rep.Stored))
			return rep, ig.Store.SaveCheckpoint(ctx, StageIngest, word)
		}

		res, err := ig.Client.Lookup(ctx, word)
		if err != nil {
			return rep, err
		}
		quota.Observe(res)
		rep.LookedUp++

		if res.Status != dictionary.StatusFound || len(res.Senses) == 0 {
			rep.Unavailable++
			logger.Debug("no enrichment available", zap.String("word", word), zap.Stringer("result", res))
			continue
		}

		id, err := ig.Store.InsertWord(ctx, db.WordEntry{
			Word:      word,
			Signature: lexicon.Signature(word),
			Length:    lexicon.Length(word),
			Frequency: res.Frequency,
		})
		if err != nil {
			return rep, err
		}
		rep.Stored++

		n, err := insertSenses(ctx, ig.Store, id, res.Senses)
		rep.Definitions += n
		if err != nil {
			return rep, err
		}
		logger.Debug("stored word",
			zap.String("word", word),
			zap.Int64("id", id),
			zap.Int("senses", n),
			zap.Int("quota_remaining", res.QuotaRemaining))
	}
	if err := candidates.Err(); err != nil {
		return rep, fmt.Errorf("read candidates: %w", err)
	}

	if err := ig.Store.ClearCheckpoint(ctx, StageIngest); err != nil {
		return rep, err
	}
	logger.Info("ingest complete",
		zap.Int("read", rep.Read),
		zap.Int("rejected", rep.Rejected),
		zap.Int("existing", rep.Existing),
		zap.Int("looked_up", rep.LookedUp),
		zap.Int("stored", rep.Stored),
		zap.Int("unavailable", rep.Unavailable))
	return rep, nil
}

// insertSenses writes one definition row per sense, in response order.
func insertSenses(ctx context.Context, store WordStore, wordID int64, senses []dictionary.Sense) (int, error) {
	for i, s := range senses {
		if _, err := store.InsertDefinition(ctx, s.Entry(wordID)); err != nil {
			return i, err
		}
	}
	return len(senses), nil
}

// announceCheckpoint logs where the previous run of stage halted, if it did.
func announceCheckpoint(ctx context.Context, store WordStore, stage string, logger *zap.Logger) {
	cp, ok, err := store.Checkpoint(ctx, stage)
	if err != nil {
		logger.Warn("failed to read checkpoint", zap.String("stage", stage), zap.Error(err))
		return
	}
	if ok {
		logger.Info("previous run halted early, resuming",
			zap.String("stage", stage),
			zap.String("next_word", cp.NextWord),
			zap.Time("halted_at", cp.UpdatedAt))
	}
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
