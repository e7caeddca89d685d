package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/japaniel/wordfilter/pkg/anagram"
	"github.com/japaniel/wordfilter/pkg/config"
	"github.com/japaniel/wordfilter/pkg/db"
	"github.com/japaniel/wordfilter/pkg/dictionary"
	"github.com/japaniel/wordfilter/pkg/ingest"
	"github.com/japaniel/wordfilter/pkg/logging"
	"github.com/japaniel/wordfilter/pkg/source"
	"go.uber.org/zap"
)

// articleTimeout bounds a single article download.
const articleTimeout = 30 * time.Second

// app holds flag values and the resources opened for one command.
type app struct {
	configPath   string
	dbPath       string
	wordListPath string
	articleURL   string
	debug        bool

	cfg    *config.Config
	logger *zap.Logger
	store  *db.Store
}

// run loads config, opens the store, calls fn and releases everything.
func (a *app) run(ctx context.Context, fn func(ctx context.Context) error) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DatabasePath = a.dbPath
	}
	if a.wordListPath != "" {
		cfg.WordListPath = a.wordListPath
	}
	a.cfg = cfg

	base, err := logging.New(cfg.Env, a.debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer base.Sync()
	logger := base.With(zap.String("run_id", uuid.NewString()))
	a.logger = logger

	conn, err := db.Open(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open database", zap.String("path", cfg.DatabasePath), zap.Error(err))
		return err
	}
	defer conn.Close()
	a.store = db.NewStore(conn)
	logger.Debug("database ready", zap.String("path", cfg.DatabasePath))

	return fn(ctx)
}

func (a *app) client() *dictionary.Client {
	d := a.cfg.Dictionary
	if d.APIKey == "" {
		a.logger.Warn("WORDSAPI_KEY is not set; lookups will be rejected by the service")
	}
	return dictionary.NewClient(dictionary.Options{
		BaseURL:           d.BaseURL,
		Host:              d.Host,
		APIKey:            d.APIKey,
		QuotaHeader:       d.QuotaHeader,
		Timeout:           d.Timeout,
		RequestsPerSecond: d.RequestsPerSecond,
	}, a.logger)
}

func (a *app) quota() (*ingest.Quota, error) {
	policy, err := ingest.NewPolicy(a.cfg.Quota.Mode, a.cfg.Quota.Min())
	if err != nil {
		return nil, err
	}
	return ingest.NewQuota(policy), nil
}

// candidates opens the article at --url when given, otherwise the word list.
// The returned close func is never nil.
func (a *app) candidates(ctx context.Context) (ingest.Candidates, func() error, error) {
	noop := func() error { return nil }
	if a.articleURL != "" {
		a.logger.Info("fetching article", zap.String("url", a.articleURL))
		article, err := source.FetchArticle(ctx, &http.Client{Timeout: articleTimeout}, a.articleURL)
		if err != nil {
			return nil, noop, err
		}
		a.logger.Info("article extracted",
			zap.String("title", article.Title),
			zap.Int("chars", len(article.Text)))
		return article.Candidates(), noop, nil
	}

	wl, err := source.OpenWordList(a.cfg.WordListPath)
	if err != nil {
		return nil, noop, fmt.Errorf("open word list: %w", err)
	}
	if wl.Missing {
		a.logger.Warn("word list not found, nothing to ingest", zap.String("path", wl.Path))
	}
	return wl, wl.Close, nil
}

// pipeline runs ingestion (unless skipIngest) then backfill, sharing one
// quota so a halt in ingestion also stops the backfill.
func (a *app) pipeline(ctx context.Context, out io.Writer, skipIngest bool) error {
	quota, err := a.quota()
	if err != nil {
		return err
	}
	client := a.client()

	if !skipIngest {
		cands, closeFn, err := a.candidates(ctx)
		if err != nil {
			return err
		}
		rep, err := ingest.NewIngester(a.store, client, quota, a.logger).Ingest(ctx, cands)
		closeFn()
		if err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}
		fmt.Fprintf(out, "Ingest: read %d, stored %d words (%d definitions), %d unavailable.\n",
			rep.Read, rep.Stored, rep.Definitions, rep.Unavailable)
		if rep.Halted {
			fmt.Fprintf(out, "Ingest halted on quota; next word %q.\n", rep.NextWord)
		}
	}

	brep, err := ingest.NewBackfiller(a.store, client, quota, a.logger).Backfill(ctx)
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}
	fmt.Fprintf(out, "Backfill: filled %d of %d incomplete words.\n", brep.Filled, brep.Scanned-brep.Complete)
	if brep.Halted {
		fmt.Fprintf(out, "Backfill halted on quota; next word %q.\n", brep.NextWord)
	}
	return nil
}

func (a *app) searcher() *anagram.Searcher {
	return anagram.NewSearcher(a.store, a.logger)
}

func (a *app) sampler() *anagram.Sampler {
	return anagram.NewSampler(a.store, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}
