package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fewshot/internal/config"
	"github.com/kailas-cloud/fewshot/internal/db"
	dbRedis "github.com/kailas-cloud/fewshot/internal/db/redis"
	"github.com/kailas-cloud/fewshot/internal/domain"
	logpkg "github.com/kailas-cloud/fewshot/internal/logger"
	"github.com/kailas-cloud/fewshot/internal/metrics"
	budgetrepo "github.com/kailas-cloud/fewshot/internal/repository/budget"
	"github.com/kailas-cloud/fewshot/internal/repository/embcache"
	"github.com/kailas-cloud/fewshot/internal/repository/examplestore"
	"github.com/kailas-cloud/fewshot/internal/repository/leavestore"
	"github.com/kailas-cloud/fewshot/internal/repository/sqldb"
	"github.com/kailas-cloud/fewshot/internal/repository/statestore"
	"github.com/kailas-cloud/fewshot/internal/repository/vectorindex"
	openaiTransport "github.com/kailas-cloud/fewshot/internal/transport/openai"
	llmuc "github.com/kailas-cloud/fewshot/internal/usecase/llm"
	"github.com/kailas-cloud/fewshot/internal/usecase/prompt"
	researchuc "github.com/kailas-cloud/fewshot/internal/usecase/research"
)

// app holds what every subcommand shares: config, logger and the optional cache store.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
	store  db.Store
	budget llmuc.BudgetChecker
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	var (
		cfg config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load(opts.env)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(opts.env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	// Explicit registration, no init()
	metrics.RegisterLLMMetrics()

	a := &app{env: opts.env, cfg: cfg, logger: logger}
	if err := a.connectStore(ctx); err != nil {
		_ = logger.Sync()
		return nil, err
	}
	a.budget = a.newBudget(ctx)
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}

// connectStore opens the Redis/Valkey store when a cache driver is configured.
// Both drivers speak RESP and share one client.
func (a *app) connectStore(ctx context.Context) error {
	c := a.cfg.Cache
	if !c.Enabled() {
		return nil
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    c.Addrs,
		Username: c.Username,
		Password: c.Password,
		DB:       c.DB,
	})
	if err != nil {
		return fmt.Errorf("create %s store: %w", c.Driver, err)
	}
	if err := store.WaitForReady(ctx, time.Duration(c.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return fmt.Errorf("%s not ready: %w", c.Driver, err)
	}
	a.logger.Info("Connected to cache store",
		zap.String("driver", c.Driver),
		zap.Strings("addrs", c.Addrs),
	)
	a.store = store
	return nil
}

// newBudget returns a nil interface (not a typed nil pointer) when no limit is set.
func (a *app) newBudget(ctx context.Context) llmuc.BudgetChecker {
	b := a.cfg.LLM.Budget
	if b.DailyTokenLimit <= 0 && b.MonthlyTokenLimit <= 0 {
		return nil
	}

	tracker := llmuc.NewBudgetTracker(
		a.cfg.LLM.Provider, b.DailyTokenLimit, b.MonthlyTokenLimit,
		llmuc.ParseBudgetAction(b.Action), a.logger,
	)
	if a.store != nil {
		tracker.WithStore(ctx, budgetrepo.New(a.store, 0, 0))
	}
	return tracker
}

// newCompleter assembles the chat chain: OpenAI-compatible client -> Instrumented.
// Each application gets its own chain for its temperature; the base client is
// returned separately for health checks.
func (a *app) newCompleter(temperature float32) (domain.Completer, *openaiTransport.Completer) {
	c := a.cfg.LLM
	base := openaiTransport.NewCompleter(&openaiTransport.Config{
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Model:       c.Model,
		Temperature: temperature,
		MaxTokens:   c.MaxTokens,
		Provider:    c.Provider,
		Timeout:     time.Duration(c.TimeoutSec) * time.Second,
		Logger:      a.logger,
	})
	return llmuc.NewInstrumentedCompleter(base, c.Provider, c.Model, a.budget, a.logger), base
}

// newEmbedder assembles the embedding chain: OpenAI-compatible client -> Cached -> Instrumented.
func (a *app) newEmbedder() domain.Embedder {
	e := a.cfg.Embedding
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     e.APIKey,
		BaseURL:    e.BaseURL,
		Model:      e.Model,
		Dimensions: e.Dimensions,
		Provider:   e.Provider,
		Timeout:    time.Duration(a.cfg.LLM.TimeoutSec) * time.Second,
		Logger:     a.logger,
	})

	var embedder domain.Embedder = base
	if a.store != nil {
		embedder = embcache.New(base, a.store, e.Model, e.Dimensions, time.Duration(e.CacheTTL)*time.Second,
			metrics.EmbeddingCacheTotal, a.logger)
	}

	return llmuc.NewInstrumentedEmbedder(embedder, e.Provider, e.Model, a.budget, a.logger)
}

func (a *app) loadExamples() (*examplestore.Store, error) {
	store := examplestore.New(a.logger)
	if err := store.LoadFile(a.cfg.Examples.Path); err != nil {
		return nil, fmt.Errorf("load examples: %w", err)
	}
	a.logger.Info("Examples loaded",
		zap.String("path", a.cfg.Examples.Path),
		zap.Int("records", store.Len()),
		zap.Int("tags", len(store.DistinctTags())),
	)
	return store, nil
}

// newVectorIndex uses FT indexes in the cache store so they survive restarts;
// without a store it falls back to an in-process index.
func (a *app) newVectorIndex() researchuc.VectorIndex {
	if a.store == nil {
		return vectorindex.NewMemory()
	}
	return vectorindex.New(a.store)
}

// newStateStore returns a nil interface when no cache store is configured.
func (a *app) newStateStore() researchuc.StateStore {
	if a.store == nil {
		return nil
	}
	return statestore.New(a.store)
}

// openSQLDatabase returns nil when no sql driver is configured.
func (a *app) openSQLDatabase(ctx context.Context) (*sqldb.DB, error) {
	c := a.cfg.SQL
	if c.Driver == "" {
		return nil, nil
	}
	conn, err := sqldb.Open(ctx, sqldb.Config{
		Driver:       c.Driver,
		DSN:          c.DSN,
		Tables:       c.Tables,
		SampleRows:   c.SampleRows,
		QueryTimeout: time.Duration(c.QueryTimeoutSec) * time.Second,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open sql database: %w", err)
	}
	a.logger.Info("Connected to SQL database", zap.String("driver", c.Driver), zap.Strings("tables", c.Tables))
	return conn, nil
}

func (a *app) newAssembler(examples *examplestore.Store) *prompt.Assembler {
	return prompt.New(examples).
		WithHeader(a.cfg.Examples.Header).
		WithMaxExamples(a.cfg.Examples.MaxExamples)
}

func (a *app) newLeaveStore() (*leavestore.Store, error) {
	if a.cfg.Leave.SeedFile == "" {
		return leavestore.New(leavestore.DefaultSeed())
	}
	store, err := leavestore.NewFromFile(a.cfg.Leave.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("load leave seed: %w", err)
	}
	return store, nil
}
