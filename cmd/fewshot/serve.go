package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/fewshot/internal/config"
	chiTransport "github.com/kailas-cloud/fewshot/internal/transport/chi"
	"github.com/kailas-cloud/fewshot/internal/transport/fetch"
	mcpTransport "github.com/kailas-cloud/fewshot/internal/transport/mcp"
	"github.com/kailas-cloud/fewshot/internal/usecase/health"
	leaveuc "github.com/kailas-cloud/fewshot/internal/usecase/leave"
	postuc "github.com/kailas-cloud/fewshot/internal/usecase/post"
	researchuc "github.com/kailas-cloud/fewshot/internal/usecase/research"
	restaurantuc "github.com/kailas-cloud/fewshot/internal/usecase/restaurant"
	sqlassistuc "github.com/kailas-cloud/fewshot/internal/usecase/sqlassist"
	"github.com/kailas-cloud/fewshot/internal/version"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close()
	logger, cfg := a.logger, a.cfg

	logger.Info("Starting fewshot API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.String("sql_driver", cfg.SQL.Driver),
	)

	examples, err := a.loadExamples()
	if err != nil {
		return err
	}
	leaveStore, err := a.newLeaveStore()
	if err != nil {
		return err
	}

	temps := cfg.LLM.Temperatures
	postCompleter, baseCompleter := a.newCompleter(*temps.Post)
	restaurantCompleter, _ := a.newCompleter(*temps.Restaurant)
	researchCompleter, _ := a.newCompleter(*temps.Research)
	sqlCompleter, _ := a.newCompleter(*temps.SQL)
	embedder := a.newEmbedder()
	index := a.newVectorIndex()

	postSvc := postuc.New(examples, a.newAssembler(examples), postCompleter)
	restaurantSvc := restaurantuc.New(restaurantCompleter)
	researchSvc := researchuc.New(
		fetch.New(time.Duration(cfg.Research.FetchTimeoutSec)*time.Second, logger),
		embedder, researchCompleter, index,
		researchuc.Config{
			ChunkSize:    cfg.Research.ChunkSize,
			ChunkOverlap: cfg.Research.ChunkOverlap,
			TopK:         cfg.Research.TopK,
		},
		logger,
	)
	if state := a.newStateStore(); state != nil {
		researchSvc.WithStateStore(state)
		if err := researchSvc.Restore(ctx); err != nil {
			logger.Warn("Failed to restore research index", zap.Error(err))
		}
	}

	sqlDB, err := a.openSQLDatabase(ctx)
	if err != nil {
		return err
	}
	// Pass a nil interface, not a typed nil, when no database is configured.
	var database sqlassistuc.Database
	dialect := sqlassistuc.DefaultDialect
	if sqlDB != nil {
		defer func() { _ = sqlDB.Close() }()
		database = sqlDB
		if cfg.SQL.Driver == config.SQLDriverSQLite {
			dialect = "SQLite"
		}
	}
	sqlSvc := sqlassistuc.New(embedder, sqlCompleter, index, database, sqlassistuc.DefaultExamples,
		sqlassistuc.Config{TopK: cfg.SQL.TopK, Dialect: dialect}, logger)

	leaveSvc := leaveuc.New(leaveStore, logger)

	// Pass a nil interface, not a typed nil, when no cache is configured.
	var cachePinger health.CachePinger
	if a.store != nil {
		cachePinger = a.store
	}
	healthSvc := health.New(examples, baseCompleter, cachePinger)

	routerCfg := chiTransport.RouterConfig{APIKeys: cfg.Auth.APIKeys}
	if cfg.HTTP.MountMCP {
		mcpSrv, err := mcpTransport.NewServer(leaveSvc, version.Version, logger)
		if err != nil {
			return fmt.Errorf("create mcp server: %w", err)
		}
		routerCfg.MCP = mcpSrv.Handler()
	}

	server := chiTransport.NewServer(
		postSvc, examples, restaurantSvc, researchSvc, sqlSvc, leaveSvc, healthSvc, logger,
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           chiTransport.NewRouter(server, routerCfg),
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
