// Package mcp exposes the leave manager as a Model Context Protocol server.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	domleave "github.com/kailas-cloud/fewshot/internal/domain/leave"
)

// LeaveService is the leave use case consumed by the tools.
type LeaveService interface {
	Account(ctx context.Context, employeeID string) (domleave.Account, error)
	Apply(ctx context.Context, employeeID string, dates []string) (domleave.Account, error)
}

// Server is the leave manager MCP server.
type Server struct {
	leave  LeaveService
	server *mcp.Server
	logger *zap.Logger
}

// NewServer creates the server and registers its tools and resources.
func NewServer(leave LeaveService, version string, logger *zap.Logger) (*Server, error) {
	if leave == nil {
		return nil, errors.New("leave service is required")
	}

	s := &Server{
		leave:  leave,
		server: mcp.NewServer(&mcp.Implementation{Name: "LeaveManager", Version: version}, nil),
		logger: logger,
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}

// Handler returns a streamable HTTP handler for mounting on a router.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("MCP HTTP server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("mcp http: %w", err)
	}
	return nil
}
