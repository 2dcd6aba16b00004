package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpTransport "github.com/kailas-cloud/fewshot/internal/transport/mcp"
	leaveuc "github.com/kailas-cloud/fewshot/internal/usecase/leave"
	"github.com/kailas-cloud/fewshot/internal/version"
)

func newLeaveMCPCmd(opts *rootOptions) *cobra.Command {
	var httpAddr string
	cmd := &cobra.Command{
		Use:   "leave-mcp",
		Short: "Run the leave manager MCP server",
		Long:  "Serves the leave manager tools over stdio, or over streamable HTTP when --http is set.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			store, err := a.newLeaveStore()
			if err != nil {
				return err
			}
			srv, err := mcpTransport.NewServer(leaveuc.New(store, a.logger), version.Version, a.logger)
			if err != nil {
				return fmt.Errorf("create mcp server: %w", err)
			}

			if httpAddr != "" {
				return srv.RunHTTP(ctx, httpAddr)
			}
			// stdout carries the protocol; logs go to stderr
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http", "", "Serve streamable HTTP on this address instead of stdio (e.g. :8090)")
	return cmd
}
