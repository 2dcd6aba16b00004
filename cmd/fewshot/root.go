package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/fewshot/internal/config"
	"github.com/kailas-cloud/fewshot/internal/version"
)

type rootOptions struct {
	env        string
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "fewshot",
		Short:         "Few-shot prompting service and tools",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "Environment: local, dev, docker, prod")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file path (default config/<env>.yaml)")

	root.AddCommand(
		newServeCmd(opts),
		newEnrichCmd(opts),
		newLeaveMCPCmd(opts),
		newPromptCmd(opts),
	)
	return root
}
