package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	enrichuc "github.com/kailas-cloud/fewshot/internal/usecase/enrich"
)

func newEnrichCmd(opts *rootOptions) *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Extract metadata and unify tags for a raw post dataset",
		Long: "Reads a JSON array of raw posts, asks the model for line count, tags and\n" +
			"primary category of each, unifies the tag vocabulary and writes the result.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			f, err := os.Open(filepath.Clean(in))
			if err != nil {
				return fmt.Errorf("open raw posts: %w", err)
			}
			raw, err := enrichuc.ReadRawPosts(f)
			_ = f.Close()
			if err != nil {
				return fmt.Errorf("read raw posts %s: %w", in, err)
			}

			completer, _ := a.newCompleter(*a.cfg.LLM.Temperatures.Enrich)
			posts, err := enrichuc.New(completer, a.logger).Process(ctx, raw)
			if err != nil {
				return fmt.Errorf("enrich: %w", err)
			}

			// Write to a sibling temp file first so a failed run never truncates out.
			tmp, err := os.CreateTemp(filepath.Dir(out), ".enrich-*.json")
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer func() { _ = os.Remove(tmp.Name()) }()
			if err := enrichuc.WriteEnrichedPosts(tmp, posts); err != nil {
				_ = tmp.Close()
				return err
			}
			if err := tmp.Close(); err != nil {
				return fmt.Errorf("close output: %w", err)
			}
			if err := os.Rename(tmp.Name(), out); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			a.logger.Info("Dataset enriched", zap.Int("posts", len(posts)), zap.String("out", out))
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "data/raw_posts.json", "Raw posts JSON file")
	cmd.Flags().StringVar(&out, "out", "data/processed_posts.json", "Enriched posts JSON file")
	return cmd
}
