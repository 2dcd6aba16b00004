package main

import (
	"fmt"

	"github.com/spf13/cobra"

	postuc "github.com/kailas-cloud/fewshot/internal/usecase/post"
)

func newPromptCmd(opts *rootOptions) *cobra.Command {
	var req postuc.Request
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the few-shot prompt for a topic without calling the model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			examples, err := a.loadExamples()
			if err != nil {
				return err
			}
			p, err := postuc.New(examples, a.newAssembler(examples), nil).Preview(req)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), p.Text)
			return err
		},
	}

	cmd.Flags().StringVar(&req.Topic, "topic", "", "Post topic")
	cmd.Flags().StringVar(&req.Length, "length", "Medium", "Length class: Short, Medium, Long")
	cmd.Flags().StringVar(&req.Tag, "tag", "", "Tag whose examples steer the style")
	cmd.Flags().IntVar(&req.MaxExamples, "max-examples", 0, "Examples to include (default from config)")
	_ = cmd.MarkFlagRequired("topic")
	_ = cmd.MarkFlagRequired("tag")
	return cmd
}
