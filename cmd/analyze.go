// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"strings"

	"earshot/internal/decode"
	"earshot/internal/pipeline"

	"github.com/spf13/cobra"
)

func newAnalyzeCmd(opts *options) *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze an audio file",
		Long: "Decode an audio file (" + strings.Join(decode.Extensions(), ", ") + "), run the spectral,\n" +
			"cadence and phonetic analyzers and print the integrated summary.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := analyzeFile(cmd, opts, args[0])
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), a, out)
		},
	}

	addOutputFlags(cmd, &out)
	return cmd
}

func addOutputFlags(cmd *cobra.Command, out *outputFlags) {
	cmd.Flags().BoolVar(&out.json, "json", false, "Print the full analysis as JSON")
	cmd.Flags().StringVarP(&out.dir, "output", "o", "", "Also write <name>.analysis.json into this directory")
	cmd.Flags().BoolVar(&out.browse, "tui", false, "Browse the report interactively")
	cmd.MarkFlagsMutuallyExclusive("json", "tui")
}

func analyzeFile(cmd *cobra.Command, opts *options, path string) (*pipeline.Analysis, error) {
	w, err := decode.File(path)
	if err != nil {
		return nil, err
	}
	a, err := pipeline.Run(cmd.Context(), w, opts.cfg.Analysis)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", path, err)
	}
	a.Source = path
	return a, nil
}
