// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"

	"earshot/internal/analysis"
	"earshot/internal/decode"
	"earshot/internal/pipeline"
	"earshot/internal/tui"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newCompareCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "compare <first> <second>",
		Short: "Analyze two audio files and contrast their spectral profiles",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var first, second analysis.Waveform
			var g errgroup.Group
			g.Go(func() (err error) {
				first, err = decode.File(args[0])
				return err
			})
			g.Go(func() (err error) {
				second, err = decode.File(args[1])
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			c, err := pipeline.Compare(cmd.Context(), first, second, opts.cfg.Analysis)
			if err != nil {
				return err
			}
			c.First.Source, c.Second.Source = args[0], args[1]

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), c)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tui.RenderComparison(c))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print both analyses and the comparison as JSON")
	return cmd
}
