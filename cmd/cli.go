// SPDX-License-Identifier: MIT

// Package cmd wires the earshot command line.
package cmd

import (
	"context"
	"fmt"

	"earshot/internal/analysis"
	"earshot/internal/config"
	"earshot/internal/log"
	"earshot/pkg/build"

	"github.com/spf13/cobra"
)

var logger = log.New("cli")

// options carries the loaded configuration and the global flags shared by
// every subcommand.
type options struct {
	configPath string
	verbose    bool
	logLevel   string
	window     string
	hopSize    int

	cfg *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	buildInfo := build.GetBuildFlags()
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "",
		"Path to "+config.FileName+" (default: search the working and user config directories)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false,
		"Show verbose output")
	flags.StringVar(&opts.logLevel, "log-level", "",
		"Log level: debug, info, warn or error")
	flags.StringVarP(&opts.window, "window", "w", "",
		"STFT window: hann, hamming, blackman, bartletthann, nuttall, ...")
	flags.IntVar(&opts.hopSize, "hop", 0,
		"Fixed hop size in samples (default: derived from clip length)")

	rootCmd.AddCommand(
		newAnalyzeCmd(opts),
		newCompareCmd(opts),
		newRecordCmd(opts),
		newDevicesCmd(opts),
		newServeCmd(opts),
	)
	return rootCmd
}

// load reads the configuration, then applies the flags the user set.
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Debug = o.verbose
	}
	if flags.Changed("log-level") {
		if _, ok := log.ParseLevel(o.logLevel); !ok {
			return fmt.Errorf("%w: unknown log level %q", analysis.ErrInvalidInput, o.logLevel)
		}
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("window") {
		w, err := analysis.ParseWindowFunc(o.window)
		if err != nil {
			return err
		}
		cfg.Analysis.Frame.Window = w
	}
	if flags.Changed("hop") {
		cfg.Analysis.Frame.HopSize = o.hopSize
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.SetLevel(cfg.Level())
	o.cfg = cfg
	logger.Debugf("configuration loaded (window %s, log level %s)", cfg.Analysis.Frame.Window, cfg.Level())
	return nil
}

// Execute runs the command line with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
