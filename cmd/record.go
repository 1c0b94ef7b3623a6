// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"time"

	"earshot/internal/audio"
	"earshot/internal/pipeline"
	"earshot/internal/tui"

	"github.com/spf13/cobra"
)

type captureFlags struct {
	device     int
	sampleRate float64
	duration   time.Duration
	save       bool
	pick       bool
}

func addCaptureFlags(cmd *cobra.Command, cf *captureFlags) {
	cmd.Flags().IntVarP(&cf.device, "device", "d", -1,
		"Input device ID. Use the 'devices' command to see available devices.")
	cmd.Flags().Float64VarP(&cf.sampleRate, "sample-rate", "s", 0,
		"Sample rate, measured in Hertz (Hz)")
	cmd.Flags().DurationVarP(&cf.duration, "duration", "t", 0,
		"Length of the clip to capture")
	cmd.Flags().BoolVar(&cf.save, "save", false,
		"Keep the clip as a WAV file in capture.output_dir")
	cmd.Flags().BoolVar(&cf.pick, "pick", false,
		"Choose the input device interactively")
}

// applyCaptureFlags copies the capture flags the user set into the config.
func applyCaptureFlags(cmd *cobra.Command, opts *options, cf captureFlags) error {
	c := &opts.cfg.Capture
	flags := cmd.Flags()
	if flags.Changed("device") {
		c.InputDevice = cf.device
	}
	if flags.Changed("sample-rate") {
		c.SampleRate = cf.sampleRate
	}
	if flags.Changed("duration") {
		c.Duration = cf.duration
	}
	if flags.Changed("save") {
		c.Save = cf.save
	}

	if cf.pick {
		sel, ok, err := tui.StartDevicePicker(loadDevices)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no input device selected")
		}
		c.InputDevice, c.SampleRate = sel.DeviceID, sel.SampleRate
	}
	return opts.cfg.Validate()
}

// captureClip records one clip and saves it when configured.
func captureClip(cmd *cobra.Command, opts *options) (*pipeline.Analysis, error) {
	c := opts.cfg.Capture
	if c.GateThreshold > 0 {
		logger.Infof("waiting for input above %.3f, then recording %s", c.GateThreshold, c.Duration)
	} else {
		logger.Infof("recording %s", c.Duration)
	}

	w, err := audio.Capture(cmd.Context(), c)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}

	source := "capture"
	if c.Save {
		path := audio.RecordingPath(c.OutputDir, time.Now())
		if err := audio.SaveWAV(path, w, c.BitDepth); err != nil {
			return nil, err
		}
		source = path
	}

	a, err := pipeline.Run(cmd.Context(), w, opts.cfg.Analysis)
	if err != nil {
		return nil, err
	}
	a.Source = source
	return a, nil
}

func newRecordCmd(opts *options) *cobra.Command {
	var (
		cf  captureFlags
		out outputFlags
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Capture a clip from an input device and analyze it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyCaptureFlags(cmd, opts, cf); err != nil {
				return err
			}
			a, err := captureClip(cmd, opts)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), a, out)
		},
	}

	addCaptureFlags(cmd, &cf)
	addOutputFlags(cmd, &out)
	return cmd
}

// loadDevices lists host devices inside its own PortAudio session.
func loadDevices() ([]audio.Device, error) {
	if err := audio.Initialize(); err != nil {
		return nil, err
	}
	defer audio.Terminate()
	return audio.HostDevices()
}
