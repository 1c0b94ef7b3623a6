// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"

	"earshot/internal/pipeline"
	"earshot/internal/transport"
	"earshot/internal/transport/udp"

	"github.com/spf13/cobra"
)

type serveFlags struct {
	addr   string
	udp    bool
	target string
	loop   bool
	record bool
}

// publishers opens the WebSocket server and, when enabled, the UDP timeline
// replay. The returned transport closes all of them.
func publishers(opts *options, sf serveFlags) (transport.Multi, *transport.WebSocketTransport, error) {
	ws := transport.NewWebSocketTransport(opts.cfg.Transport.WebSocketAddress)
	if err := ws.Start(); err != nil {
		_ = ws.Close()
		return nil, nil, err
	}
	out := transport.Multi{ws}

	if opts.cfg.Transport.UDPEnabled {
		sender, err := udp.NewUDPSender(opts.cfg.Transport.UDPTargetAddress)
		if err != nil {
			_ = out.Close()
			return nil, nil, err
		}
		pub, err := udp.NewTimelinePublisher(opts.cfg.Transport.UDPSendInterval, sender, sf.loop)
		if err != nil {
			_ = sender.Close()
			_ = out.Close()
			return nil, nil, err
		}
		pub.Start()
		// Stop the replay before closing its socket.
		out = append(out, pub, senderCloser{sender})
	}
	return out, ws, nil
}

// senderCloser adapts a UDPSender to Transport so Multi can close it.
type senderCloser struct{ *udp.UDPSender }

func (senderCloser) Send(any) error { return nil }

func newServeCmd(opts *options) *cobra.Command {
	var sf serveFlags
	var cf captureFlags

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Analyze a file or live captures and publish the results over WebSocket and UDP",
		Long: "Serve the latest analysis on ws://<addr>/ws and http://<addr>/latest until interrupted.\n" +
			"With --udp the per-frame timelines are also replayed as binary packets.\n" +
			"With --record, clips are captured and published one after another.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr := &opts.cfg.Transport
			flags := cmd.Flags()
			if flags.Changed("addr") {
				tr.WebSocketAddress = sf.addr
			}
			if flags.Changed("udp") {
				tr.UDPEnabled = sf.udp
			}
			if flags.Changed("udp-target") {
				tr.UDPTargetAddress = sf.target
			}
			if len(args) == 0 && !sf.record {
				return fmt.Errorf("serve needs a file or --record")
			}
			if sf.record {
				if err := applyCaptureFlags(cmd, opts, cf); err != nil {
					return err
				}
			} else if err := opts.cfg.Validate(); err != nil {
				return err
			}

			out, ws, err := publishers(opts, sf)
			if err != nil {
				return err
			}
			defer out.Close()

			ctx := cmd.Context()
			if len(args) == 1 {
				a, err := analyzeFile(cmd, opts, args[0])
				if err != nil {
					return err
				}
				if err := publish(out, a); err != nil {
					return err
				}
			}

			for sf.record && ctx.Err() == nil {
				a, err := captureClip(cmd, opts)
				if err != nil {
					if ctx.Err() != nil {
						break
					}
					return err
				}
				if err := publish(out, a); err != nil {
					return err
				}
			}

			logger.Infof("serving on ws://%s/ws, press Ctrl+C to stop", ws.Addr())
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&sf.addr, "addr", "", "WebSocket listen address (default transport.websocket_address)")
	cmd.Flags().BoolVar(&sf.udp, "udp", false, "Replay timelines over UDP")
	cmd.Flags().StringVar(&sf.target, "udp-target", "", "host:port receiving UDP packets (default transport.udp_target_address)")
	cmd.Flags().BoolVar(&sf.loop, "loop", false, "Restart the UDP replay after the last frame")
	cmd.Flags().BoolVar(&sf.record, "record", false, "Publish live captures instead of a single file")
	addCaptureFlags(cmd, &cf)
	return cmd
}

func publish(out transport.Transport, a *pipeline.Analysis) error {
	if err := out.Send(a); err != nil {
		return fmt.Errorf("publishing %s: %w", a.Source, err)
	}
	logger.Infof("published %s (%s arc)", a.Source, arcName(a))
	return nil
}

func arcName(a *pipeline.Analysis) string {
	if e := a.Summary.Emotional; e != nil {
		return e.ArcType.String()
	}
	return "unknown"
}
