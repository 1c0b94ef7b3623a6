// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"earshot/cmd"
	"earshot/internal/log"
	"earshot/pkg/build"
)

// main is the entry point for the earshot command line.
//
// 1. Startup: resolve build information and install signal handling.
// 2. Run: cobra dispatches to a subcommand, which loads configuration,
//    decodes or captures audio and runs the analysis pipeline.
// 3. Shutdown: SIGINT/SIGTERM cancel the context, which stops captures,
//    in-flight analyses and the serve loop.
func main() {
	// Development builds run without ldflags and keep the default build info.
	if err := build.Initialize(); err != nil {
		log.Debugf("build info: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		stop()
		log.Fatalf("%v", err)
	}
}
