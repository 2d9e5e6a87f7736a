package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"audiofx/cmd"
	applog "audiofx/internal/log"
	"audiofx/pkg/build"
)

// main is the entry point for the effect engine.
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Configure runtime settings
//   - Parse command line arguments and configuration
//
// 2. Streaming Phase (Hot Path):
//   - Deliver frames from the input through the effect chain
//   - Play, record and publish meters as requested
//
// 3. Shutdown Phase (Cold Path):
//   - Stop on end of input or on SIGINT/SIGTERM
//   - Finish recordings and release devices
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	// Development builds run without link-time flags.
	if err := build.Initialize(); err != nil {
		applog.Debugf("Build: %v", err)
	}

	// Limit OS threads for real-time processing:
	// - One thread dedicated to the engine (time-critical)
	// - One thread for meters and I/O
	runtime.GOMAXPROCS(2)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ==================== STREAMING PHASE (Hot Path) ====================

	err := cmd.Execute(ctx, os.Args[1:])

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	if err != nil {
		stop()
		applog.Fatalf("%v", err)
	}
}
