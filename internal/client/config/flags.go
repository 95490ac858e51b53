package config

import (
	"flag"
	"os"
	"time"

	"github.com/Preethi0409/canvas/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the canvas server
//	-f string   local database file path
//	-b int      heartbeat interval in seconds
//	-w int      presence liveness window in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-f", "-b", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the canvas server")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "local database file path")
	heartbeat := fs.Int("b", int(cfg.HeartbeatInterval.Seconds()), "heartbeat interval (in seconds)")
	window := fs.Int("w", int(cfg.PresenceWindow.Seconds()), "presence liveness window (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.HeartbeatInterval = time.Duration(*heartbeat) * time.Second
	cfg.PresenceWindow = time.Duration(*window) * time.Second
}
