// Package config handles configuration for the client component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the canvas CLI.
//
// Fields:
//   - ServerURL: base URL of the canvas server HTTP API.
//   - DatabasePath: local sqlite file for session and operation cache.
//   - HeartbeatInterval: presence heartbeat period while on a canvas.
//   - PresenceWindow: how long a participant counts as online after its last heartbeat.
//   - CanvasWidth/CanvasHeight: dimensions of the in-memory drawing surface.
type Config struct {
	ServerURL         string
	DatabasePath      string
	HeartbeatInterval time.Duration
	PresenceWindow    time.Duration
	CanvasWidth       int
	CanvasHeight      int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabasePath = "canvas.db"
	c.HeartbeatInterval = 10 * time.Second
	c.PresenceWindow = 30 * time.Second
	c.CanvasWidth = 800
	c.CanvasHeight = 600
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
