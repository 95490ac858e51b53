package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/Preethi0409/canvas/internal/flagx"
	"github.com/Preethi0409/canvas/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "10s"
// or as integer nanoseconds.
type JSONConfig struct {
	ServerURL         string         `json:"server_url"`
	DatabasePath      string         `json:"database_path"`
	HeartbeatInterval timex.Duration `json:"heartbeat_interval"`
	PresenceWindow    timex.Duration `json:"presence_window"`
	CanvasWidth       int            `json:"canvas_width"`
	CanvasHeight      int            `json:"canvas_height"`
}

// parseJSON overlays Config with values loaded from a JSON file whose path is
// given by the -c/-config flags. Missing flag means no overlay; read or
// unmarshal errors panic.
func parseJSON(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JSONConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.HeartbeatInterval.Duration != 0 {
		cfg.HeartbeatInterval = time.Duration(jc.HeartbeatInterval.Duration)
	}
	if jc.PresenceWindow.Duration != 0 {
		cfg.PresenceWindow = time.Duration(jc.PresenceWindow.Duration)
	}
	if jc.CanvasWidth != 0 {
		cfg.CanvasWidth = jc.CanvasWidth
	}
	if jc.CanvasHeight != 0 {
		cfg.CanvasHeight = jc.CanvasHeight
	}
}
