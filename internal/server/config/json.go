package config

import (
	"encoding/json"
	"os"

	"github.com/Preethi0409/canvas/internal/flagx"
	"github.com/Preethi0409/canvas/internal/timex"
)

// jsonConfig is the intermediate DTO for reading a JSON configuration file.
// It uses timex.Duration for interval fields, which parses both string values
// such as "15m" and integer nanoseconds.
type jsonConfig struct {
	EndpointAddr                 string         `json:"endpoint_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	RedisAddr                    string         `json:"redis_addr"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	PublicCanvasListLimit        int            `json:"public_canvas_list_limit"`
	PresenceWindow               timex.Duration `json:"presence_window"`
}

// parseJSON loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. Absent flags mean nothing is
// loaded; an unreadable or invalid file panics, as startup cannot proceed
// with half-applied configuration.
func parseJSON(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &jsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.RedisAddr = c.RedisAddr
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	config.PublicCanvasListLimit = c.PublicCanvasListLimit
	config.PresenceWindow = c.PresenceWindow.Duration
}
