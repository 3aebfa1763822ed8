package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/socialclone/internal/flagx"
	"github.com/dmitrijs2005/socialclone/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. RequestTimeout
// accepts "3s" or integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	UploadEndpointURL  string         `json:"upload_endpoint_url"`
	SessionDBPath      string         `json:"session_db_path"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
}

// parseJson overlays cfg with the file named by -c/-config. Empty JSON
// fields keep their current values. Read or decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFilePath()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.UploadEndpointURL != "" {
		cfg.UploadEndpointURL = jc.UploadEndpointURL
	}
	if jc.SessionDBPath != "" {
		cfg.SessionDBPath = jc.SessionDBPath
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}
