// Package config handles configuration for the profile client: defaults,
// JSON overlay and command-line flags, in that order of precedence.
package config

import "time"

// Config holds runtime settings for the client.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - UploadEndpointURL: multipart upload endpoint used by the "upload" command.
//   - SessionDBPath: sqlite file caching the signed-in session.
//   - RequestTimeout: upper bound for a single remote call.
type Config struct {
	ServerEndpointAddr string
	UploadEndpointURL  string
	SessionDBPath      string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.UploadEndpointURL = "http://localhost:3000/upload"
	c.SessionDBPath = "socialclone.db"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
