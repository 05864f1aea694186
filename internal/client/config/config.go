package config

import "time"

// Config holds runtime settings for the noxus client.
//
// Fields:
//   - ServerEndpointAddr: host:port of the identity store gRPC endpoint.
//   - DatabasePath: SQLite file holding the persisted session.
//   - AppScheme: custom URL scheme recovery and OAuth links return on.
//   - DeepLinkAddr: localhost address the running client accepts forwarded
//     deep links on.
//   - SessionCheckInterval: how often the session is re-validated in the
//     background.
//   - LogLevel / LogFormat: slog level and handler ("text" or "json").
type Config struct {
	ServerEndpointAddr   string
	DatabasePath         string
	AppScheme            string
	DeepLinkAddr         string
	SessionCheckInterval time.Duration
	LogLevel             string
	LogFormat            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabasePath = "noxus-client.db"
	c.AppScheme = "com.ascennoxus.app"
	c.DeepLinkAddr = "127.0.0.1:47321"
	c.SessionCheckInterval = 60 * time.Second
	c.LogLevel = "warn"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if given) and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
