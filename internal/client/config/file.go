package config

import (
	"github.com/dmitrijs2005/noxus/internal/filex"
	"github.com/dmitrijs2005/noxus/internal/flagx"
	"github.com/dmitrijs2005/noxus/internal/timex"
)

// FileConfig is the on-disk shape of the client configuration. Intervals
// use timex.Duration so they may be written as "60s" or as nanoseconds.
// Empty fields keep their previous value.
type FileConfig struct {
	ServerEndpointAddr   string         `json:"server_endpoint_addr" yaml:"server_endpoint_addr" toml:"server_endpoint_addr"`
	DatabasePath         string         `json:"database_path" yaml:"database_path" toml:"database_path"`
	AppScheme            string         `json:"app_scheme" yaml:"app_scheme" toml:"app_scheme"`
	DeepLinkAddr         string         `json:"deep_link_addr" yaml:"deep_link_addr" toml:"deep_link_addr"`
	SessionCheckInterval timex.Duration `json:"session_check_interval" yaml:"session_check_interval" toml:"session_check_interval"`
	LogLevel             string         `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat            string         `json:"log_format" yaml:"log_format" toml:"log_format"`
}

// parseFile overlays cfg with the file named by -c or -config. The format
// follows the extension (.json, .yaml/.yml, .toml). It panics on read or
// decode errors.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	var fc FileConfig
	if err := filex.DecodeFile(path, &fc); err != nil {
		panic(err)
	}
	fc.apply(cfg)
}

func (fc FileConfig) apply(cfg *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.ServerEndpointAddr, fc.ServerEndpointAddr)
	set(&cfg.DatabasePath, fc.DatabasePath)
	set(&cfg.AppScheme, fc.AppScheme)
	set(&cfg.DeepLinkAddr, fc.DeepLinkAddr)
	set(&cfg.LogLevel, fc.LogLevel)
	set(&cfg.LogFormat, fc.LogFormat)
	if fc.SessionCheckInterval.Duration > 0 {
		cfg.SessionCheckInterval = fc.SessionCheckInterval.Duration
	}
}
