// Package config loads runtime configuration for the noxus client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c or -config; JSON, YAML or TOML
//     by extension.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # File schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "database_path": "noxus-client.db",
//	  "app_scheme": "com.ascennoxus.app",
//	  "deep_link_addr": "127.0.0.1:47321",
//	  "session_check_interval": "60s",
//	  "log_level": "warn",
//	  "log_format": "text"
//	}
package config
