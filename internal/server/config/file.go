package config

import (
	"time"

	"github.com/dmitrijs2005/noxus/internal/filex"
	"github.com/dmitrijs2005/noxus/internal/flagx"
	"github.com/dmitrijs2005/noxus/internal/timex"
)

// FileConfig is the on-disk shape of the server configuration. Durations
// use timex.Duration, so both "15m" and integer nanoseconds are accepted.
// Empty fields keep their previous value.
type FileConfig struct {
	EndpointAddrGRPC              string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc" toml:"endpoint_addr_grpc"`
	HTTPAddr                      string         `json:"http_addr" yaml:"http_addr" toml:"http_addr"`
	PublicURL                     string         `json:"public_url" yaml:"public_url" toml:"public_url"`
	DatabaseDSN                   string         `json:"database_dsn" yaml:"database_dsn" toml:"database_dsn"`
	SecretKey                     string         `json:"secret_key" yaml:"secret_key" toml:"secret_key"`
	AccessTokenValidityDuration   timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration" toml:"access_token_validity_duration"`
	RefreshTokenValidityDuration  timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration" toml:"refresh_token_validity_duration"`
	RecoveryTokenValidityDuration timex.Duration `json:"recovery_token_validity_duration" yaml:"recovery_token_validity_duration" toml:"recovery_token_validity_duration"`
	AppScheme                     string         `json:"app_scheme" yaml:"app_scheme" toml:"app_scheme"`
	S3RootUser                    string         `json:"s3_root_user" yaml:"s3_root_user" toml:"s3_root_user"`
	S3RootPassword                string         `json:"s3_root_password" yaml:"s3_root_password" toml:"s3_root_password"`
	S3Bucket                      string         `json:"s3_bucket" yaml:"s3_bucket" toml:"s3_bucket"`
	S3Region                      string         `json:"s3_region" yaml:"s3_region" toml:"s3_region"`
	S3BaseEndpoint                string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint" toml:"s3_base_endpoint"`
	S3PublicURL                   string         `json:"s3_public_url" yaml:"s3_public_url" toml:"s3_public_url"`
	GoogleClientID                string         `json:"google_client_id" yaml:"google_client_id" toml:"google_client_id"`
	GoogleClientSecret            string         `json:"google_client_secret" yaml:"google_client_secret" toml:"google_client_secret"`
	LogLevel                      string         `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat                     string         `json:"log_format" yaml:"log_format" toml:"log_format"`
}

// parseFile overlays config with the file named by -c or -config; the
// extension selects json, yaml or toml. It panics if the file cannot be
// read or decoded.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	var fc FileConfig
	if err := filex.DecodeFile(path, &fc); err != nil {
		panic(err)
	}
	fc.apply(config)
}

func (fc FileConfig) apply(c *Config) {
	str := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	dur := func(dst *time.Duration, v timex.Duration) {
		if v.Duration > 0 {
			*dst = v.Duration
		}
	}

	str(&c.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	str(&c.HTTPAddr, fc.HTTPAddr)
	str(&c.PublicURL, fc.PublicURL)
	str(&c.DatabaseDSN, fc.DatabaseDSN)
	str(&c.SecretKey, fc.SecretKey)
	dur(&c.AccessTokenValidityDuration, fc.AccessTokenValidityDuration)
	dur(&c.RefreshTokenValidityDuration, fc.RefreshTokenValidityDuration)
	dur(&c.RecoveryTokenValidityDuration, fc.RecoveryTokenValidityDuration)
	str(&c.AppScheme, fc.AppScheme)
	str(&c.S3RootUser, fc.S3RootUser)
	str(&c.S3RootPassword, fc.S3RootPassword)
	str(&c.S3Bucket, fc.S3Bucket)
	str(&c.S3Region, fc.S3Region)
	str(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
	str(&c.S3PublicURL, fc.S3PublicURL)
	str(&c.GoogleClientID, fc.GoogleClientID)
	str(&c.GoogleClientSecret, fc.GoogleClientSecret)
	str(&c.LogLevel, fc.LogLevel)
	str(&c.LogFormat, fc.LogFormat)
}
