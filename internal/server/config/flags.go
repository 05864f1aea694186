package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/noxus/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-w string   HTTP bind address for OAuth callbacks (e.g., ":8080")
//	-o string   public base URL of the HTTP endpoint
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-y int      recovery session validity, minutes
//	-m string   app URL scheme redirects must use
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-x string   public base URL avatars are served from
//	-i string   Google OAuth client id
//	-k string   Google OAuth client secret
//	-v string   log level
//	-f string   log format ("text" or "json")
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-w", "-o", "-d", "-s", "-t", "-r", "-m", "-u", "-p", "-b", "-g", "-e", "-x", "-i", "-k", "-v", "-f", "-y"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.HTTPAddr, "w", config.HTTPAddr, "address and port to serve OAuth callbacks")
	fs.StringVar(&config.PublicURL, "o", config.PublicURL, "public base URL of the HTTP endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")
	recoveryTokenValidityDuration := fs.Int("y", int(config.RecoveryTokenValidityDuration.Minutes()), "recovery session validity (in minutes)")

	fs.StringVar(&config.AppScheme, "m", config.AppScheme, "app URL scheme")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3PublicURL, "x", config.S3PublicURL, "public base URL of stored avatars")
	fs.StringVar(&config.GoogleClientID, "i", config.GoogleClientID, "Google OAuth client id")
	fs.StringVar(&config.GoogleClientSecret, "k", config.GoogleClientSecret, "Google OAuth client secret")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format (text, json)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	config.RecoveryTokenValidityDuration = time.Duration(*recoveryTokenValidityDuration) * time.Minute
}
