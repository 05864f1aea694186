package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/noxus/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the identity store
//	-d string   path of the local SQLite database
//	-s string   app URL scheme
//	-l string   deep link listener address
//	-i int      session check interval in seconds
//	-v string   log level
//
// Only these flags are picked out of os.Args (flagx.FilterArgs), so cobra
// subcommands and their arguments do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-l", "-i", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.AppScheme, "s", cfg.AppScheme, "app URL scheme")
	fs.StringVar(&cfg.DeepLinkAddr, "l", cfg.DeepLinkAddr, "deep link listener address")
	checkInterval := fs.Int("i", int(cfg.SessionCheckInterval.Seconds()), "session check interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SessionCheckInterval = time.Duration(*checkInterval) * time.Second
}
