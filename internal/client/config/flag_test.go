package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-a", "127.0.0.1:9090", "-d", "x.db", "-s", "com.example.app", "-l", "127.0.0.1:1", "-i", "10", "-v", "debug"},
			expected: &Config{
				ServerEndpointAddr:   "127.0.0.1:9090",
				DatabasePath:         "x.db",
				AppScheme:            "com.example.app",
				DeepLinkAddr:         "127.0.0.1:1",
				SessionCheckInterval: 10 * time.Second,
				LogLevel:             "debug",
			},
		},
		{
			name:     "subcommand arguments are ignored",
			args:     []string{"cmd", "open", "com.ascennoxus.app://google-auth", "-a", "h:1"},
			expected: &Config{ServerEndpointAddr: "h:1"},
		},
		{name: "incorrect check interval", args: []string{"cmd", "-a", "127.0.0.1:9090", "-i", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
