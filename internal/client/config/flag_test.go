package config

import (
	"flag"
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

	// Test cases
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd", "-a", "https://db.example.co", "-k", "key1", "-d", "notes.db", "-i", "10"}, expectPanic: false,
			expected: &Config{ServiceURL: "https://db.example.co", APIKey: "key1", DatabasePath: "notes.db", OnlineCheckInterval: 10 * time.Second}},
		{name: "Test2 passthrough mode", args: []string{"cmd", "-offline=false", "-i", "0"}, expectPanic: false,
			expected: &Config{}},
		{name: "Test3 incorrect check interval", args: []string{"cmd", "-a", "https://db.example.co", "-i", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {

				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
