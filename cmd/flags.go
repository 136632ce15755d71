package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// mustGetBool gets a bool flag value or panics if the flag doesn't exist.
// This is appropriate for flags defined in init() - errors indicate programming bugs.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

// mustGetInt gets an int flag value or panics if the flag doesn't exist.
func mustGetInt(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

// flagEnv maps command-line flags to the environment variables they override.
var flagEnv = map[string]string{
	"media-dir": "MEDIA_DIR",
	"cache-dir": "CACHE_DIR",
	"log-level": "LOG_LEVEL",
	"port":      "PORT",
	"workers":   "INDEX_WORKERS",
}

// applyFlagOverrides copies every explicitly set flag into its environment
// variable so configuration is read from a single place.
func applyFlagOverrides(cmd *cobra.Command) error {
	for flag, env := range flagEnv {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := os.Setenv(env, f.Value.String()); err != nil {
			return fmt.Errorf("applying --%s: %w", flag, err)
		}
	}
	return nil
}
