package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
// Only knobs that live outside the config file are exposed here: every
// config field carries a non-empty default, so an env tier between file
// and defaults could not tell "unset" from "default".
type envConfig struct {
	ConfigPath string // MDTEX_CONFIG: config file path
	Workers    int    // MDTEX_WORKERS: parallel workers
}

// knownEnvVars lists valid MDTEX_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MDTEX_CONFIG":  true,
	"MDTEX_WORKERS": true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("MDTEX_CONFIG"),
	}

	if workers := os.Getenv("MDTEX_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MDTEX_* variables.
// Helps catch typos like MDTEX_WORKER instead of MDTEX_WORKERS.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "MDTEX_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}
