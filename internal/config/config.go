// Package config loads the huffd service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds service settings.
type Config struct {
	Addr           string // HUFFD_ADDR
	Workers        int    // HUFFD_WORKERS, 0 = GOMAXPROCS
	ModelCacheSize int    // HUFFD_MODEL_CACHE
	MaxBodyBytes   int64  // HUFFD_MAX_BODY
	LogLevel       string // HUFFD_LOG_LEVEL
}

// Default returns the settings used when no variable is set.
func Default() Config {
	return Config{
		Addr:           ":8080",
		ModelCacheSize: 64,
		MaxBodyBytes:   64 << 20,
		LogLevel:       "info",
	}
}

// Load reads the settings, falling back to Default for unset variables.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()
	if v := getenv("HUFFD_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := getenv("HUFFD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"HUFFD_WORKERS", &cfg.Workers},
		{"HUFFD_MODEL_CACHE", &cfg.ModelCacheSize},
	}
	for _, e := range ints {
		v := getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("%s: invalid value %q", e.name, v)
		}
		*e.dst = n
	}

	if v := getenv("HUFFD_MAX_BODY"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("HUFFD_MAX_BODY: invalid value %q", v)
		}
		cfg.MaxBodyBytes = n
	}
	return cfg, nil
}
