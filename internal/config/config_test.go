package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(env(nil))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := load(env(map[string]string{
		"HUFFD_ADDR":        "127.0.0.1:9000",
		"HUFFD_WORKERS":     "4",
		"HUFFD_MODEL_CACHE": "0",
		"HUFFD_MAX_BODY":    "1024",
		"HUFFD_LOG_LEVEL":   "debug",
	}))
	require.NoError(t, err)
	require.Equal(t, Config{
		Addr:           "127.0.0.1:9000",
		Workers:        4,
		ModelCacheSize: 0,
		MaxBodyBytes:   1024,
		LogLevel:       "debug",
	}, cfg)
}

func TestLoadInvalid(t *testing.T) {
	for _, kv := range [][2]string{
		{"HUFFD_WORKERS", "many"},
		{"HUFFD_WORKERS", "-1"},
		{"HUFFD_MODEL_CACHE", "x"},
		{"HUFFD_MAX_BODY", "0"},
	} {
		_, err := load(env(map[string]string{kv[0]: kv[1]}))
		require.Error(t, err, "%s=%s", kv[0], kv[1])
	}
}
