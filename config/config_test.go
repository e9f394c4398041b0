package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HOST", "PORT", "WORKERS", "VIPS_CONCURRENCY", "CORS", "CACHE",
		"CACHE_ENABLE", "CACHE_CAPACITY", "SVG_DPI", "SVG_UNLIMITED",
		"AVIF_ENABLE", "KEY", "MPV", "LOG",
	} {
		os.Unsetenv(k)
	}
}

func TestLoad_DefaultsRequirePort(t *testing.T) {
	clearEnv(t)

	_, err := Load("")
	assert.Error(t, err, "PORT has no default and must be supplied")
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	clearEnv(t)
	os.Setenv("HOST", "127.0.0.1")
	os.Setenv("PORT", "9100")
	os.Setenv("AVIF_ENABLE", "true")
	os.Setenv("CACHE_CAPACITY", "25")
	defer clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9100, cfg.Port)
	assert.True(t, cfg.AvifEnable)
	assert.Equal(t, 25, cfg.CacheCapacityGB)

	// Untouched fields keep their defaults.
	assert.Equal(t, "/tmp", cfg.Cache)
	assert.True(t, cfg.CacheEnable)
	assert.Equal(t, 72, cfg.SVGDPI)
}

func TestLoad_YAMLFileBeneathEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "pixgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9200\ncache: /var/cache/pixgate\n"), 0o644))

	os.Setenv("PORT", "9300")
	defer clearEnv(t)

	cfg, err := Load(path)
	require.NoError(t, err)

	// Env wins over the YAML file.
	assert.Equal(t, 9300, cfg.Port)
	// The file still supplies values env didn't override.
	assert.Equal(t, "/var/cache/pixgate", cfg.Cache)
}

func TestConfig_Validate_RejectsBadPort(t *testing.T) {
	cfg := Default()
	cfg.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestConfig_CORSOrigins(t *testing.T) {
	cfg := Default()
	cfg.CORS = ""
	assert.Nil(t, cfg.CORSOrigins())

	cfg.CORS = "https://a.test, https://b.test"
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORSOrigins())
}

func TestConfig_String_RedactsKey(t *testing.T) {
	cfg := Default()
	cfg.Port = 9000
	cfg.Key = "supersecret"

	out := cfg.String()
	assert.NotContains(t, out, "supersecret")
	assert.Contains(t, out, "key=set")
}

func TestConfig_DumpYAML(t *testing.T) {
	cfg := Default()
	cfg.Port = 9000
	path := filepath.Join(t.TempDir(), "dump.yaml")

	require.NoError(t, cfg.DumpYAML(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "port: 9000")
}
