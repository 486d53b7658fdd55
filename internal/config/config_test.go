package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yubota24504/FileVizDedup/internal/domain"
	"github.com/yubota24504/FileVizDedup/internal/services"
)

func TestLoadConfigFromMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"digest": "blake2b",
		"safeMode": false,
		"sortMode": "bogus",
		"explainTimeout": 5000000000,
		"allowedOrigins": ["http://example.test"]
	}`), 0o600))

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)

	assert.Equal(t, services.DigestBLAKE2b, cfg.Digest)
	assert.False(t, cfg.SafeMode)
	assert.Equal(t, domain.SortBySize, cfg.SortMode)
	assert.Equal(t, 5*time.Second, cfg.ExplainTimeout)
	assert.Equal(t, []string{"http://example.test"}, cfg.AllowedOrigins)
	assert.Equal(t, services.DefaultBlockSize, cfg.BlockSize)
	assert.Equal(t, "127.0.0.1:8000", cfg.Listen)
}

func TestLoadConfigFromMissingFile(t *testing.T) {
	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFromBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	cfg, err := LoadConfigFrom(path)
	assert.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.Path = "/srv/media"
	cfg.Workers = 3
	require.NoError(t, SaveConfigTo(path, cfg))

	loaded, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestParseArgsOverrides(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseArgs(set, []string{
		"-path", "/data",
		"-serve",
		"-digest", "sha512",
		"-origins", "http://a.test, http://b.test,",
		"-explain-timeout", "2s",
	}, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "/data", cfg.Path)
	assert.True(t, cfg.Serve)
	assert.Equal(t, services.DigestSHA512, cfg.Digest)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 2*time.Second, cfg.ExplainTimeout)
	assert.True(t, cfg.SafeMode)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Digest = "crc32"
	cfg.MaxDepth = -1
	cfg.Serve = true
	cfg.Listen = "nowhere"
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrUnknownDigest)
	assert.Contains(t, err.Error(), "maxDepth")
	assert.Contains(t, err.Error(), "listen")
}
