package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/yubota24504/FileVizDedup/internal/domain"
	"github.com/yubota24504/FileVizDedup/internal/llm"
	"github.com/yubota24504/FileVizDedup/internal/services"
)

const (
	configDirName  = "filevizdedup"
	configFileName = "config.json"
)

func DefaultConfig() Config {
	return Config{
		Path:           ".",
		Listen:         "127.0.0.1:8000",
		AllowedOrigins: []string{"http://127.0.0.1:8000", "http://localhost:8000"},
		ShowHidden:     false,
		SafeMode:       true,
		SortMode:       domain.SortBySize,
		Theme:          "dark",
		KeyBindings:    map[string]string{},
		MaxDepth:       services.DefaultMaxDepth,
		BlockSize:      services.DefaultBlockSize,
		Digest:         services.DigestSHA256,
		Workers:        0,
		OllamaURL:      llm.DefaultBaseURL,
		OllamaModel:    llm.DefaultModel,
		ExplainTimeout: llm.DefaultTimeout,
		Lang:           llm.LangJapanese,
		MaxGroups:      services.DefaultMaxGroups,
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

func ConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, configDirName, configFileName), nil
}

func LoadConfig() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadConfigFrom(path)
}

// LoadConfigFrom merges the file at path over the defaults. A missing file
// is not an error.
func LoadConfigFrom(path string) (Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}
	var stored fileConfig
	if err := json.Unmarshal(data, &stored); err != nil {
		return config, fmt.Errorf("parse %s: %w", path, err)
	}
	return mergeConfig(config, stored), nil
}

func SaveConfig(config Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveConfigTo(path, config)
}

func SaveConfigTo(path string, config Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate reports every setting the services would refuse.
func (config Config) Validate() error {
	var errs []error
	if _, err := services.NewHasher(config.HashOptions()); err != nil {
		errs = append(errs, err)
	}
	if config.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("maxDepth must not be negative: %d", config.MaxDepth))
	}
	if config.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative: %d", config.Workers))
	}
	if config.ExplainTimeout < 0 {
		errs = append(errs, fmt.Errorf("explainTimeout must not be negative: %s", config.ExplainTimeout))
	}
	if config.Serve {
		if _, _, err := net.SplitHostPort(config.Listen); err != nil {
			errs = append(errs, fmt.Errorf("listen %q: %w", config.Listen, err))
		}
	}
	return errors.Join(errs...)
}

func (config Config) HashOptions() services.HashOptions {
	return services.HashOptions{BlockSize: config.BlockSize, Digest: config.Digest}
}

func mergeConfig(base Config, stored fileConfig) Config {
	merged := base
	if stored.Path != nil {
		merged.Path = *stored.Path
	}
	if stored.Serve != nil {
		merged.Serve = *stored.Serve
	}
	if stored.Listen != nil {
		merged.Listen = *stored.Listen
	}
	if stored.AllowedOrigins != nil {
		merged.AllowedOrigins = stored.AllowedOrigins
	}
	if stored.ShowHidden != nil {
		merged.ShowHidden = *stored.ShowHidden
	}
	if stored.SafeMode != nil {
		merged.SafeMode = *stored.SafeMode
	}
	if stored.SortMode != nil {
		merged.SortMode = domainSortMode(*stored.SortMode, base.SortMode)
	}
	if stored.Theme != nil {
		merged.Theme = *stored.Theme
	}
	if stored.KeyBindings != nil {
		merged.KeyBindings = stored.KeyBindings
	}
	if stored.MaxDepth != nil {
		merged.MaxDepth = *stored.MaxDepth
	}
	if stored.BlockSize != nil {
		merged.BlockSize = *stored.BlockSize
	}
	if stored.Digest != nil {
		merged.Digest = *stored.Digest
	}
	if stored.Workers != nil {
		merged.Workers = *stored.Workers
	}
	if stored.OllamaURL != nil {
		merged.OllamaURL = *stored.OllamaURL
	}
	if stored.OllamaModel != nil {
		merged.OllamaModel = *stored.OllamaModel
	}
	if stored.ExplainTimeout != nil {
		merged.ExplainTimeout = *stored.ExplainTimeout
	}
	if stored.Lang != nil {
		merged.Lang = *stored.Lang
	}
	if stored.MaxGroups != nil {
		merged.MaxGroups = *stored.MaxGroups
	}
	if stored.LogLevel != nil {
		merged.LogLevel = *stored.LogLevel
	}
	if stored.LogFormat != nil {
		merged.LogFormat = *stored.LogFormat
	}
	if stored.LogFile != nil {
		merged.LogFile = *stored.LogFile
	}
	return merged
}

func domainSortMode(value string, fallback domain.SortMode) domain.SortMode {
	switch domain.SortMode(value) {
	case domain.SortByName, domain.SortBySize:
		return domain.SortMode(value)
	default:
		return fallback
	}
}
