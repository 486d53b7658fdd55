package config

import (
	"time"

	"github.com/yubota24504/FileVizDedup/internal/domain"
)

type Config struct {
	Path           string            `json:"path"`
	Serve          bool              `json:"serve"`
	Listen         string            `json:"listen"`
	AllowedOrigins []string          `json:"allowedOrigins"`
	ShowHidden     bool              `json:"showHidden"`
	SafeMode       bool              `json:"safeMode"`
	SortMode       domain.SortMode   `json:"sortMode"`
	Theme          string            `json:"theme"`
	KeyBindings    map[string]string `json:"keyBindings"`
	MaxDepth       int               `json:"maxDepth"`
	BlockSize      int               `json:"blockSize"`
	Digest         string            `json:"digest"`
	Workers        int               `json:"workers"`
	OllamaURL      string            `json:"ollamaURL"`
	OllamaModel    string            `json:"ollamaModel"`
	ExplainTimeout time.Duration     `json:"explainTimeout"`
	Lang           string            `json:"lang"`
	MaxGroups      int               `json:"maxGroups"`
	LogLevel       string            `json:"logLevel"`
	LogFormat      string            `json:"logFormat"`
	LogFile        string            `json:"logFile"`
}

type fileConfig struct {
	Path           *string           `json:"path"`
	Serve          *bool             `json:"serve"`
	Listen         *string           `json:"listen"`
	AllowedOrigins []string          `json:"allowedOrigins"`
	ShowHidden     *bool             `json:"showHidden"`
	SafeMode       *bool             `json:"safeMode"`
	SortMode       *string           `json:"sortMode"`
	Theme          *string           `json:"theme"`
	KeyBindings    map[string]string `json:"keyBindings"`
	MaxDepth       *int              `json:"maxDepth"`
	BlockSize      *int              `json:"blockSize"`
	Digest         *string           `json:"digest"`
	Workers        *int              `json:"workers"`
	OllamaURL      *string           `json:"ollamaURL"`
	OllamaModel    *string           `json:"ollamaModel"`
	ExplainTimeout *time.Duration    `json:"explainTimeout"`
	Lang           *string           `json:"lang"`
	MaxGroups      *int              `json:"maxGroups"`
	LogLevel       *string           `json:"logLevel"`
	LogFormat      *string           `json:"logFormat"`
	LogFile        *string           `json:"logFile"`
}
