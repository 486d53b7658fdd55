package config

import (
	"flag"
	"os"
	"strings"
)

// ParseFlags applies command line overrides on top of base.
func ParseFlags(base Config) Config {
	cfg, _ := ParseArgs(flag.CommandLine, os.Args[1:], base)
	return cfg
}

func ParseArgs(set *flag.FlagSet, args []string, base Config) (Config, error) {
	path := set.String("path", base.Path, "Directory to scan")
	serve := set.Bool("serve", base.Serve, "Run the HTTP API instead of the terminal UI")
	listen := set.String("listen", base.Listen, "HTTP listen address")
	origins := set.String("origins", strings.Join(base.AllowedOrigins, ","), "Comma separated CORS origins")
	showHidden := set.Bool("show-hidden", base.ShowHidden, "Show hidden files in the tree view")
	safeMode := set.Bool("safe-mode", base.SafeMode, "Refuse to delete system paths")
	maxDepth := set.Int("max-depth", base.MaxDepth, "Maximum directory depth to traverse")
	blockSize := set.Int("block-size", base.BlockSize, "Bytes read per hashing block")
	digest := set.String("digest", base.Digest, "Content digest (sha256, sha512, blake2b)")
	workers := set.Int("workers", base.Workers, "Hashing workers, 0 for one per CPU")
	ollamaURL := set.String("ollama-url", base.OllamaURL, "Ollama base URL")
	ollamaModel := set.String("ollama-model", base.OllamaModel, "Ollama model name")
	explainTimeout := set.Duration("explain-timeout", base.ExplainTimeout, "Timeout for one explanation request")
	lang := set.String("lang", base.Lang, "Explanation language (ja or en)")
	maxGroups := set.Int("max-groups", base.MaxGroups, "Groups to explain per request")
	logLevel := set.String("log-level", base.LogLevel, "Log level")
	logFormat := set.String("log-format", base.LogFormat, "Log format (console or json)")
	logFile := set.String("log-file", base.LogFile, "Write logs to this file")

	if err := set.Parse(args); err != nil {
		return base, err
	}

	base.Path = *path
	base.Serve = *serve
	base.Listen = *listen
	base.AllowedOrigins = splitList(*origins)
	base.ShowHidden = *showHidden
	base.SafeMode = *safeMode
	base.MaxDepth = *maxDepth
	base.BlockSize = *blockSize
	base.Digest = *digest
	base.Workers = *workers
	base.OllamaURL = *ollamaURL
	base.OllamaModel = *ollamaModel
	base.ExplainTimeout = *explainTimeout
	base.Lang = *lang
	base.MaxGroups = *maxGroups
	base.LogLevel = *logLevel
	base.LogFormat = *logFormat
	base.LogFile = *logFile
	return base, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
