package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"

	"github.com/yubota24504/FileVizDedup/internal/api"
	"github.com/yubota24504/FileVizDedup/internal/config"
	"github.com/yubota24504/FileVizDedup/internal/llm"
	"github.com/yubota24504/FileVizDedup/internal/logging"
	"github.com/yubota24504/FileVizDedup/internal/services"
	"github.com/yubota24504/FileVizDedup/internal/state"
	"github.com/yubota24504/FileVizDedup/internal/ui"
)

// components is everything the terminal UI and the HTTP server share.
type components struct {
	validator *services.FSValidator
	scanner   *services.FSScanner
	detector  *services.Detector
	actions   *services.FSActions
	explainer *services.GroupExplainer
}

func Run() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "FileVizDedup error:", err)
		os.Exit(1)
	}
}

func run() error {
	base, loadErr := config.LoadConfig()
	cfg := config.ParseFlags(base)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Serve {
		return serve(cfg, loadErr)
	}
	return runTUI(cfg, loadErr)
}

func newComponents(fsys billy.Filesystem, cfg config.Config, logger zerolog.Logger) (components, error) {
	detector, err := services.NewDetector(fsys, services.DetectorOptions{
		MaxDepth: cfg.MaxDepth,
		Workers:  cfg.Workers,
		Hash:     cfg.HashOptions(),
		Logger:   logger,
	})
	if err != nil {
		return components{}, err
	}
	client := llm.NewClient(cfg.OllamaURL, cfg.OllamaModel, cfg.ExplainTimeout)
	return components{
		validator: services.NewFSValidator(fsys),
		scanner:   services.NewFSScanner(fsys, services.ScanOptions{MaxDepth: cfg.MaxDepth, Logger: logger}),
		detector:  detector,
		actions:   services.NewFSActions(fsys, logger),
		explainer: services.NewGroupExplainer(detector, client, services.ExplainOptions{
			Lang:      cfg.Lang,
			MaxGroups: cfg.MaxGroups,
		}),
	}, nil
}

func serve(cfg config.Config, loadErr error) error {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}
	if loadErr != nil {
		logger.Warn().Err(loadErr).Msg("config not loaded, using defaults")
	}
	parts, err := newComponents(services.HostFS(), cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.New(api.Dependencies{
		Validator: parts.validator,
		Scanner:   parts.scanner,
		Finder:    parts.detector,
		Explainer: parts.explainer,
		Actions:   parts.actions,
	}, api.Options{
		Listen:         cfg.Listen,
		AllowedOrigins: cfg.AllowedOrigins,
		SafeMode:       cfg.SafeMode,
	}, logger)
	logger.Info().
		Str("digest", cfg.Digest).
		Int("blockSize", cfg.BlockSize).
		Bool("safeMode", cfg.SafeMode).
		Str("ollama", cfg.OllamaURL).
		Msg("starting FileVizDedup API")
	return server.Run(ctx)
}

func runTUI(cfg config.Config, loadErr error) error {
	logger := zerolog.Nop()
	if cfg.LogFile != "" {
		fileLogger, closer, err := logging.OpenFile(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			return err
		}
		defer closeQuietly(closer)
		logger = fileLogger
	}
	parts, err := newComponents(services.HostFS(), cfg, logger)
	if err != nil {
		return err
	}

	model := ui.NewModel(state.NewState(cfg), ui.Services{
		Scanner:   parts.scanner,
		Finder:    parts.detector,
		Actions:   parts.actions,
		Explainer: parts.explainer,
	}, cfg)
	if loadErr != nil {
		model = model.WithStatus("Config warning: using defaults")
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if provider, ok := finalModel.(ui.ConfigProvider); ok {
		if err := config.SaveConfig(provider.ConfigSnapshot()); err != nil {
			logger.Error().Err(err).Msg("config save failed")
			fmt.Fprintln(os.Stderr, "FileVizDedup config save error:", err)
		}
	}
	return nil
}

func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
