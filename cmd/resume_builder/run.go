package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/collect"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/console"
	"github.com/jonathan/resume-builder/internal/coverletter"
	"github.com/jonathan/resume-builder/internal/fetch"
	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/menu"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/tailoring"
)

var (
	configPath string
	resumesDir string
	verbose    bool
)

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: $RESUME_BUILDER_CONFIG or ./resume_builder.yaml)")
	rootCmd.Flags().StringVar(&resumesDir, "resumes-dir", "", "Directory holding one folder per resume (overrides config)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func runMenu(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return err
	}
	if resumesDir != "" {
		cfg.ResumesDir = resumesDir
	}

	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	logger := newLogger(cmd.ErrOrStderr(), level)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui := console.New(cmd.InOrStdin(), cmd.OutOrStdout())
	m, closeFn := buildMenu(ctx, cfg, ui, logger)
	defer closeFn()

	// Reading stdin cannot be interrupted, so the menu runs on its own
	// goroutine and a signal ends the program without waiting for it.
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		ui.Println()
		logger.Info("interrupted")
		return nil
	}
}

// newLogger builds the diagnostic logger. Every record carries the session id.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("session", uuid.NewString())
}

// buildMenu wires every component from the configuration. The returned
// function releases the language model client.
func buildMenu(ctx context.Context, cfg *config.Config, ui *console.Console, logger *slog.Logger) (*menu.Menu, func()) {
	client := newLLMClient(ctx, cfg, ui, logger)

	var renderer fetch.Renderer
	if cfg.Fetch.UseBrowser {
		renderer = fetch.NewBrowser(cfg.Fetch.BrowserTimeout, logger)
	}
	fetcher := fetch.NewFetcher(&fetch.Options{
		Timeout:   cfg.Fetch.Timeout,
		UserAgent: cfg.Fetch.UserAgent,
	}, renderer, logger)

	m := menu.New(menu.Deps{
		UI:        ui,
		Store:     store.New(cfg.ResumesDir, logger),
		Collector: collect.New(ui, time.Now),
		Acquirer:  ingestion.NewAcquirer(fetcher, client, logger),
		Tailorer:  tailoring.New(client, ui, logger, time.Now),
		Letters:   coverletter.New(client, ui, logger, time.Now, cfg.CoverLetter.MaxNormalizePasses),
		Logger:    logger,
		Now:       time.Now,
	})

	return m, func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close language model client", "error", err)
		}
	}
}

// newLLMClient creates the configured provider client. Without a usable key
// the menu still runs; model-backed choices then report the problem.
func newLLMClient(ctx context.Context, cfg *config.Config, ui *console.Console, logger *slog.Logger) llm.Client {
	apiKey, err := cfg.ResolveAPIKey(".")
	if err != nil {
		ui.Warn("Language model features are disabled: %v", err)
		return llm.NewUnavailableClient(err)
	}

	client, err := llm.NewClient(ctx, llmConfig(cfg), apiKey)
	if err != nil {
		ui.Warn("Language model features are disabled: %v", err)
		return llm.NewUnavailableClient(fmt.Errorf("language model client unavailable: %w", err))
	}
	logger.Debug("language model client ready", "provider", cfg.LLM.Provider, "model", client.GetModel(llm.TierAdvanced))
	return client
}

// llmConfig maps the file configuration onto the provider defaults.
func llmConfig(cfg *config.Config) *llm.Config {
	out := llm.ConfigFor(llm.Provider(cfg.LLM.Provider))
	out.BaseURL = cfg.LLM.BaseURL
	out.MaxTokens = cfg.LLM.MaxTokens
	out.Temperature = cfg.LLM.Temperature
	out.Timeout = cfg.LLM.Timeout
	for tier, model := range cfg.LLM.Models {
		out = out.WithModel(llm.ModelTier(tier), model)
	}
	return out
}
