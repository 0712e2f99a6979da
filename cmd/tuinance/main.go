package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bloatoo/tuinance/internal/config"
	"github.com/bloatoo/tuinance/internal/engine"
	"github.com/bloatoo/tuinance/internal/market"
	"github.com/bloatoo/tuinance/internal/provider"
	alpacaprovider "github.com/bloatoo/tuinance/internal/provider/alpaca"
	"github.com/bloatoo/tuinance/internal/provider/replay"
	"github.com/bloatoo/tuinance/internal/ui"
	"github.com/bloatoo/tuinance/internal/util"
)

func defaultConfigPath() string {
	if p := os.Getenv("TUINANCE_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "tuinance.yaml"
	}
	return filepath.Join(dir, "tuinance", "tuinance.yaml")
}

// buildProvider constructs the configured market-data source. All three
// provider roles come from one implementation.
func buildProvider(cfg config.Provider) (provider.History, provider.Profiles, provider.Streamer, error) {
	switch cfg.Kind {
	case "alpaca":
		p := alpacaprovider.New(alpacaprovider.Options{
			APIKey:          cfg.APIKey,
			APISecret:       cfg.APISecret,
			BaseURL:         cfg.BaseURL,
			DataURL:         cfg.DataURL,
			Feed:            cfg.Feed,
			RateLimitPerMin: cfg.RateLimitPerMin,
		})
		return p, p, p, nil
	case "replay":
		p := replay.New()
		return p, p, p, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
	}
}

func run() error {
	cfgPath := flag.String("config", defaultConfigPath(), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	util.SetDefault(logger)

	history, profiles, streamer, err := buildProvider(cfg.Provider)
	if err != nil {
		return err
	}

	store := market.NewStore(cfg.Tickers)
	if iv, err := market.ParseInterval(cfg.UI.DefaultInterval); err == nil {
		for _, sym := range cfg.Tickers {
			// Store is not shared yet; seeding the window before the
			// engine starts is safe.
			if err := store.SetInterval(sym, iv); err != nil {
				return err
			}
		}
	} else if cfg.UI.DefaultInterval != "" {
		logger.Warn("ignoring bad default_interval", "value", cfg.UI.DefaultInterval, "error", err)
	}

	eng := engine.New(store, history, profiles, streamer, logger)
	defer eng.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- eng.Run(ctx) }()

	logger.Info("starting",
		"tickers", cfg.Tickers,
		"provider", cfg.Provider.Kind,
		"refresh_ms", cfg.UI.RefreshMs,
	)

	model := ui.New(eng, time.Duration(cfg.UI.RefreshMs)*time.Millisecond, logger)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}

	// Quitting the UI shut the engine down; wait for the worker to drain.
	eng.Close()
	cancel()
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
