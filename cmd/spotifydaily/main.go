package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/spotifydaily/internal/auth"
	"github.com/jask/spotifydaily/internal/browser"
	"github.com/jask/spotifydaily/internal/config"
	"github.com/jask/spotifydaily/internal/dashboard"
	"github.com/jask/spotifydaily/internal/database"
	"github.com/jask/spotifydaily/internal/database/repository"
	"github.com/jask/spotifydaily/internal/secrets"
	"github.com/jask/spotifydaily/internal/spotify"
	"github.com/jask/spotifydaily/internal/tui"
)

const usage = `usage: spotifydaily [--no-seed] [command]

commands:
  (none)                      open the dashboard
  login                       authorize with Spotify in the browser
  state show                  print the persisted screen state
  state set artists|tracks R  set a screen's time range (short_term, medium_term, long_term)
  state clear                 delete the persisted screen state
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("spotifydaily: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("spotifydaily", flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() { fmt.Fprint(stdout, usage) }
	noSeed := fs.Bool("no-seed", false, "do not write default screen state")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	defer closeLog()

	rest := fs.Args()
	if len(rest) > 0 && rest[0] == "login" {
		return runLogin(ctx, cfg, stdout, logger)
	}

	db, err := database.Open(ctx, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	if len(rest) == 0 && !*noSeed {
		tr, err := spotify.ParseTimeRange(cfg.UI.DefaultTimeRange)
		if err != nil {
			return fmt.Errorf("ui.default_time_range: %w", err)
		}
		if err := database.SeedDefaults(ctx, db, tr); err != nil {
			return fmt.Errorf("seed defaults: %w", err)
		}
	}

	if len(rest) == 0 {
		return runDashboard(ctx, cfg, repository.NewStateRepo(db), logger)
	}
	switch rest[0] {
	case "state":
		return runState(ctx, db, rest[1:], stdout)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

func runDashboard(ctx context.Context, cfg config.Config, states *repository.StateRepo, logger *slog.Logger) error {
	client := spotify.NewClient(tokenSource(cfg, logger),
		spotify.WithBaseURL(cfg.Spotify.APIURL),
		spotify.WithHTTPClient(&http.Client{Timeout: cfg.Spotify.Timeout}),
		spotify.WithLogger(logger),
	)
	links := browser.NewOSPresenter(ctx, logger)
	defer links.Wait()

	state := dashboard.New(ctx, dashboard.Deps{
		Session: client,
		Data:    states,
		Links:   links,
		Logger:  logger,
	}, dashboard.WithCloseHook(func() { logger.Info("dashboard closed") }))
	defer state.Close()

	defaultRange, _ := spotify.ParseTimeRange(cfg.UI.DefaultTimeRange)
	app := tui.New(ctx, tui.Deps{
		State:        state,
		Session:      client,
		Screens:      states,
		DetailLimit:  cfg.UI.DetailLimit,
		DefaultRange: defaultRange,
		Logger:       logger,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// tokenSource prefers a raw token from SPOTIFY_TOKEN, then the stored login.
func tokenSource(cfg config.Config, logger *slog.Logger) spotify.TokenSource {
	if tok := strings.TrimSpace(os.Getenv("SPOTIFY_TOKEN")); tok != "" {
		logger.Info("using access token from SPOTIFY_TOKEN")
		return spotify.StaticToken(tok)
	}
	store, err := secrets.DefaultStore()
	if err != nil {
		logger.Warn("secret store unavailable", "error", err)
		return spotify.StaticToken("")
	}
	return auth.NewSource(oauthConfig(cfg), store, logger)
}

func oauthConfig(cfg config.Config) auth.Config {
	return auth.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ResolveClientSecret(),
		AccountsURL:  cfg.Spotify.AccountsURL,
		RedirectURI:  cfg.Spotify.RedirectURI(),
		HTTPClient:   &http.Client{Timeout: cfg.Spotify.Timeout},
	}
}

func runLogin(ctx context.Context, cfg config.Config, stdout io.Writer, logger *slog.Logger) error {
	store, err := secrets.DefaultStore()
	if err != nil {
		return fmt.Errorf("secret store: %w", err)
	}
	links := browser.NewOSPresenter(ctx, logger)
	defer links.Wait()

	fmt.Fprintf(stdout, "Waiting for Spotify on %s ...\n", cfg.Spotify.RedirectURI())
	tok, err := auth.Login(ctx, oauthConfig(cfg), cfg.Spotify.RedirectAddr, links, logger)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := auth.SaveToken(store, tok); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	fmt.Fprintln(stdout, "Logged in.")
	return nil
}

func newLogger(cfg config.LogConfig) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, fmt.Errorf("log.level: %w", err)
	}
	if cfg.Path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = f.Close() }, nil
}
