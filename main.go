package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/fragmede/postpeek/internal/api"
	"github.com/fragmede/postpeek/internal/cache"
	"github.com/fragmede/postpeek/internal/config"
	"github.com/fragmede/postpeek/internal/logutils"
	"github.com/fragmede/postpeek/internal/ui"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

type flags struct {
	ConfigPath string
	LogLevel   string
	LogFile    string
	APIURL     string
	CacheDir   string
}

func main() {
	var (
		f         flags
		cfg       config.Config
		logCloser func()
	)

	app := &cli.Command{
		Name:      "postpeek",
		Usage:     "Browse posts and manage their comments from the terminal",
		UsageText: "postpeek [global options]",
		Version:   build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("POSTPEEK_CONFIG"),
				Value:       config.DefaultPath(),
				Destination: &f.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("POSTPEEK_LOG_LEVEL"),
				Value:       "info",
				Destination: &f.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <cache-dir>/postpeek.log)",
				Sources:     cli.EnvVars("POSTPEEK_LOG_FILE"),
				Destination: &f.LogFile,
			},
			&cli.StringFlag{
				Name:        "api-url",
				Usage:       "base URL of the posts API",
				Sources:     cli.EnvVars("POSTPEEK_API_URL"),
				Destination: &f.APIURL,
			},
			&cli.StringFlag{
				Name:        "cache-dir",
				Usage:       "directory for the local cache",
				Sources:     cli.EnvVars("POSTPEEK_CACHE_DIR"),
				Destination: &f.CacheDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			cfg, err = loadConfig(f)
			if err != nil {
				return ctx, err
			}

			logFile := f.LogFile
			if logFile == "" {
				logFile = cfg.LogPath()
			}
			logger, closer, err := logutils.New(f.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer
			return ctx, nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() > 0 {
				return fmt.Errorf("unexpected argument %q. Run 'postpeek --help' for usage", c.Args().First())
			}
			return run(cfg)
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	exitCode := 0
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		exitCode = 1
	}
	os.Exit(exitCode)
}

// loadConfig reads the config file and applies flag overrides on top.
func loadConfig(f flags) (config.Config, error) {
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if f.APIURL != "" {
		cfg.API.BaseURL = f.APIURL
	}
	if f.CacheDir != "" {
		cfg.Cache.Dir = f.CacheDir
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func run(cfg config.Config) error {
	log.Info().
		Str("version", version).
		Str("api", cfg.API.BaseURL).
		Msg("starting postpeek")

	// The cache only saves round trips; run without it if it cannot be opened.
	var db *cache.DB
	if err := os.MkdirAll(cfg.Cache.Dir, 0o755); err != nil {
		log.Warn().Err(err).Str("dir", cfg.Cache.Dir).Msg("cache disabled")
	} else if db, err = cache.Open(cfg.DBPath()); err != nil {
		log.Warn().Err(err).Str("path", cfg.DBPath()).Msg("cache disabled")
		db = nil
	}
	if db != nil {
		defer func() {
			if err := db.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close cache")
			}
		}()
	}

	client := api.NewClient(api.Options{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       cfg.API.Timeout,
		MaxConcurrent: cfg.API.MaxConcurrent,
	})

	app := ui.NewApp(cfg, client, db)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
