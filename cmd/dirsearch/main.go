package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dirsearch"
	"github.com/kailas-cloud/dirsearch/internal/config"
	logpkg "github.com/kailas-cloud/dirsearch/internal/logger"
	"github.com/kailas-cloud/dirsearch/internal/version"
)

func main() {
	app := &cli.App{
		Name:    "dirsearch",
		Usage:   "Search a company directory from the terminal or serve it to a web front-end",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Configuration environment (config/<env>.yaml)",
				EnvVars: []string{"ENV"},
				Value:   "local",
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Directory backend address; overrides backend.base_url",
				EnvVars: []string{"DIRSEARCH_BASE_URL"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: debug, info, warn, error",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			searchCommand(),
			suggestCommand(),
			healthCommand(),
			serveCommand(),
			tuiCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "dirsearch:", err)
		os.Exit(1)
	}
}

// loadConfig reads config/<env>.yaml when present and applies flag overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.LoadOrDefault(c.String("env"))
	if err != nil {
		return config.Config{}, err
	}
	if u := strings.TrimSpace(c.String("base-url")); u != "" {
		cfg.Backend.BaseURL = u
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger builds the logger for the command. The CLI logs to stderr so stdout stays parseable.
func newLogger(c *cli.Context, cfg config.Config, opts logpkg.Options) (*zap.Logger, error) {
	if opts.Level == "" {
		opts.Level = cfg.Logging.Level
	}
	env := c.String("env")
	if env != logpkg.EnvProd {
		env = logpkg.EnvDev
	}
	return logpkg.New(env, opts)
}

func newClient(cfg config.Config, logger *zap.Logger, reg prometheus.Registerer) (*dirsearch.Client, error) {
	opts := []dirsearch.Option{
		dirsearch.WithConfig(cfg),
		dirsearch.WithLogger(logger),
	}
	if reg != nil {
		opts = append(opts, dirsearch.WithPrometheus(reg))
	}
	client, err := dirsearch.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}
