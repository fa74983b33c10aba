package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dirsearch"
	logpkg "github.com/kailas-cloud/dirsearch/internal/logger"
)

const defaultTimeout = 30 * time.Second

func timeoutFlag() cli.Flag {
	return &cli.DurationFlag{
		Name:  "timeout",
		Usage: "Timeout for the whole command",
		Value: defaultTimeout,
	}
}

// oneShotClient builds a client for the non-interactive commands.
func oneShotClient(c *cli.Context) (*dirsearch.Client, *zap.Logger, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	// Quiet unless asked: stdout carries the JSON output, stderr only problems.
	level := c.String("log-level")
	if level == "" {
		level = "warn"
	}
	logger, err := newLogger(c, cfg, logpkg.Options{Level: level})
	if err != nil {
		return nil, nil, err
	}
	client, err := newClient(cfg, logger, nil)
	if err != nil {
		return nil, nil, err
	}
	return client, logger, nil
}

func withTimeout(c *cli.Context) (context.Context, context.CancelFunc) {
	timeout := c.Duration("timeout")
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(c.Context, timeout)
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search companies and print the result page as JSON",
		ArgsUsage: "[term]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "industry", Usage: "Industry filter"},
			&cli.StringFlag{Name: "location", Usage: "Locality filter"},
			&cli.StringFlag{Name: "size", Usage: "Company-size filter, e.g. 51-200"},
			&cli.StringFlag{Name: "year", Usage: "Founded in this year or later"},
			&cli.StringSliceFlag{Name: "tag", Usage: "Required tag; repeatable"},
			&cli.IntFlag{Name: "page", Usage: "1-based page", Value: 1},
			&cli.IntFlag{Name: "page-size", Usage: "Companies per page (default from config)"},
			&cli.StringFlag{Name: "sort", Usage: "Sort key: foundingYear, industry, size, location", Value: dirsearch.SortFoundingYear},
			&cli.StringFlag{Name: "order", Usage: "Sort order: asc or desc", Value: string(dirsearch.Asc)},
			timeoutFlag(),
		},
		Action: runSearch,
	}
}

func runSearch(c *cli.Context) error {
	order := dirsearch.Order(strings.ToLower(c.String("order")))
	if order != dirsearch.Asc && order != dirsearch.Desc {
		return fmt.Errorf("invalid --order %q: must be asc or desc", c.String("order"))
	}

	client, logger, err := oneShotClient(c)
	if err != nil {
		return err
	}
	defer client.Close()
	defer func() { _ = logger.Sync() }()

	ctx, cancel := withTimeout(c)
	defer cancel()

	b := client.Companies().
		Term(strings.TrimSpace(strings.Join(c.Args().Slice(), " "))).
		Industry(c.String("industry")).
		Location(c.String("location")).
		Size(c.String("size")).
		Page(c.Int("page")).
		SortBy(c.String("sort"), order)
	if y := c.String("year"); y != "" {
		b.FoundedSince(y)
	}
	for _, tag := range c.StringSlice("tag") {
		b.Tag(tag)
	}
	if n := c.Int("page-size"); n > 0 {
		b.PageSize(n)
	}

	res, err := b.Do(ctx)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, res)
}

func suggestCommand() *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Print autosuggest candidates for a partial query as JSON",
		ArgsUsage: "<query>",
		Flags:     []cli.Flag{timeoutFlag()},
		Action: func(c *cli.Context) error {
			query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if query == "" {
				return cli.Exit("suggest: query is required", 2)
			}

			client, logger, err := oneShotClient(c)
			if err != nil {
				return err
			}
			defer client.Close()
			defer func() { _ = logger.Sync() }()

			ctx, cancel := withTimeout(c)
			defer cancel()

			items, err := client.Suggest(ctx, query)
			if err != nil {
				return err
			}
			return printJSON(c.App.Writer, items)
		},
	}
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Probe the directory backend; exits 1 when it is unhealthy",
		Action: func(c *cli.Context) error {
			client, logger, err := oneShotClient(c)
			if err != nil {
				return err
			}
			defer client.Close()
			defer func() { _ = logger.Sync() }()

			status := client.Health(c.Context)
			if err := printJSON(c.App.Writer, status); err != nil {
				return err
			}
			if !status.OK() {
				return cli.Exit("backend unhealthy", 1)
			}
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
