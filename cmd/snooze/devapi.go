package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/sakif/snooze/internal/auth"
	"github.com/sakif/snooze/internal/devapi"
	"github.com/sakif/snooze/internal/model"
	"github.com/sakif/snooze/internal/server"
)

// Demo account created by --seed.
const (
	seedUsername = "demo"
	seedPassword = "demo-password"
	seedStories  = 25
)

func devapiCmd() *cli.Command {
	return &cli.Command{
		Name:  "devapi",
		Usage: "Run an in-memory Hack-or-Snooze API",
		Description: `Serves the Hack-or-Snooze REST API from memory. Data is lost on exit.
		Point the client at it with SNOOZE_API_URL=http://localhost:5000.`,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Usage: "port to serve the API on"},
			&cli.StringFlag{Name: "secret", Usage: "secret used to sign login tokens"},
			&cli.BoolFlag{
				Name:  "seed",
				Usage: fmt.Sprintf("create the account %s/%s and %d sample stories", seedUsername, seedPassword, seedStories),
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			if ctx.IsSet("port") {
				cfg.DevAPIPort = ctx.Int("port")
			}
			if ctx.IsSet("secret") {
				cfg.DevAPISecret = ctx.String("secret")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := newLogger(cfg).With(slog.String("component", "devapi"))

			tokens, err := auth.NewTokenService(cfg.DevAPISecret, 0)
			if err != nil {
				return fmt.Errorf("creating token service: %w", err)
			}
			api := devapi.New(tokens, auth.NewPasswordService(), logger)

			if ctx.Bool("seed") {
				if err := api.Seed(seedUsername, seedPassword, "Demo User", sampleStories(seedStories)...); err != nil {
					return err
				}
				logger.Info("seeded demo account",
					slog.String("username", seedUsername),
					slog.Int("stories", seedStories),
				)
			}

			sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("dev API starting", slog.String("url", fmt.Sprintf("http://localhost:%d", cfg.DevAPIPort)))
			return server.ListenAndServe(sigCtx, fmt.Sprintf(":%d", cfg.DevAPIPort), api, logger)
		},
	}
}

func sampleStories(n int) []model.StoryFields {
	out := make([]model.StoryFields, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, model.StoryFields{
			Title:  fmt.Sprintf("Sample story #%d", i),
			Author: "Snooze",
			URL:    fmt.Sprintf("https://example.com/stories/%d", i),
		})
	}
	return out
}
