package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/sakif/snooze/internal/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the story client",
		Description: `Restores the saved session, loads the first page of stories and
		serves the client on the configured port until interrupted.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api-url", Usage: "base URL of the Hack-or-Snooze API"},
			&cli.IntFlag{Name: "port", Usage: "port to serve the client on"},
			&cli.StringFlag{Name: "session-db", Usage: "SQLite file holding the saved session"},
			&cli.DurationFlag{Name: "api-timeout", Usage: "timeout for a single API call"},
			&cli.IntFlag{Name: "story-limit", Usage: "stories per feed page"},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			if ctx.IsSet("api-url") {
				cfg.APIURL = ctx.String("api-url")
			}
			if ctx.IsSet("port") {
				cfg.Port = ctx.Int("port")
			}
			if ctx.IsSet("session-db") {
				cfg.SessionDB = ctx.String("session-db")
			}
			if ctx.IsSet("api-timeout") {
				cfg.APITimeout = ctx.Duration("api-timeout")
			}
			if ctx.IsSet("story-limit") {
				cfg.StoryLimit = ctx.Int("story-limit")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cfg)
			srv, err := server.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			return srv.Start()
		},
	}
}
