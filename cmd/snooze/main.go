// Command snooze is a client for Hack-or-Snooze story APIs.
//
// It has two subcommands:
//
//	snooze serve    run the client and open it in a browser at http://localhost:8080
//	snooze devapi   run an in-memory Hack-or-Snooze API for local development
//
// Settings come from SNOOZE_* environment variables (see internal/config);
// flags override them.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sakif/snooze/internal/config"
)

func main() {
	if err := rootApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "snooze:", err)
		os.Exit(1)
	}
}

func rootApp() *cli.App {
	return &cli.App{
		Name:  "snooze",
		Usage: "A Hack-or-Snooze story client",
		Description: `Browse, post, edit and favorite stories on a Hack-or-Snooze API.

		Settings can be given as environment variables, e.g.:

		--api-url => SNOOZE_API_URL=http://localhost:5000
		--port    => SNOOZE_PORT=8080`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log at debug level",
			},
		},
		Commands: []*cli.Command{
			serveCmd(),
			devapiCmd(),
		},
		Action: func(ctx *cli.Context) error {
			return cli.ShowAppHelp(ctx)
		},
	}
}

// loadConfig reads the environment and applies the global flags.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if ctx.IsSet("debug") {
		cfg.Debug = ctx.Bool("debug")
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
