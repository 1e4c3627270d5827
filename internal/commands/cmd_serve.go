package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/annosync/internal/server"
)

type ServeCmd struct {
	flags *Flags

	addr   string
	token  string
	secret string
}

// NewServeCmd creates a new serve command.
func NewServeCmd(flags *Flags) *ServeCmd {
	return &ServeCmd{flags: flags}
}

// Register adds the serve command to the application.
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run the sync service",
		UsageText: "annosync serve [--addr :8080]",
		Description: `Runs the HTTP service that accepts annotation batches and creates
GitHub issues from them. The GitHub token stays on this side; sync
clients only ever hold the service endpoint and the shared secret.

The token is read from GITHUB_TOKEN and the shared secret from
ANNOSYNC_SHARED_SECRET (falling back to the config file).

Examples:
  GITHUB_TOKEN=ghp_... annosync serve
  GITHUB_TOKEN=ghp_... annosync serve --addr 127.0.0.1:9090`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (overrides config)",
				Destination: &cmd.addr,
			},
			&cli.StringFlag{
				Name:        "token",
				Usage:       "GitHub token used to create issues",
				Sources:     cli.EnvVars("GITHUB_TOKEN"),
				Destination: &cmd.token,
			},
			&cli.StringFlag{
				Name:        "secret",
				Usage:       "shared secret clients must present",
				Sources:     cli.EnvVars("ANNOSYNC_SHARED_SECRET"),
				Destination: &cmd.secret,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config

	addr := cmd.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	secret := cmd.secret
	if secret == "" {
		secret = cfg.SharedSecret
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{
		Addr:         addr,
		SharedSecret: secret,
		Token:        cmd.token,
		APIURL:       cfg.Server.APIURL,
		GraphQLURL:   cfg.Server.GraphQLURL,
	})

	return srv.Start(ctx)
}
