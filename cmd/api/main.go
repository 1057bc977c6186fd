package main

import (
	"os"

	"github.com/urfave/cli/v2"
	"github.com/yigit/degreeplan/internal/bootstrap"
	"github.com/yigit/degreeplan/internal/pkg/logger"
	"github.com/yigit/degreeplan/internal/server"
)

func main() {
	app := &cli.App{
		Name:  "degreeplan-api",
		Usage: "serve the course planner over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   bootstrap.DefaultConfigPath,
				Usage:   "path to the YAML config file",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Action: func(c *cli.Context) error {
			srv, err := server.NewServer(c.String("config"))
			if err != nil {
				// Error details are logged within NewServer's setup functions
				logger.Error().Err(err).Msg("Failed to initialize server")
				return err
			}

			// Run blocks until a shutdown signal
			if err := srv.Run(); err != nil {
				logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
				return err
			}

			logger.Info().Msg("Application finished gracefully.")
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
