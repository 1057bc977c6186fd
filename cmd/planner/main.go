package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/yigit/degreeplan/internal/app/models"
	"github.com/yigit/degreeplan/internal/app/services"
	"github.com/yigit/degreeplan/internal/bootstrap"
	"github.com/yigit/degreeplan/internal/config"
	"github.com/yigit/degreeplan/internal/pkg/apperrors"
	"github.com/yigit/degreeplan/internal/pkg/logger"
	"gopkg.in/yaml.v3"
)

// exitPlanFailed is returned when no plan could be produced.
const exitPlanFailed = 2

func main() {
	app := &cli.App{
		Name:  "planner",
		Usage: "plan the remaining terms of a degree",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   bootstrap.DefaultConfigPath,
				Usage:   "path to the YAML config file",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Commands: []*cli.Command{
			planCommand(),
			courseCommand(),
			seedCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("planner failed")
		var exit cli.ExitCoder
		if errors.As(err, &exit) {
			os.Exit(exit.ExitCode())
		}
		os.Exit(1)
	}
}

func planCommand() *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "produce a term-by-term plan for a student profile",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "profile", Aliases: []string{"p"}, Required: true, Usage: "student profile YAML file"},
			&cli.DurationFlag{Name: "timeout", Usage: "solver budget per attempt, overrides the config"},
			&cli.BoolFlag{Name: "no-relax", Usage: "fail instead of relaxing the rules when no plan exists"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write the plan to this file instead of stdout"},
		},
		Action: func(c *cli.Context) error {
			profile, err := readProfile(c.String("profile"))
			if err != nil {
				return err
			}

			deps, cleanup, err := setup(c)
			if err != nil {
				return err
			}
			defer cleanup()

			req := services.PlanRequest{Profile: profile, Timeout: c.Duration("timeout")}
			if c.Bool("no-relax") {
				relax := false
				req.Relax = &relax
			}

			result, err := deps.PlannerService.Plan(c.Context, req)
			if err != nil {
				if details := apperrors.Details(err); details != nil {
					_ = writeYAML(os.Stderr, details)
				}
				return cli.Exit(err.Error(), exitPlanFailed)
			}

			out := io.Writer(os.Stdout)
			if path := c.String("output"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				out = f
			}
			return writeYAML(out, result)
		},
	}
}

func courseCommand() *cli.Command {
	return &cli.Command{
		Name:      "course",
		Usage:     "show a catalog course with its prerequisite paths",
		ArgsUsage: "CODE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one course code", 1)
			}

			deps, cleanup, err := setup(c)
			if err != nil {
				return err
			}
			defer cleanup()

			course, err := deps.CatalogService.GetCourse(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			return writeYAML(os.Stdout, course)
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "migrate the database and import the YAML catalog into it",
		Action: func(c *cli.Context) error {
			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
			if err != nil {
				return err
			}
			if !cfg.UsesPostgres() {
				return cli.Exit(fmt.Sprintf("seed needs catalog.source %q", config.CatalogSourcePostgres), 1)
			}
			// seeded below, not during setup
			cfg.Catalog.Seed = false

			dbPool, err := bootstrap.SetupDatabase(cfg, lgr)
			if err != nil {
				return err
			}
			defer dbPool.Close()

			ctx, cancel := context.WithTimeout(c.Context, 5*time.Minute)
			defer cancel()
			stats, err := bootstrap.SeedCatalog(ctx, cfg, dbPool, lgr)
			if err != nil {
				return err
			}
			lgr.Info().Int("created", stats.Created).Int("skipped", stats.Skipped).Msg("catalog seeded")
			return nil
		},
	}
}

// setup loads the config and builds the services. The returned cleanup
// releases the database pool, if any.
func setup(c *cli.Context) (*bootstrap.Dependencies, func(), error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	// stdout is kept for the result
	lc := logger.FromSettings(cfg.Logging.Level, cfg.Logging.Format)
	lc.Output = os.Stderr
	lgr := logger.Configure(lc)

	dbPool, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if dbPool != nil {
			dbPool.Close()
		}
	}

	deps, err := bootstrap.BuildDependencies(cfg, dbPool, lgr)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return deps, cleanup, nil
}

func readProfile(path string) (models.StudentProfile, error) {
	var profile models.StudentProfile
	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("failed to read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return profile, nil
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write YAML: %w", err)
	}
	return enc.Close()
}
