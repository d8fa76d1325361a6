// Command setup prepares a campus records installation: schema migrations,
// the subject catalog, the seeded faculties and the superuser account.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	appRepos "github.com/yigit/campusrecords/internal/app/repositories"
	"github.com/yigit/campusrecords/internal/bootstrap"
	"github.com/yigit/campusrecords/internal/config"
	"github.com/yigit/campusrecords/internal/pkg/auth"
	"github.com/yigit/campusrecords/internal/pkg/logger"
	"github.com/yigit/campusrecords/internal/seed"
)

func main() {
	app := &cli.App{
		Name:  "setup",
		Usage: "prepare the campus records database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   bootstrap.DefaultConfigPath,
				EnvVars: []string{"CONFIG_PATH"},
				Usage:   "path to the YAML configuration file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "apply pending schema migrations",
				Action: withStore(func(*cli.Context, *runtime) error { return nil }),
			},
			{
				Name:   "subjects",
				Usage:  "create the initial subject catalog",
				Action: withStore(setupSubjects),
			},
			{
				Name:   "faculties",
				Usage:  "create the seeded faculty accounts and bind them to subjects",
				Action: withStore(setupFaculties),
			},
			{
				Name:  "superuser",
				Usage: "create the administrative account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Usage: "overrides setup.superuser_username"},
					&cli.StringFlag{Name: "email", Usage: "overrides setup.superuser_email"},
					&cli.StringFlag{Name: "password", EnvVars: []string{"SUPERUSER_PASSWORD"}, Usage: "overrides setup.superuser_password"},
				},
				Action: withStore(setupSuperuser),
			},
			{
				Name:  "all",
				Usage: "run every setup step in order",
				Action: withStore(func(c *cli.Context, rt *runtime) error {
					for _, step := range []func(*cli.Context, *runtime) error{setupSubjects, setupFaculties, setupSuperuser} {
						if err := step(c, rt); err != nil {
							return err
						}
					}
					return nil
				}),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Setup failed")
		os.Exit(1)
	}
}

type runtime struct {
	cfg    *config.Config
	seeder *seed.Seeder
	logger zerolog.Logger
}

// withStore loads configuration and opens the store (running migrations)
// before action.
func withStore(action func(*cli.Context, *runtime) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
		if err != nil {
			return err
		}
		if cfg.Database.Driver != "postgres" {
			return fmt.Errorf("setup needs a persistent database, got driver %q", cfg.Database.Driver)
		}

		store, closeStore, err := bootstrap.OpenStore(c.Context, cfg, lgr)
		if err != nil {
			return err
		}
		defer closeStore()

		return action(c, newRuntime(cfg, store, lgr))
	}
}

func newRuntime(cfg *config.Config, store appRepos.Store, lgr zerolog.Logger) *runtime {
	return &runtime{
		cfg:    cfg,
		seeder: seed.NewSeeder(store, auth.NewPasswordHasher(cfg.Security.BcryptCost), lgr),
		logger: lgr,
	}
}

func setupSubjects(c *cli.Context, rt *runtime) error {
	created, err := rt.seeder.EnsureSubjectCatalog(ctxOf(c))
	if err != nil {
		return fmt.Errorf("error creating subjects: %w", err)
	}
	rt.logger.Info().Int("created", created).Msg("Subject catalog ready")
	return nil
}

func setupFaculties(c *cli.Context, rt *runtime) error {
	if err := rt.seeder.EnsureFaculties(ctxOf(c), rt.cfg.Setup.FacultyPassword); err != nil {
		return fmt.Errorf("error setting up faculties: %w", err)
	}
	rt.logger.Info().Msg("Seeded faculties ready")
	return nil
}

func setupSuperuser(c *cli.Context, rt *runtime) error {
	username := firstNonEmpty(c.String("username"), rt.cfg.Setup.SuperuserUsername)
	email := firstNonEmpty(c.String("email"), rt.cfg.Setup.SuperuserEmail)
	password := firstNonEmpty(c.String("password"), rt.cfg.Setup.SuperuserPassword)

	if err := rt.seeder.EnsureSuperuser(ctxOf(c), username, email, password); err != nil {
		return fmt.Errorf("error creating superuser: %w", err)
	}
	return nil
}

func ctxOf(c *cli.Context) context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
