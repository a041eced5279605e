package main

import (
	"fmt"
	"os"
	"strconv"

	"emperror.dev/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ManuelReschke/ServerHub/internal/pkg/env"
	"github.com/ManuelReschke/ServerHub/internal/pkg/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var source string

	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply the ServerHub SQL migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			env.SetupEnvFile()
			logger.Setup()
		},
	}
	rootCmd.PersistentFlags().StringVar(&source, "source", "file://migrations", "Location of the migration files")

	open := func() (*migrate.Migrate, error) {
		return newMigrate(source)
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Run all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrate(open, runUp)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrate(open, runDown)
			},
		},
		&cobra.Command{
			Use:   "goto VERSION",
			Short: "Migrate to the given version",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return errors.Wrap(err, "invalid version")
				}
				return withMigrate(open, func(m *migrate.Migrate) error {
					return runGoto(m, uint(version))
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current migration version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrate(open, runStatus)
			},
		},
	)

	return rootCmd
}

// databaseURL builds the golang-migrate MySQL URL from the DB_* variables.
func databaseURL() string {
	return fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true",
		env.GetEnv("DB_USER", "serverhub"),
		env.GetEnv("DB_PASSWORD", "serverhub"),
		env.GetEnv("DB_HOST", "db"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", "serverhub_db"),
	)
}

func newMigrate(source string) (*migrate.Migrate, error) {
	log.Info().
		Str("user", env.GetEnv("DB_USER", "serverhub")).
		Str("host", env.GetEnv("DB_HOST", "db")).
		Str("port", env.GetEnv("DB_PORT", "3306")).
		Str("database", env.GetEnv("DB_NAME", "serverhub_db")).
		Msg("connecting to database")

	m, err := migrate.New(source, databaseURL())
	if err != nil {
		return nil, errors.Wrap(err, "initialize migrations")
	}
	return m, nil
}

func withMigrate(open func() (*migrate.Migrate, error), run func(*migrate.Migrate) error) error {
	m, err := open()
	if err != nil {
		return err
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Warn().AnErr("source", sourceErr).AnErr("database", dbErr).Msg("failed to close migration resources")
		}
	}()
	return run(m)
}

func runUp(m *migrate.Migrate) error {
	err := m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info().Msg("no change: database is up to date")
	case err != nil:
		return errors.Wrap(err, "run migrations")
	default:
		log.Info().Msg("migrations applied")
	}
	return nil
}

func runDown(m *migrate.Migrate) error {
	if err := m.Steps(-1); err != nil {
		return errors.Wrap(err, "roll back last migration")
	}
	log.Info().Msg("rolled back last migration")
	return nil
}

func runGoto(m *migrate.Migrate, version uint) error {
	err := m.Migrate(version)
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info().Uint("version", version).Msg("no change: database already at version")
	case err != nil:
		return errors.WrapWithDetails(err, "migrate to version", "version", version)
	default:
		log.Info().Uint("version", version).Msg("migrated to version")
	}
	return nil
}

func runStatus(m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		log.Info().Msg("no migrations applied yet")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read migration version")
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("current migration version")
	return nil
}
