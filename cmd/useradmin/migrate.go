package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/useradmin/useradmin/internal/config"
	"github.com/useradmin/useradmin/internal/repository"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply or inspect PostgreSQL schema migrations",
		Long:      "Runs the embedded goose migrations against DATABASE_URL. Defaults to up.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{repository.MigrateUp, repository.MigrateDown, repository.MigrateStatus},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := repository.MigrateUp
			if len(args) == 1 {
				direction = args[0]
			}
			if err := runMigrate(cmd, a, direction); err != nil {
				return reportErr(cmd, err)
			}
			return nil
		},
	}
}

func runMigrate(cmd *cobra.Command, a *app, direction string) error {
	if a.cfg.StoreDriver != config.DriverPostgres {
		return errors.New("migrate requires STORE_DRIVER=postgres")
	}

	ctx := cmd.Context()
	repo, err := repository.New(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %s", sanitizeError(err, a.cfg.DatabaseURL))
	}
	defer repo.Close()

	if err := repo.Migrate(ctx, direction); err != nil {
		return err
	}

	a.logger.Info("migration finished", "direction", direction)
	return nil
}
