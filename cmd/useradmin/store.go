package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/useradmin/useradmin/internal/config"
	"github.com/useradmin/useradmin/internal/repository"
	"github.com/useradmin/useradmin/internal/repository/mongostore"
)

// openStore connects the store selected by STORE_DRIVER. The returned
// close function is never nil.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.UserStore, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.StoreDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory user store; records are lost on exit")
		return repository.NewMemoryStore(), noop, nil

	case config.DriverPostgres:
		repo, err := repository.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			return nil, noop, errors.New("connect postgres")
		}
		logger.Info("connected to database")

		if cfg.AutoMigrate {
			if err := repo.Migrate(ctx, repository.MigrateUp); err != nil {
				repo.Close()
				return nil, noop, err
			}
			logger.Info("migrations applied")
		}

		return repo, func(context.Context) error {
			repo.Close()
			return nil
		}, nil

	case config.DriverMongo:
		store, err := mongostore.New(ctx, cfg.MongoURL, cfg.MongoDatabase)
		if err != nil {
			logger.Error("failed to connect to MongoDB",
				slog.String("error", sanitizeError(err, cfg.MongoURL)),
				slog.String("mongo_url", redactURL(cfg.MongoURL)),
			)
			return nil, noop, errors.New("connect mongo")
		}
		logger.Info("connected to MongoDB", "database", cfg.MongoDatabase)
		return store, store.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
