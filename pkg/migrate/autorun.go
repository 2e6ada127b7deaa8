package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/craftmarket-backend/pkg/config"
	"github.com/angelmondragon/craftmarket-backend/pkg/db"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
)

// MaybeRunDev applies the schema automatically in dev when the auto-migrate flag is on.
// Postgres goes through goose; the SQLite dev database gets the embedded schema.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir, "db_driver": client.Driver()})

	if client.Driver() == "sqlite" {
		logg.Info(ctx, "applying sqlite schema (dev auto-run)")
		if err := ApplySQLiteSchema(ctx, client.DB()); err != nil {
			return fmt.Errorf("applying sqlite schema: %w", err)
		}
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	logg.Info(ctx, "running goose migrations (dev auto-run)")
	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	logg.Info(ctx, "goose migrations completed")
	return nil
}
