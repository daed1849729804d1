package store

import (
	"context"
	"log/slog"

	"github.com/JonMunkholm/popdash/internal/config"
	"github.com/JonMunkholm/popdash/internal/core"
)

// LoadDataset loads the dataset from the configured source: the CSV file
// at Dataset.Path, or the Database.Table in Postgres. The pool used for
// Postgres is closed before returning since the dataset is held in memory.
func LoadDataset(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*core.Dataset, error) {
	if cfg.Dataset.Source != config.SourcePostgres {
		return core.LoadCSV(cfg.Dataset.Path, core.LoadOptions{
			Strict: cfg.Dataset.Strict,
			Logger: logger,
		})
	}

	pool, err := Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()
	return Load(ctx, pool, cfg.Database.Table)
}
