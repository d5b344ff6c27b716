package main

import (
	"context"
	"fmt"

	"stashwatch/internal/config"
	"stashwatch/internal/history"
	"stashwatch/internal/history/postgres"
	"stashwatch/internal/history/sqlite"
)

// openHistory opens the history store named by the DSN scheme. SQLite
// databases are opened read-only since the game server owns them.
func openHistory(ctx context.Context, cfg config.HistoryConfig) (history.Store, error) {
	backend, err := config.HistoryBackend(cfg.DSN)
	if err != nil {
		return nil, err
	}
	switch backend {
	case config.BackendSQLite:
		client, err := sqlite.New(ctx, cfg.DSN, sqlite.Options{TablePrefix: cfg.TablePrefix, ReadOnly: true})
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.BackendPostgres:
		client, err := postgres.New(ctx, cfg.DSN, cfg.TablePrefix)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported history backend %q", backend)
	}
}
