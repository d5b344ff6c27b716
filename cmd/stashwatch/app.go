package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"stashwatch/internal/config"
	"stashwatch/internal/correlate"
	"stashwatch/internal/history"
	"stashwatch/internal/index"
	"stashwatch/internal/logging"
	"stashwatch/internal/watch"
)

// app holds what every command that touches history needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  history.Store
	watch  watch.List
	index  index.Holder
}

func openApp(ctx context.Context, path string) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	watchList, err := watch.New(cfg.TargetPlayers)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}

	store, err := openHistory(ctx, cfg.History)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		watch:  watchList,
	}, nil
}

// buildIndex runs the one bulk history query and installs the result.
func (a *app) buildIndex(ctx context.Context) error {
	a.logger.Info("Building history index",
		zap.Strings("target_players", a.watch.Users()),
		zap.Duration("lookback", a.cfg.Lookback),
	)
	idx, err := index.Build(ctx, a.store, a.watch, a.cfg.Lookback)
	if err != nil {
		return err
	}
	a.index.Install(idx)
	a.logger.Info("History index installed",
		zap.Int("locations", idx.Len()),
		zap.Strings("worlds", idx.Worlds()),
	)
	return nil
}

func (a *app) correlator(notifier correlate.Notifier) (*correlate.Correlator, error) {
	return correlate.New(a.logger, correlate.Config{
		Index:    &a.index,
		History:  a.store,
		Watch:    a.watch,
		Lookback: a.cfg.Lookback,
		Notifier: notifier,
	})
}

func (a *app) Close(ctx context.Context) {
	if err := a.store.Close(ctx); err != nil {
		a.logger.Warn("Closing history store", zap.Error(err))
	}
	_ = a.logger.Sync()
}
