package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stashwatch/internal/alert"
	"stashwatch/internal/gateway"
	"stashwatch/internal/telemetry"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Build the history index and accept container events",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, configPath, nil)
}

// serve runs until ctx is cancelled. The index is installed and the
// dispatcher started before the gateway listens; started, when set, gets the
// listen address once connections are accepted.
func serve(ctx context.Context, path string, started func(addr string)) error {
	a, err := openApp(ctx, path)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	logger := a.logger

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "stashwatch",
		ServiceVersion: version,
		TraceExporter:  a.cfg.Telemetry.TraceExporter,
		OTLPEndpoint:   a.cfg.Telemetry.OTLPEndpoint,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("Flushing traces", zap.Error(err))
		}
	}()

	if err := a.buildIndex(ctx); err != nil {
		logger.Error("History index build failed", zap.Error(err))
		return err
	}

	sender, err := alert.NewWebhookSender(logger, alert.WebhookConfig{
		URL:     a.cfg.WebhookURL,
		Timeout: a.cfg.Dispatch.Timeout,
	})
	if err != nil {
		return err
	}
	dispatcher := alert.NewDispatcher(logger, sender, alert.DispatcherConfig{
		Workers:       a.cfg.Dispatch.Workers,
		QueueSize:     a.cfg.Dispatch.QueueSize,
		Timeout:       a.cfg.Dispatch.Timeout,
		RatePerSecond: a.cfg.Dispatch.RatePerSecond,
	})

	correlator, err := a.correlator(dispatcher)
	if err != nil {
		return err
	}
	gw := gateway.New(logger, gateway.Config{
		Token: a.cfg.Gateway.Token,
	}, correlator, &a.index)

	logger.Info("Starting stashwatch",
		zap.String("version", version),
		zap.String("webhook", sender.RedactedURL()),
		zap.Int("target_players", a.watch.Len()),
		zap.Bool("gateway_auth", a.cfg.Gateway.Token != ""),
	)

	ln, err := net.Listen("tcp", a.cfg.Gateway.Listen)
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	dispatcher.Start(gctx)
	g.Go(func() error {
		return gw.Serve(gctx, ln)
	})
	if started != nil {
		started(ln.Addr().String())
	}

	err = g.Wait()
	dispatcher.Close()
	logger.Info("Stopped")
	return err
}
