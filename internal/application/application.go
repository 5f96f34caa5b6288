// Package application wires the process together: configuration, the
// pricing API client, the session store, the workers and the HTTP surface.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"buybox_console/internal/config"
	"buybox_console/internal/domain/service/pricing"
	"buybox_console/internal/infrastructure/pricingapi"
	"buybox_console/internal/server"
	"buybox_console/internal/store"
	"buybox_console/internal/worker"
	"buybox_console/pkg/application/modules"
	"buybox_console/pkg/contextx"
	"buybox_console/pkg/logx"
	"buybox_console/pkg/middlewarex"
	"buybox_console/pkg/schedule"
)

const httpServerReadHeaderTimeout = 5 * time.Second

func Run(ctx context.Context, log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	log = log.With(
		slog.String(logx.FieldAppName, cfg.App.Name),
		slog.String(logx.FieldAppVersion, cfg.App.Version),
	)
	ctx = contextx.WithLogger(ctx, log)

	calc := pricing.NewCalculator(cfg.Thresholds)
	client := pricingapi.NewClient(cfg.PricingAPI)
	st := store.New(cfg.Thresholds, calc, schedule.NewTimerScheduler())

	poller := worker.NewFeedPoller(client, cfg.Thresholds)
	guard := worker.NewGuard(calc, cfg.Thresholds)
	coordinator := worker.NewCoordinator(client, st, guard, poller, cfg.Thresholds)

	// The initial load is best effort: the operator can reload from the
	// dashboard, so starting with an empty session beats not starting.
	if listings, err := client.FetchResults(ctx); err != nil {
		log.Warn("initial dataset load failed", logx.Error(err))
	} else {
		st.ReplaceAll(listings)
		log.Info("dataset loaded", "records", st.RawTotal())
	}

	if err := poller.Start(ctx); err != nil {
		return fmt.Errorf("poller.Start: %w", err)
	}
	defer poller.Stop()

	srv := server.NewServer(
		server.NewListingServer(st, coordinator, client, calc, cfg.Thresholds),
		server.NewFeedServer(poller, client),
	)

	masker := logx.NewSensitiveDataMasker()

	router := chi.NewRouter()
	router.Use(
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.Recovery,
		middlewarex.RequestLogging(masker, cfg.Server.LogFieldMaxLen),
		middlewarex.ResponseLogging(masker, cfg.Server.LogFieldMaxLen),
	)
	srv.RegisterRoutes(router)

	httpServer := &http.Server{ //nolint:exhaustruct
		Addr:              cfg.Server.ListenAddress,
		Handler:           router,
		ReadHeaderTimeout: httpServerReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	modules.HTTPServer{ShutdownTimeout: cfg.Server.ShutdownTimeout}.Run(gctx, g, httpServer)
	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.Server.ProbeListenAddress,
	}.Run(gctx, g)
	modules.MetricServer{ListenAddress: cfg.Server.MetricsListenAddress}.Run(gctx, g)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	return nil
}
