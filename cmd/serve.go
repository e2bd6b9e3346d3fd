package main

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"subsea-inspector/internal/api/rest"
	"subsea-inspector/internal/api/telegram"
	"subsea-inspector/internal/container"
	"subsea-inspector/internal/infrastructure/seed"
	"subsea-inspector/internal/infrastructure/storage"
	"subsea-inspector/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(rt *runtime) *cobra.Command {
	var withSeed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API and, when a token is configured, the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.serve(cmd.Context(), withSeed)
		},
	}
	cmd.Flags().String("address", "", "listen address, e.g. :8080")
	cmd.Flags().BoolVar(&withSeed, "seed", false, "load the built-in Norwegian shelf dataset before serving")
	mustBind(rt.v, "server.address", cmd, "address")
	return cmd
}

func (rt *runtime) serve(ctx context.Context, withSeed bool) error {
	db, err := rt.openDB()
	if err != nil {
		return err
	}
	defer func() { _ = storage.Close(db) }()

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	services, err := container.Build(rt.cfg, db, rt.log)
	if err != nil {
		return err
	}

	if withSeed {
		ds, err := seed.Default()
		if err != nil {
			return err
		}
		sum, err := seed.Apply(ctx, ds, services.FieldService, storage.NewCableRepository(db))
		if err != nil {
			return err
		}
		rt.log.Info("dataset loaded", "fields", sum.Fields, "cable_routes", sum.Routes)
	}

	srv := rest.NewServer(services, rest.Options{
		Address:      rt.cfg.Server.Address,
		ReadTimeout:  rt.cfg.Server.ReadTimeout,
		WriteTimeout: rt.cfg.Server.WriteTimeout,
		BodyLimit:    rt.cfg.Server.BodyLimit,
		Health:       func(ctx context.Context) error { return storage.Ping(ctx, db) },
	}, rt.log)

	var bot *telegram.Bot
	if token := rt.cfg.Telegram.Token; token != "" {
		if bot, err = telegram.NewBot(token, services, rt.log); err != nil {
			return err
		}
	} else {
		rt.log.Info("telegram token is not set, bot disabled")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		rt.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if bot != nil {
		g.Go(func() error { return bot.Run(ctx) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
