package main

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/strogmv/blogadmin/internal/app"
	"github.com/strogmv/blogadmin/internal/pkg/logger"
	"github.com/strogmv/blogadmin/internal/pkg/telemetry"
)

func newServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			ctx := cmd.Context()

			shutdownTracing, err := telemetry.Init(ctx, telemetry.Options{
				Endpoint:    cfg.OTELEndpoint,
				ServiceName: cfg.OTELServiceName,
				SampleRatio: cfg.OTELSampleRatio,
			})
			if err != nil {
				return err
			}
			defer func() {
				c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdownTracing(c)
			}()

			container, err := app.NewContainer(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := container.Close(); err != nil {
					logger.From(ctx).Warn("close resources", slog.Any("error", err))
				}
			}()

			srv := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           container.Router(),
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
				IdleTimeout:       90 * time.Second,
			}
			return serve(ctx, srv, cfg.ShutdownTimeout)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides HTTP_ADDR")
	return cmd
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, grace time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.From(ctx).Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.From(ctx).Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
