package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/lux"
	"github.com/vango-dev/lux/internal/config"
	luxerr "github.com/vango-dev/lux/internal/errors"
	"github.com/vango-dev/lux/pkg/metrics"
	"github.com/vango-dev/lux/pkg/reactive"
	"github.com/vango-dev/lux/pkg/surface/wire"
)

func serveCmd(load loader) *cobra.Command {
	var (
		addr    string
		merge   bool
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo app over websockets",
		Long: `Mount the demo app on a wire surface and stream its mutations to
websocket clients.

Routes:
  /ws        websocket frames
  /snapshot  current tree as JSON
  /html      current tree as HTML
  /metrics   Prometheus metrics (if enabled)

Examples:
  lux serve
  lux serve --addr=:8080 --merge
  lux serve --allow-origin=https://app.example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Serve.Addr = addr
			}
			if merge {
				cfg.Serve.MergeFrames = true
			}
			cfg.Serve.AllowedOrigins = append(cfg.Serve.AllowedOrigins, origins...)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().BoolVar(&merge, "merge", false, "Send JSON merge patches instead of op lists")
	cmd.Flags().StringSliceVar(&origins, "allow-origin", nil, "Extra origin allowed to open the websocket (repeatable)")

	return cmd
}

// newServer builds the demo app and its HTTP handler.
func newServer(cfg *config.Config, reg *prometheus.Registry) (*lux.App, http.Handler) {
	logger := cfg.Logger(os.Stderr)
	reactive.SetLogger(logger)

	var wireOpts []wire.Option
	wireOpts = append(wireOpts, wire.WithLogger(logger))
	if len(cfg.Serve.AllowedOrigins) > 0 {
		wireOpts = append(wireOpts, wire.WithAllowedOrigins(cfg.Serve.AllowedOrigins...))
	}
	if cfg.Serve.MergeFrames {
		wireOpts = append(wireOpts, wire.WithMergeFrames())
	}
	s := wire.NewSurface(wireOpts...)

	appOpts := []lux.Option{lux.WithConfig(cfg, os.Stderr)}
	if cfg.Metrics.Enabled && reg != nil {
		m := metrics.New(
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithRegistry(reg),
		)
		appOpts = append(appOpts, lux.WithMetrics(m))
	}
	app := lux.New(s, appOpts...)
	app.Mount(demoApp)

	r := chi.NewRouter()
	if cfg.Metrics.Enabled && reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	r.Mount("/", wire.Router(s))
	return app, r
}

func runServe(ctx context.Context, cfg *config.Config) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	app, handler := newServer(cfg, reg)
	defer app.Unmount()

	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go app.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	success("Serving on http://%s", cfg.Serve.Addr)
	info("websocket: ws://%s/ws", cfg.Serve.Addr)
	if cfg.Metrics.Enabled {
		info("metrics:   http://%s/metrics", cfg.Serve.Addr)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return luxerr.New(luxerr.CodeCLIServe).Wrap(err).WithSource(cfg.Serve.Addr)
	case <-ctx.Done():
	}

	info("Shutting down...")
	if ws, ok := app.Surface().(*wire.Surface); ok {
		ws.Hub().Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
