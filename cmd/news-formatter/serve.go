package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	fmthttp "github.com/pribylovaa/go-news-formatter/internal/http"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the JSON HTTP API over the configured store.

Besides the API the server exposes /livez, /healthz and /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, ctx, err := openApp(cmd.Context(), *configPath, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			return serve(ctx, a)
		},
	}
}

// newHTTPHandler собирает служебные эндпойнты и API в один mux.
func newHTTPHandler(a *app, ready *atomic.Bool) http.Handler {
	api := fmthttp.NewRouter(a.svc, fmthttp.Options{
		Logger:  a.log,
		Timeout: a.cfg.Timeouts.Service,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if ready.Load() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", a.metrics.Handler())
	mux.Handle("/", api)

	return mux
}

// serve держит HTTP-сервер до отмены ctx или ошибки Serve.
func serve(ctx context.Context, a *app) error {
	log := a.log

	var ready atomic.Bool

	httpAddr := a.cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           newHTTPHandler(a, &ready),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		return err
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	ready.Store(true)
	log.Info("server_ready")

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown_requested")
	case serveErr = <-serveErrCh:
		if serveErr != nil {
			log.Error("http_serve_failed", slog.String("err", serveErr.Error()))
		}
	}

	ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	log.Info("service_stopped")

	return serveErr
}
