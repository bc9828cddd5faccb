package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/mangax/internal/server"
	"github.com/desertthunder/mangax/internal/shared"
	"github.com/urfave/cli/v3"
)

// Handler builds the HTTP handler tree served by [Runner.Serve].
func (r *Runner) Handler() (http.Handler, error) {
	if r.api == nil {
		return nil, fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}
	if _, err := r.requireCatalog(); err != nil {
		return nil, err
	}

	logger := shared.WithLogger(r.logger, "component", "server")

	router := server.NewBasicRouter()
	router.Use(server.Recover(logger), server.RequestID(), server.Logging(logger))
	router.Handler(server.NewProxyHandler(r.api, logger))
	router.Handler(server.NewNavigationHandler(r.controllerOpts(logger), logger))
	router.HandleFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}` + "\n"))
	})

	return router, nil
}

// Serve runs the catalog proxy and navigation API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	handler, err := r.Handler()
	if err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx, addr, handler, shared.WithLogger(r.logger, "component", "server"))
}
