package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/lenderlist/lenders-proxy/internal/api/v1/routes"
	"github.com/lenderlist/lenders-proxy/internal/config"
	"github.com/lenderlist/lenders-proxy/internal/logger"
	"github.com/lenderlist/lenders-proxy/internal/services"
	"github.com/vardius/shutdown"
)

func main() {
	logger.Init()
	log := logger.With(logger.APP)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, err := services.InitializeServices(ctx)
	if err != nil {
		logger.Fatal(logger.APP, "Failed to initialize services: %v", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              ":" + config.GetPort(),
		Handler:           setupRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	stop := func() {
		gracefulCtx, cancelShutdown := context.WithTimeout(context.Background(), config.GetShutdownTimeout())
		defer cancelShutdown()

		if err := httpServer.Shutdown(gracefulCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		} else {
			log.Info().Msg("Server gracefully stopped")
		}

		cancel()
		if err := svc.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close services")
		}
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("Server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("ListenAndServe error")
			os.Exit(1)
		}
	}()

	// Block until SIGINT or SIGTERM.
	shutdown.GracefulStop(stop)
}

func setupRouter(svc *services.Services) *mux.Router {
	return routes.NewRouter(svc)
}
