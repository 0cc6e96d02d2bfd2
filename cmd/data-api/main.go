// Command data-api serves the home page and the /data routes.
package main

import (
	"errors"
	"net/http"
	"os"

	"github.com/deppfellow/data-api/internal/config"
	"github.com/deppfellow/data-api/internal/handler"
	"github.com/deppfellow/data-api/internal/logger"
	"github.com/deppfellow/data-api/internal/router"
	"github.com/deppfellow/data-api/internal/server"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootstrap := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		bootstrap.Fatal().Err(err).Msg("failed to load config")
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	srv := server.New(cfg, &log, loggerService)

	handlers := handler.NewHandlers(srv)
	r := router.NewRouter(srv, handlers)

	srv.SetupHTTPServer(r)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server stopped")
		loggerService.Shutdown()
		os.Exit(1)
	}
}
