package http

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/patt509/YT-Downloader/config"
	"github.com/patt509/YT-Downloader/internal/infrastructure/http/server"
	"github.com/patt509/YT-Downloader/internal/infrastructure/telegram"
)

// Module provides HTTP server for fx DI
var Module = fx.Module("http",
	fx.Provide(NewServerFx),
)

// NewServerFx creates HTTP server with lifecycle hooks for fx DI
func NewServerFx(
	lc fx.Lifecycle,
	serviceCfg *config.ServiceConfig,
	downloadCfg *config.DownloadConfig,
	bot *telegram.Bot,
	logger zerolog.Logger,
) *server.Server {
	logger = logger.With().Str("component", "http").Logger()
	srv := server.NewServer(serviceCfg.Name, serviceCfg.Port, logger)

	srv.RegisterMetrics(prometheus.DefaultGatherer)
	srv.RegisterHealth(server.NewHealthHandler(bot, downloadCfg.TempDir, logger))

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return srv
}
