// Package app contains application bootstrap
package app

import (
	"go.uber.org/fx"

	"github.com/patt509/YT-Downloader/config"
	"github.com/patt509/YT-Downloader/internal/domain"
	"github.com/patt509/YT-Downloader/internal/infrastructure"
	httpserver "github.com/patt509/YT-Downloader/internal/infrastructure/http/server"
)

// CreateApp creates fx application with all modules
func CreateApp() fx.Option {
	return fx.Options(
		// Configuration
		fx.Provide(config.Out),

		// Infrastructure (logger, telegram bot, metrics, http)
		infrastructure.Module,

		// Domain (download pipeline)
		domain.Module,

		// The HTTP server has no consumers besides its lifecycle hooks
		fx.Invoke(func(*httpserver.Server) {}),
	)
}
