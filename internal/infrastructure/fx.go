// Package infrastructure contains infrastructure layer components
package infrastructure

import (
	"go.uber.org/fx"

	"github.com/patt509/YT-Downloader/internal/infrastructure/http"
	"github.com/patt509/YT-Downloader/internal/infrastructure/logger"
	"github.com/patt509/YT-Downloader/internal/infrastructure/metrics"
	"github.com/patt509/YT-Downloader/internal/infrastructure/telegram"
)

// Module provides all infrastructure components for fx dependency injection
var Module = fx.Module("infrastructure",
	logger.Module,
	telegram.Module,
	metrics.Module,
	http.Module,
)
