package metrics

import (
	"go.uber.org/fx"

	"github.com/patt509/YT-Downloader/internal/domain/download/deps"
)

// Module provides metrics for fx DI
var Module = fx.Module("metrics",
	fx.Provide(
		GetDefaultMetrics,
		func(m *Metrics) deps.MetricsRecorder { return m },
	),
)
