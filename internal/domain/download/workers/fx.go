package workers

import (
	"context"

	"go.uber.org/fx"
)

// Module provides workers for fx dependency injection
var Module = fx.Module("download-workers",
	fx.Provide(NewJanitor),
	fx.Invoke(registerJanitorLifecycle),
)

// registerJanitorLifecycle registers janitor lifecycle hooks
func registerJanitorLifecycle(lc fx.Lifecycle, janitor *Janitor) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			janitor.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			janitor.Stop()
			return nil
		},
	})
}
