// Package telegram contains Telegram bot infrastructure
package telegram

import (
	"context"
	"net/http"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/patt509/YT-Downloader/config"
)

// Module provides Telegram bot for fx dependency injection
var Module = fx.Module("telegram",
	fx.Provide(provideBot),
	fx.Invoke(registerLifecycle),
)

// pollTimeout is the long-poll window for getUpdates
const pollTimeout = time.Minute

// provideBot creates Telegram bot from config. The HTTP client must outlive
// the longest file upload.
func provideBot(cfg *config.TelegramConfig, download *config.DownloadConfig, logger zerolog.Logger) (*Bot, error) {
	client := &http.Client{Timeout: download.DeliveryTimeout + pollTimeout}

	return NewBot(cfg.BotToken,
		logger.With().Str("component", "telegram").Logger(),
		tgbot.WithHTTPClient(pollTimeout, client),
	)
}

// registerLifecycle registers bot lifecycle hooks
func registerLifecycle(lc fx.Lifecycle, bot *Bot) {
	var cancel context.CancelFunc

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Create a long-lived context for the bot
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())

			// Start bot in a goroutine since it's a blocking call
			go func() {
				_ = bot.Start(ctx)
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			if cancel != nil {
				cancel()
			}
			return bot.Stop()
		},
	})
}
