// Package download contains the download domain module
package download

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/patt509/YT-Downloader/config"
	"github.com/patt509/YT-Downloader/internal/domain/download/consts"
	telegramDelivery "github.com/patt509/YT-Downloader/internal/domain/download/delivery/telegram"
	"github.com/patt509/YT-Downloader/internal/domain/download/deps"
	kafkaRepo "github.com/patt509/YT-Downloader/internal/domain/download/repository/kafka"
	youtubeRepo "github.com/patt509/YT-Downloader/internal/domain/download/repository/youtube"
	"github.com/patt509/YT-Downloader/internal/domain/download/storage"
	"github.com/patt509/YT-Downloader/internal/domain/download/usecase/business"
	"github.com/patt509/YT-Downloader/internal/domain/download/workers"
	"github.com/patt509/YT-Downloader/internal/infrastructure/telegram"
)

// Module provides download domain components for fx dependency injection
var Module = fx.Module("download",
	// Repository
	fx.Provide(youtubeRepo.NewResolver),
	fx.Provide(kafkaRepo.NewPublisher),
	fx.Provide(provideFileStore),

	// UseCase
	fx.Provide(provideOrchestrator),

	// Delivery - Telegram (needs raw bot from infrastructure)
	fx.Provide(provideTelegramHandlers),
	fx.Provide(telegramDelivery.NewRouter),

	// Workers
	workers.Module,

	// Wire cyclic dependency and register routes
	fx.Invoke(wireAndRegister),
)

// provideFileStore creates the temp file store
func provideFileStore(cfg *config.DownloadConfig, logger zerolog.Logger) (*storage.FileStore, error) {
	return storage.NewFileStore(cfg.TempDir, logger.With().Str("component", "filestore").Logger())
}

// provideOrchestrator creates the orchestrator from config
func provideOrchestrator(
	resolver deps.MediaResolver,
	publisher deps.OutcomePublisher,
	metrics deps.MetricsRecorder,
	files *storage.FileStore,
	courtesy *config.CourtesyConfig,
	downloadCfg *config.DownloadConfig,
	logger zerolog.Logger,
) *business.Orchestrator {
	return business.NewOrchestrator(
		resolver,
		publisher,
		metrics,
		files,
		courtesy.Messages,
		business.PolicyFromConfig(downloadCfg),
		logger.With().Str("component", "orchestrator").Logger(),
	)
}

// provideTelegramHandlers creates Telegram handlers with raw bot
func provideTelegramHandlers(orch *business.Orchestrator, bot *telegram.Bot, logger zerolog.Logger) *telegramDelivery.Handlers {
	return telegramDelivery.NewHandlers(orch, bot.Raw(), logger.With().Str("component", "telegram-handlers").Logger())
}

// wireAndRegister resolves cyclic dependency and registers routes
func wireAndRegister(
	lc fx.Lifecycle,
	orch *business.Orchestrator,
	handlers *telegramDelivery.Handlers,
	router *telegramDelivery.Router,
	bot *telegram.Bot,
	publisher deps.OutcomePublisher,
	logger zerolog.Logger,
) {
	// Orchestrator -> Transport <- Handlers -> Orchestrator
	orch.SetTransport(handlers)

	router.RegisterRoutes(bot.Raw())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			registerCommandMenu(ctx, bot.Raw(), logger)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := handlers.Wait(ctx); err != nil {
				logger.Warn().Err(err).Msg("Stopping with operations in flight")
			}
			return publisher.Close()
		},
	})
}

// registerCommandMenu publishes the command list shown in Telegram clients
func registerCommandMenu(ctx context.Context, bot *tgbot.Bot, logger zerolog.Logger) {
	commands := make([]models.BotCommand, 0, len(consts.AllCommands))
	for _, c := range consts.AllCommands {
		commands = append(commands, models.BotCommand{Command: c.Name, Description: c.Description})
	}

	if _, err := bot.SetMyCommands(ctx, &tgbot.SetMyCommandsParams{Commands: commands}); err != nil {
		logger.Warn().Err(err).Msg("Failed to register bot commands")
	}
}
