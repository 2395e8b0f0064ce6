// Package telegram contains Telegram delivery handlers
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/patt509/YT-Downloader/internal/domain/download/dto"
	"github.com/patt509/YT-Downloader/internal/domain/download/entities"
	"github.com/patt509/YT-Downloader/internal/domain/download/usecase/business"
)

// RequestTimeout bounds every Bot API call except file uploads
const RequestTimeout = 30 * time.Second

// botAPI is the part of the Bot API client the handlers use
type botAPI interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *tgbot.EditMessageTextParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *tgbot.DeleteMessageParams) (bool, error)
	SendAudio(ctx context.Context, params *tgbot.SendAudioParams) (*models.Message, error)
	SendVideo(ctx context.Context, params *tgbot.SendVideoParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *tgbot.AnswerCallbackQueryParams) (bool, error)
}

// Handlers contains Telegram update handlers
// Implements deps.Transport interface
type Handlers struct {
	orch     *business.Orchestrator
	bot      botAPI
	logger   zerolog.Logger
	inflight sync.WaitGroup
}

// NewHandlers creates new Telegram handlers
func NewHandlers(orch *business.Orchestrator, bot *tgbot.Bot, logger zerolog.Logger) *Handlers {
	return newHandlers(orch, bot, logger)
}

func newHandlers(orch *business.Orchestrator, bot botAPI, logger zerolog.Logger) *Handlers {
	return &Handlers{
		orch:   orch,
		bot:    bot,
		logger: logger,
	}
}

// Post implements deps.NotificationSink
func (h *Handlers) Post(ctx context.Context, chat entities.ChatIdentity, text string) (entities.NotificationRef, error) {
	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	msg, err := h.bot.SendMessage(msgCtx, &tgbot.SendMessageParams{
		ChatID:    chat.ID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return entities.NotificationRef{}, h.handleSendMessageError(chat.ID, err)
	}

	return entities.NotificationRef{Chat: chat, MessageID: msg.ID}, nil
}

// Edit implements deps.NotificationSink
func (h *Handlers) Edit(ctx context.Context, ref entities.NotificationRef, text string) error {
	return h.editMessage(ctx, ref, text, nil)
}

// Delete implements deps.NotificationSink
func (h *Handlers) Delete(ctx context.Context, ref entities.NotificationRef) error {
	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	if _, err := h.bot.DeleteMessage(msgCtx, &tgbot.DeleteMessageParams{
		ChatID:    ref.Chat.ID,
		MessageID: ref.MessageID,
	}); err != nil {
		return h.handleSendMessageError(ref.Chat.ID, err)
	}

	return nil
}

// Offer implements deps.ChoicePresenter
func (h *Handlers) Offer(ctx context.Context, ref entities.NotificationRef, offer dto.ChoiceOffer) error {
	return h.editMessage(ctx, ref, offer.Text, choiceKeyboard(offer.VideoID, offer.Kinds))
}

// SendAudio implements deps.DeliveryChannel. The caller bounds ctx.
func (h *Handlers) SendAudio(ctx context.Context, d dto.AudioDelivery) error {
	h.logger.Info().
		Int64("chat_id", d.Chat.ID).
		Str("file", d.File.Name).
		Int64("size", d.File.Size).
		Msg("Uploading audio")

	_, err := h.bot.SendAudio(ctx, &tgbot.SendAudioParams{
		ChatID:   d.Chat.ID,
		Audio:    &models.InputFileUpload{Filename: d.File.Name, Data: d.File.Reader},
		Title:    d.Title,
		Duration: int(d.Duration),
	})
	if err != nil {
		return h.handleSendMessageError(d.Chat.ID, err)
	}

	return nil
}

// SendVideo implements deps.DeliveryChannel. The caller bounds ctx.
func (h *Handlers) SendVideo(ctx context.Context, d dto.VideoDelivery) error {
	h.logger.Info().
		Int64("chat_id", d.Chat.ID).
		Str("file", d.File.Name).
		Int64("size", d.File.Size).
		Msg("Uploading video")

	_, err := h.bot.SendVideo(ctx, &tgbot.SendVideoParams{
		ChatID:            d.Chat.ID,
		Video:             &models.InputFileUpload{Filename: d.File.Name, Data: d.File.Reader},
		Caption:           d.Title,
		Duration:          int(d.Duration),
		SupportsStreaming: true,
	})
	if err != nil {
		return h.handleSendMessageError(d.Chat.ID, err)
	}

	return nil
}

// HandleStart handles /start command
func (h *Handlers) HandleStart(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	resp := h.orch.HandleStart(ctx, userIdentity(update.Message.From))
	h.sendResponse(ctx, update.Message.Chat.ID, resp.Message)
	h.logCommand(update.Message.Chat.ID, "/start")
}

// HandleHelp handles /help command
func (h *Handlers) HandleHelp(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	resp := h.orch.HandleHelp(ctx)
	h.sendResponse(ctx, update.Message.Chat.ID, resp.Message)
	h.logCommand(update.Message.Chat.ID, "/help")
}

// HandleText handles a plain text message that may carry a link
func (h *Handlers) HandleText(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil {
		return
	}

	h.dispatch(ctx, dto.DirectLinkRequest{
		Text:   msg.Text,
		Sender: userIdentity(msg.From),
		Chat:   entities.ChatIdentity{ID: msg.Chat.ID},
	})
}

// HandleCallback handles a format choice button press
func (h *Handlers) HandleCallback(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	query := update.CallbackQuery
	if query == nil {
		return
	}

	h.answerCallback(ctx, query.ID)

	kind, videoID, err := ParseCallbackData(query.Data)
	if err != nil {
		h.logger.Warn().Err(err).Int64("user_id", query.From.ID).Str("data", query.Data).Msg("Ignoring callback")
		return
	}

	chatID, ok := callbackChatID(query)
	if !ok {
		h.logger.Warn().Int64("user_id", query.From.ID).Msg("Callback without chat")
		return
	}

	h.dispatch(ctx, dto.FormatChoiceRequest{
		Kind:   kind,
		URL:    ShareLink(videoID),
		Sender: userIdentity(&query.From),
		Chat:   entities.ChatIdentity{ID: chatID},
	})
}

// Wait blocks until in-flight operations finished or ctx is done
func (h *Handlers) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("in-flight operations still running: %w", ctx.Err())
	}
}

// dispatch runs the request off the update loop so a slow download does not
// hold up other chats
func (h *Handlers) dispatch(ctx context.Context, req dto.Request) {
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		h.orch.HandleRequest(ctx, req)
	}()
}

func (h *Handlers) editMessage(ctx context.Context, ref entities.NotificationRef, text string, markup models.ReplyMarkup) error {
	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	params := &tgbot.EditMessageTextParams{
		ChatID:    ref.Chat.ID,
		MessageID: ref.MessageID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := h.bot.EditMessageText(msgCtx, params); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		return h.handleSendMessageError(ref.Chat.ID, err)
	}

	return nil
}

func (h *Handlers) answerCallback(ctx context.Context, queryID string) {
	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	if _, err := h.bot.AnswerCallbackQuery(msgCtx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
	}); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to answer callback query")
	}
}

func (h *Handlers) sendResponse(ctx context.Context, chatID int64, text string) {
	if _, err := h.Post(ctx, entities.ChatIdentity{ID: chatID}, text); err != nil {
		h.logger.Error().Int64("chat_id", chatID).Err(err).Msg("Failed to send Telegram response")
	}
}

var (
	errBlocked     = errors.New("user blocked the bot or chat not found")
	errChatMissing = errors.New("chat not found")
	errRateLimited = errors.New("rate limit exceeded, please try again later")
	errNetwork     = errors.New("network error, please try again")
)

func (h *Handlers) handleSendMessageError(chatID int64, err error) error {
	errorMsg := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, tgbot.ErrorForbidden), strings.Contains(errorMsg, "forbidden"):
		h.logger.Warn().Int64("chat_id", chatID).Msg("User blocked the bot or chat not found")
		return fmt.Errorf("%w: %w", errBlocked, err)

	case strings.Contains(errorMsg, "chat not found"):
		h.logger.Warn().Int64("chat_id", chatID).Msg("Chat not found")
		return fmt.Errorf("%w: %w", errChatMissing, err)

	case tgbot.IsTooManyRequestsError(err), strings.Contains(errorMsg, "too many requests"):
		h.logger.Warn().Int64("chat_id", chatID).Msg("Rate limit exceeded")
		return fmt.Errorf("%w: %w", errRateLimited, err)

	case strings.Contains(errorMsg, "network error"), strings.Contains(errorMsg, "timeout"),
		errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn().Int64("chat_id", chatID).Msg("Network error while calling Bot API")
		return fmt.Errorf("%w: %w", errNetwork, err)

	default:
		h.logger.Error().Int64("chat_id", chatID).Err(err).Msg("Unknown Bot API error")
		return fmt.Errorf("telegram request failed: %w", err)
	}
}

func (h *Handlers) logCommand(chatID int64, command string) {
	h.logger.Info().Int64("chat_id", chatID).Str("command", command).Msg("Command handled")
}

func userIdentity(user *models.User) entities.UserIdentity {
	if user == nil {
		return entities.UserIdentity{}
	}
	return entities.UserIdentity{ID: user.ID, Username: user.Username}
}

// callbackChatID finds the chat of the message carrying the pressed button
func callbackChatID(query *models.CallbackQuery) (int64, bool) {
	switch {
	case query.Message.Message != nil:
		return query.Message.Message.Chat.ID, true
	case query.Message.InaccessibleMessage != nil:
		return query.Message.InaccessibleMessage.Chat.ID, true
	case query.From.ID != 0:
		// private chats share the user's id
		return query.From.ID, true
	default:
		return 0, false
	}
}
