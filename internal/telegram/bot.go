package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tmarket-bot/internal/config"
	"tmarket-bot/internal/queue"
)

// Bot represents the Telegram bot
type Bot struct {
	api        *tgbotapi.BotAPI
	handler    *Handler
	dispatcher *queue.Dispatcher
	cfg        config.TelegramConfig
	logger     *slog.Logger
}

// NewBot creates a new Telegram bot around an already-authenticated API
// client
func NewBot(
	api *tgbotapi.BotAPI,
	handler *Handler,
	cfg config.TelegramConfig,
	logger *slog.Logger,
) *Bot {
	return &Bot{
		api:        api,
		handler:    handler,
		dispatcher: queue.NewDispatcher(0),
		cfg:        cfg,
		logger:     logger,
	}
}

// Connect authenticates against the bot API
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return api, nil
}

// Run starts the bot and blocks until context is cancelled. Updates are
// dispatched through per-user FIFO lanes: a user's photos and field
// submissions apply in delivery order while different users proceed in
// parallel.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.PollingTimeout

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("stopping bot, draining update lanes")
			b.api.StopReceivingUpdates()

			drainCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
			defer cancel()
			if err := b.dispatcher.Shutdown(drainCtx); err != nil {
				b.logger.Warn("some updates may not have completed", "error", err)
			} else {
				b.logger.Info("all pending updates completed")
			}

			return ctx.Err()

		case update, ok := <-updates:
			if !ok {
				return nil
			}

			upd := update
			b.dispatcher.Dispatch(actingUser(upd), func() {
				reqCtx, cancel := context.WithTimeout(ctx, b.cfg.RequestTimeout)
				defer cancel()

				b.handler.HandleUpdate(reqCtx, upd)
			})
		}
	}
}

// actingUser picks the lane key for an update: the sender when known,
// otherwise the chat
func actingUser(update tgbotapi.Update) int64 {
	if update.Message != nil {
		if update.Message.From != nil {
			return update.Message.From.ID
		}
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}

// GetBotInfo returns information about the bot
func (b *Bot) GetBotInfo() tgbotapi.User {
	return b.api.Self
}
