package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tmarket-bot/internal/catalog"
	"tmarket-bot/internal/registry"
)

// Messenger implements the workflows' notification interfaces on top of
// the bot API
type Messenger struct {
	api       *tgbotapi.BotAPI
	channelID string
	logger    *slog.Logger
}

// NewMessenger creates a messenger publishing listings to channelID
// (either a numeric chat ID or an @username)
func NewMessenger(api *tgbotapi.BotAPI, channelID string, logger *slog.Logger) *Messenger {
	return &Messenger{
		api:       api,
		channelID: channelID,
		logger:    logger,
	}
}

// NotifyUser sends a plain text message to a chat
func (m *Messenger) NotifyUser(_ context.Context, chatID int64, text string) error {
	_, err := m.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// SendDecisionPrompt sends an administrator the approve/reject prompt
// for a pending application
func (m *Messenger) SendDecisionPrompt(_ context.Context, adminID int64, req registry.PendingRequest) error {
	text := fmt.Sprintf(
		"Nouvelle demande de devenir vendeur :\n"+
			"Utilisateur : %s (@%s)\n"+
			"ID : %d\n"+
			"Utilisez les boutons ci-dessous pour approuver ou rejeter.",
		req.FirstName, req.Username, req.UserID,
	)

	msg := tgbotapi.NewMessage(adminID, text)
	msg.ReplyMarkup = decisionKeyboard(req.UserID)
	_, err := m.api.Send(msg)
	return err
}

// PublishListing posts a committed listing to the marketplace channel:
// first photo with a caption when the listing has photos, plain text
// otherwise
func (m *Messenger) PublishListing(_ context.Context, p catalog.Product) error {
	caption := FormatListing(p)

	if len(p.Photos) > 0 {
		photo := tgbotapi.NewPhotoToChannel("", tgbotapi.FilePath(p.Photos[0]))
		photo.Caption = caption
		m.targetChannel(&photo.BaseChat)
		_, err := m.api.Send(photo)
		return err
	}

	msg := tgbotapi.NewMessageToChannel("", caption)
	m.targetChannel(&msg.BaseChat)
	_, err := m.api.Send(msg)
	return err
}

func (m *Messenger) targetChannel(base *tgbotapi.BaseChat) {
	if strings.HasPrefix(m.channelID, "@") {
		base.ChannelUsername = m.channelID
		base.ChatID = 0
		return
	}
	id, err := strconv.ParseInt(m.channelID, 10, 64)
	if err != nil {
		m.logger.Error("invalid channel id", "channel_id", m.channelID)
		return
	}
	base.ChannelUsername = ""
	base.ChatID = id
}

// FormatListing renders a committed listing for confirmations and the
// channel post
func FormatListing(p catalog.Product) string {
	return fmt.Sprintf(
		"Nom : %s\n"+
			"Description : %s\n"+
			"Catégorie : %s\n"+
			"Prix : %s FCFA\n"+
			"WhatsApp : %s",
		p.Name, p.Description, p.Category, p.Price, p.WhatsApp,
	)
}

func decisionKeyboard(targetID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approuver", fmt.Sprintf("approuver_%d", targetID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Rejeter", fmt.Sprintf("rejeter_%d", targetID)),
		),
	)
}
