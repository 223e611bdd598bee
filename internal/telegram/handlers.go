package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	apperrors "tmarket-bot/internal/errors"
	"tmarket-bot/internal/onboarding"
	"tmarket-bot/internal/registry"
	"tmarket-bot/internal/storage"
	"tmarket-bot/internal/submission"
)

// Menu selection tokens carried in callback data
const (
	tokenBecomeSeller  = "devenir_vendeur"
	tokenConditionsMet = "conditions_remplies"
	tokenApprovePrefix = "approuver_"
	tokenRejectPrefix  = "rejeter_"
	tokenManage        = "gerer_produits"
	tokenAddProduct    = "ajouter_produit"
	tokenEditProduct   = "modifier_produit"
	tokenDeleteProduct = "supprimer_produit"
	tokenMyProducts    = "voir_produits"
	tokenCollab        = "demander_collab"
)

// Handler routes incoming updates to the onboarding and submission
// workflows
type Handler struct {
	bot             *tgbotapi.BotAPI
	onboarding      *onboarding.Service
	submission      *submission.Service
	photos          *storage.PhotoStore
	conditionsImage string
	logger          *slog.Logger
}

// NewHandler creates a new update handler
func NewHandler(
	bot *tgbotapi.BotAPI,
	onboardingSvc *onboarding.Service,
	submissionSvc *submission.Service,
	photos *storage.PhotoStore,
	conditionsImage string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		bot:             bot,
		onboarding:      onboardingSvc,
		submission:      submissionSvc,
		photos:          photos,
		conditionsImage: conditionsImage,
		logger:          logger,
	}
}

// HandleUpdate processes a single update. A failing handler never takes
// the update loop down with it.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("update handler panicked", "panic", r)
		}
	}()

	if update.CallbackQuery != nil {
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}
	msg := update.Message

	if msg.IsCommand() {
		h.handleCommand(ctx, msg)
		return
	}

	if msg.From == nil {
		return
	}

	if len(msg.Photo) > 0 {
		h.handlePhoto(ctx, msg)
		return
	}

	if msg.Text != "" {
		h.handleText(ctx, msg)
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.sendWelcome(msg.Chat.ID)
	default:
		h.sendText(msg.Chat.ID, "Commande inconnue. Utilisez /start")
	}
}

func (h *Handler) sendWelcome(chatID int64) {
	msg := tgbotapi.NewMessage(chatID,
		"Bienvenue sur TMarket228bot !\n"+
			"1️⃣ Cliquez sur 'Devenir vendeur' pour vendre sur notre canal.\n"+
			"2️⃣ Cliquez sur 'Demander une collaboration' pour soumettre une proposition.")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📦 Devenir vendeur", tokenBecomeSeller)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🤝 Demander une collaboration", tokenCollab)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛠 Gérer mes produits", tokenManage)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 Voir mes produits", tokenMyProducts)),
	)
	if _, err := h.bot.Send(msg); err != nil {
		h.logger.Error("failed to send welcome", "error", err, "chat_id", chatID)
	}
}

func (h *Handler) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Always acknowledge so the client stops its spinner
	if _, err := h.bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		h.logger.Error("failed to answer callback", "error", err)
	}

	if query.Message == nil || query.From == nil {
		return
	}
	chatID := query.Message.Chat.ID

	switch data := query.Data; {
	case data == tokenBecomeSeller:
		h.sendConditionsPrompt(chatID)

	case data == tokenConditionsMet:
		req := registry.PendingRequest{
			UserID:    query.From.ID,
			Username:  query.From.UserName,
			FirstName: query.From.FirstName,
			ChatID:    chatID,
		}
		if err := h.onboarding.AcknowledgeConditions(ctx, req); err != nil {
			h.logger.Error("failed to acknowledge conditions", "error", err, "user_id", req.UserID)
			h.sendText(chatID, apperrors.GetUserMessage(err))
		}

	case strings.HasPrefix(data, tokenApprovePrefix), strings.HasPrefix(data, tokenRejectPrefix):
		h.handleDecision(ctx, query, data)

	case data == tokenManage:
		h.handleManageMenu(ctx, query)

	case data == tokenAddProduct:
		h.handleAddProduct(ctx, query.From.ID, chatID)

	case data == tokenMyProducts:
		h.handleMyProducts(ctx, query.From.ID, chatID)

	case data == tokenEditProduct, data == tokenDeleteProduct:
		h.sendText(chatID, "Cette fonctionnalité n'est pas encore disponible.")

	case data == tokenCollab:
		h.sendText(chatID, "Envoyez votre proposition de collaboration à l'équipe du canal. Merci !")

	default:
		// Unrecognized tokens are a no-op
	}
}

func (h *Handler) sendConditionsPrompt(chatID int64) {
	text := "Pour devenir vendeur, veuillez remplir les conditions suivantes :\n" +
		"1️⃣ Repostez l'image suivante sur vos réseaux sociaux : WhatsApp, TikTok et Facebook.\n" +
		"2️⃣ Envoyez-nous une capture d'écran de vos publications ici.\n\n" +
		"Appuyez sur le bouton ci-dessous une fois les conditions remplies."
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ J'ai rempli les conditions", tokenConditionsMet)),
	)

	if _, err := os.Stat(h.conditionsImage); err == nil {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(h.conditionsImage))
		photo.Caption = text
		photo.ReplyMarkup = keyboard
		if _, err := h.bot.Send(photo); err != nil {
			h.logger.Error("failed to send conditions photo", "error", err, "chat_id", chatID)
		}
		return
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := h.bot.Send(msg); err != nil {
		h.logger.Error("failed to send conditions prompt", "error", err, "chat_id", chatID)
	}
}

func (h *Handler) handleDecision(ctx context.Context, query *tgbotapi.CallbackQuery, data string) {
	approve := strings.HasPrefix(data, tokenApprovePrefix)

	targetID, ok := parseDecisionTarget(data)
	if !ok {
		h.logger.Warn("malformed decision token", "data", data)
		return
	}

	var acted bool
	var err error
	if approve {
		_, acted, err = h.onboarding.Approve(ctx, targetID)
	} else {
		_, acted, err = h.onboarding.Reject(ctx, targetID)
	}
	if err != nil {
		h.logger.Error("decision failed", "error", err, "target_id", targetID, "admin_id", query.From.ID)
		return
	}
	if !acted {
		// Already decided by another administrator: silent no-op
		return
	}

	outcome := "rejeté"
	if approve {
		outcome = "approuvé"
	}
	edit := tgbotapi.NewEditMessageText(
		query.Message.Chat.ID,
		query.Message.MessageID,
		fmt.Sprintf("L'utilisateur %d a été %s.", targetID, outcome),
	)
	if _, err := h.bot.Send(edit); err != nil {
		h.logger.Error("failed to edit decision message", "error", err)
	}
}

func (h *Handler) handleManageMenu(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID

	approved, err := h.submission.IsApproved(ctx, query.From.ID)
	if err != nil {
		h.logger.Error("failed to check seller status", "error", err, "user_id", query.From.ID)
		h.sendText(chatID, apperrors.GetUserMessage(err))
		return
	}
	if !approved {
		edit := tgbotapi.NewEditMessageText(chatID, query.Message.MessageID,
			"Vous devez être approuvé en tant que vendeur pour accéder à cette fonctionnalité.")
		if _, err := h.bot.Send(edit); err != nil {
			h.logger.Error("failed to edit message", "error", err)
		}
		return
	}

	edit := tgbotapi.NewEditMessageText(chatID, query.Message.MessageID,
		"Gestion de vos produits :\n"+
			"- Ajouter un produit\n"+
			"- Modifier un produit\n"+
			"- Supprimer un produit\n\n"+
			"Choisissez une option :")
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Ajouter un produit", tokenAddProduct)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Modifier un produit", tokenEditProduct)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Supprimer un produit", tokenDeleteProduct)),
	)
	edit.ReplyMarkup = &keyboard
	if _, err := h.bot.Send(edit); err != nil {
		h.logger.Error("failed to send management menu", "error", err)
	}
}

func (h *Handler) handleAddProduct(ctx context.Context, userID, chatID int64) {
	if err := h.submission.BeginEntry(ctx, userID); err != nil {
		h.sendText(chatID, apperrors.GetUserMessage(err))
		return
	}
	h.sendText(chatID,
		"Envoyez les détails du produit au format :\n"+
			"nom, description, catégorie, prix, WhatsApp\n\n"+
			"Vous pouvez envoyer des photos du produit avant ou après les détails.")
}

func (h *Handler) handleMyProducts(ctx context.Context, userID, chatID int64) {
	products, err := h.submission.ListMine(ctx, userID)
	if err != nil {
		h.sendText(chatID, apperrors.GetUserMessage(err))
		return
	}
	if len(products) == 0 {
		h.sendText(chatID, "Vous n'avez encore aucun produit publié.")
		return
	}

	var b strings.Builder
	b.WriteString("Vos produits :\n")
	for i, p := range products {
		fmt.Fprintf(&b, "\n%d. %s — %s FCFA (%d photo(s))", i+1, p.Name, p.Price, len(p.Photos))
	}
	h.sendText(chatID, b.String())
}

func (h *Handler) handleText(ctx context.Context, msg *tgbotapi.Message) {
	product, err := h.submission.SubmitFields(ctx, msg.From.ID, msg.Text)
	if err != nil {
		h.sendText(msg.Chat.ID, apperrors.GetUserMessage(err))
		return
	}
	h.sendText(msg.Chat.ID, "✅ Produit ajouté :\n\n"+FormatListing(product))
}

func (h *Handler) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	// Gate before downloading anything
	approved, err := h.submission.IsApproved(ctx, userID)
	if err != nil {
		h.logger.Error("failed to check seller status", "error", err, "user_id", userID)
		h.sendText(msg.Chat.ID, apperrors.GetUserMessage(err))
		return
	}
	if !approved {
		h.sendText(msg.Chat.ID, apperrors.ErrNotApprovedSeller.UserMsg)
		return
	}

	// Telegram sends several sizes; the last one is the largest
	largest := msg.Photo[len(msg.Photo)-1]
	data, err := h.downloadFile(ctx, largest.FileID)
	if err != nil {
		h.logger.Error("failed to download photo", "error", err, "user_id", userID)
		h.sendText(msg.Chat.ID, "❌ Impossible de récupérer la photo. Veuillez réessayer.")
		return
	}

	handle, err := h.photos.Store(data)
	if err != nil {
		h.logger.Error("failed to store photo", "error", err, "user_id", userID)
		h.sendText(msg.Chat.ID, "❌ Impossible d'enregistrer la photo. Veuillez réessayer.")
		return
	}

	if err := h.submission.AttachPhoto(ctx, userID, handle); err != nil {
		h.sendText(msg.Chat.ID, apperrors.GetUserMessage(err))
		return
	}

	h.sendText(msg.Chat.ID,
		"✅ Photo ajoutée avec succès. Continuez d'envoyer des photos ou soumettez les détails du produit.")
}

func (h *Handler) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := h.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(h.bot.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (h *Handler) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		h.logger.Error("failed to send message", "error", err, "chat_id", chatID)
	}
}

// parseDecisionTarget extracts the target user ID from an
// approuver_<id> or rejeter_<id> token
func parseDecisionTarget(data string) (int64, bool) {
	idx := strings.LastIndex(data, "_")
	if idx < 0 || idx == len(data)-1 {
		return 0, false
	}
	id, err := strconv.ParseInt(data[idx+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
