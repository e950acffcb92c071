package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/skstore/creditbot/internal/config"
	"github.com/skstore/creditbot/internal/groq"
	"github.com/skstore/creditbot/internal/pipeline"
	"github.com/skstore/creditbot/internal/storage"
)

// SalesHandler consumes one sales-chat message.
type SalesHandler func(ctx context.Context, msg pipeline.Message) (pipeline.Outcome, error)

const skgptSystemPrompt = "Você é um assistente amigável de uma loja. Responda em português, de forma curta e útil."

// Bot wraps the telegram bot with handlers
type Bot struct {
	bot     *bot.Bot
	cfg     *config.Config
	storage *storage.Storage
	groq    *groq.Client
	states  *StateManager
	log     *slog.Logger

	sales SalesHandler
}

// New creates a new telegram bot. groqClient may be nil when no API key is
// configured; the /skgpt command degrades gracefully.
func New(cfg *config.Config, store *storage.Storage, groqClient *groq.Client, log *slog.Logger) (*Bot, error) {
	b := &Bot{
		cfg:     cfg,
		storage: store,
		groq:    groqClient,
		states:  NewStateManager(),
		log:     log,
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(b.defaultHandler),
		bot.WithCallbackQueryDataHandler("", bot.MatchTypePrefix, b.callbackHandler),
	}

	tgBot, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	b.bot = tgBot

	// Register command handlers
	tgBot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, b.startHandler)
	tgBot.RegisterHandler(bot.HandlerTypeMessageText, "/saldo", bot.MatchTypeExact, b.saldoHandler)
	tgBot.RegisterHandler(bot.HandlerTypeMessageText, "/loja", bot.MatchTypeExact, b.lojaHandler)
	tgBot.RegisterHandler(bot.HandlerTypeMessageText, "/preco", bot.MatchTypeExact, b.precoHandler)
	tgBot.RegisterHandler(bot.HandlerTypeMessageText, "/resgatar", bot.MatchTypeExact, b.lojaHandler)
	tgBot.RegisterHandler(bot.HandlerTypeMessageText, "/adicionar", bot.MatchTypePrefix, b.adicionarHandler)
	tgBot.RegisterHandler(bot.HandlerTypeMessageText, "/stats", bot.MatchTypeExact, b.statsHandler)
	tgBot.RegisterHandler(bot.HandlerTypeMessageText, "/skgpt", bot.MatchTypePrefix, b.skgptHandler)

	return b, nil
}

// SetSalesHandler binds the ingestion pipeline entry point. Must be called
// before Start.
func (b *Bot) SetSalesHandler(h SalesHandler) {
	b.sales = h
}

// Start starts the bot polling
func (b *Bot) Start(ctx context.Context) {
	b.bot.Start(ctx)
}

// --- Handlers ---

func (b *Bot) startHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	userName := update.Message.From.FirstName
	if userName == "" {
		userName = update.Message.From.Username
	}
	if userName == "" {
		userName = "amigo"
	}

	text := fmt.Sprintf(
		"Olá, <b>%s</b>! 👋\n\n"+
			"Eu cuido dos seus créditos da loja:\n"+
			"• Cada R$ 1,00 em compras = 1 crédito\n"+
			"• Troque créditos por recompensas\n\n"+
			"💳 /saldo — consulta seu saldo\n"+
			"🏪 /loja — loja de recompensas\n"+
			"🎁 /resgatar — troca seus créditos\n"+
			"🤖 /skgpt — conversa com a IA\n\n"+
			"Escolha uma opção 👇",
		userName,
	)

	b.sendMessage(ctx, update.Message.Chat.ID, text, MainKeyboard())
}

func (b *Bot) saldoHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	userID := strconv.FormatInt(update.Message.From.ID, 10)
	balance, err := b.storage.GetBalance(userID)
	if err != nil {
		b.log.Error("get balance", "error", err)
		b.sendMessage(ctx, update.Message.Chat.ID, "❌ Erro ao consultar saldo.", nil)
		return
	}

	text := fmt.Sprintf(
		"💰 <b>Seu Saldo de Créditos</b>\n\n"+
			"Você possui <b>%d créditos</b>\n\n"+
			"💳 Faça compras em nossa loja!\n"+
			"🎁 Cada R$ 1,00 = 1 crédito",
		balance,
	)

	b.sendMessage(ctx, update.Message.Chat.ID, text, MainKeyboard())
}

func (b *Bot) lojaHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	b.sendMessage(ctx, update.Message.Chat.ID, shopText(), RewardsKeyboard())
}

func (b *Bot) precoHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	var lines []string
	lines = append(lines, "📊 <b>Tabela de Preços</b>\n")
	for _, r := range rewards {
		lines = append(lines, fmt.Sprintf("• <b>%d créditos</b> — %s %s", r.Cost, r.Emoji, r.Label))
	}
	lines = append(lines, "\n💡 Quanto mais você compra, mais créditos ganha!\nCada R$ 1,00 gasto = 1 crédito")

	b.sendMessage(ctx, update.Message.Chat.ID, strings.Join(lines, "\n"), RewardsKeyboard())
}

func (b *Bot) adicionarHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	adminID := update.Message.From.ID
	if !b.cfg.AdminIDs[adminID] {
		b.sendMessage(ctx, update.Message.Chat.ID, "❌ <b>Acesso negado!</b> Você não tem permissão para usar este comando.", nil)
		return
	}

	args := strings.Fields(strings.TrimPrefix(update.Message.Text, "/adicionar"))
	if len(args) != 2 {
		b.states.Set(adminID, StateWaitGrant)
		b.sendMessage(ctx, update.Message.Chat.ID,
			"🔹 Envie o ID do usuário e a quantidade de créditos:\n<code>user_id quantidade</code>",
			BackKeyboard(),
		)
		return
	}

	b.grantCredits(ctx, update.Message.Chat.ID, args[0], args[1])
}

func (b *Bot) statsHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	if !b.cfg.AdminIDs[update.Message.From.ID] {
		b.sendMessage(ctx, update.Message.Chat.ID, "❌ <b>Acesso negado!</b> Você não tem permissão para usar este comando.", nil)
		return
	}

	stats, err := b.storage.Stats()
	if err != nil {
		b.log.Error("load stats", "error", err)
		b.sendMessage(ctx, update.Message.Chat.ID, "❌ Erro ao carregar estatísticas.", nil)
		return
	}

	text := fmt.Sprintf(
		"📊 <b>Estatísticas do Sistema</b>\n\n"+
			"👥 Usuários: <b>%d</b>\n"+
			"💰 Total de créditos: <b>%d</b>\n"+
			"📝 Mensagens processadas: <b>%d</b>",
		stats.Users, stats.TotalCredits, stats.Processed,
	)
	if stats.TopUserID != "" {
		text += fmt.Sprintf(
			"\n🏆 Maior saldo: <a href='tg://user?id=%s'>%s</a> — <b>%d créditos</b>",
			stats.TopUserID, stats.TopUserID, stats.TopBalance,
		)
	}

	b.sendMessage(ctx, update.Message.Chat.ID, text, nil)
}

func (b *Bot) skgptHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	prompt := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/skgpt"))
	if prompt == "" {
		b.sendMessage(ctx, update.Message.Chat.ID, "🤖 Envie sua pergunta junto com o comando:\n<code>/skgpt qual é a promoção de hoje?</code>", nil)
		return
	}

	if b.groq == nil {
		b.sendMessage(ctx, update.Message.Chat.ID, "🤖 O assistente de IA não está configurado.", nil)
		return
	}

	reply, err := b.groq.Complete(ctx, skgptSystemPrompt, prompt)
	if err != nil {
		b.log.Error("groq completion", "error", err)
		b.sendPlain(ctx, update.Message.Chat.ID, "Desculpe, ocorreu um erro ao processar sua mensagem. Tente novamente.")
		return
	}

	// Model output is not trusted HTML
	b.sendPlain(ctx, update.Message.Chat.ID, reply)
}

func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	msg := update.Message

	// Sales registration chat feeds the credit pipeline
	if msg.Chat.ID == b.cfg.SalesChatID {
		b.handleSalesMessage(ctx, msg)
		return
	}

	if msg.From == nil || msg.Text == "" {
		return
	}

	switch b.states.Get(msg.From.ID) {
	case StateWaitGrant:
		b.handleGrantInput(ctx, msg)
	}
}

func (b *Bot) handleSalesMessage(ctx context.Context, msg *models.Message) {
	if b.sales == nil {
		return
	}

	text := extractText(msg)
	if text == "" {
		return
	}

	var authorID int64
	if msg.From != nil {
		authorID = msg.From.ID
	}

	pm := pipeline.Message{
		ID:        fmt.Sprintf("%d:%d", msg.Chat.ID, msg.ID),
		ChannelID: msg.Chat.ID,
		MessageID: msg.ID,
		AuthorID:  authorID,
		Text:      text,
	}

	outcome, err := b.sales(ctx, pm)
	if err != nil {
		// Persistence failures stop this message but must never crash the
		// dispatch layer.
		b.log.Error("sales pipeline", "message_id", pm.ID, "error", err)
		return
	}

	b.log.Debug("sales message handled", "message_id", pm.ID, "outcome", outcome.String())
}

func (b *Bot) handleGrantInput(ctx context.Context, msg *models.Message) {
	adminID := msg.From.ID
	if !b.cfg.AdminIDs[adminID] {
		b.states.Clear(adminID)
		return
	}

	args := strings.Fields(msg.Text)
	if len(args) != 2 {
		b.sendMessage(ctx, msg.Chat.ID,
			"❌ Formato inválido. Envie:\n<code>user_id quantidade</code>",
			BackKeyboard(),
		)
		return
	}

	b.states.Clear(adminID)
	b.grantCredits(ctx, msg.Chat.ID, args[0], args[1])
}

// grantCredits applies a manual admin grant through the same ledger
// primitive as automatic grants.
func (b *Bot) grantCredits(ctx context.Context, chatID int64, userIDArg, amountArg string) {
	userNum, err := strconv.ParseInt(userIDArg, 10, 64)
	if err != nil || userNum <= 0 {
		b.sendMessage(ctx, chatID, "❌ ID de usuário inválido.", nil)
		return
	}

	amount, err := strconv.ParseInt(amountArg, 10, 64)
	if err != nil || amount <= 0 {
		b.sendMessage(ctx, chatID, "❌ A quantidade deve ser maior que zero.", nil)
		return
	}

	userID := strconv.FormatInt(userNum, 10)
	newBalance, err := b.storage.Credit(userID, amount)
	if err != nil {
		b.log.Error("manual credit", "user_id", userID, "error", err)
		b.sendMessage(ctx, chatID, "❌ Erro ao adicionar créditos.", nil)
		return
	}

	b.log.Info("manual credits granted",
		"user_id", userID,
		"credits", amount,
		"balance", newBalance,
	)

	b.sendMessage(ctx, chatID, fmt.Sprintf(
		"✅ <b>Créditos adicionados</b>\n"+
			"👤 <a href='tg://user?id=%s'>%s</a>\n"+
			"➕ Adicionado: <b>%d créditos</b>\n"+
			"💳 Novo saldo: <b>%d créditos</b>",
		userID, userID, amount, newBalance,
	), nil)

	// Notify the user, best-effort
	dm := fmt.Sprintf(
		"🎉 <b>Você Recebeu Créditos!</b>\n\n"+
			"Um administrador adicionou créditos à sua conta!\n"+
			"💰 Créditos recebidos: <b>%d</b>\n"+
			"💳 Novo saldo: <b>%d créditos</b>\n\n"+
			"🛍️ Use /loja para ver as recompensas disponíveis!",
		amount, newBalance,
	)
	if err := b.SendDirectMessage(ctx, userNum, dm); err != nil {
		b.log.Warn("notify user of manual grant", "user_id", userID, "error", err)
	}
}

// --- Callbacks ---

func (b *Bot) callbackHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	cb := update.CallbackQuery
	data := cb.Data

	// Answer callback to remove loading state
	tgBot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: cb.ID,
	})

	switch {
	case data == "back":
		b.showMainMenu(ctx, cb)
	case data == "saldo":
		b.showBalance(ctx, cb)
	case data == "loja":
		b.showShop(ctx, cb)
	case strings.HasPrefix(data, "redeem:"):
		b.handleRedeem(ctx, cb, strings.TrimPrefix(data, "redeem:"))
	default:
		b.log.Warn("unknown callback", "data", data, "user_id", cb.From.ID)
	}
}

func (b *Bot) showMainMenu(ctx context.Context, cb *models.CallbackQuery) {
	text := "Escolha uma opção 👇\n\n" +
		"💳 /saldo — consulta seu saldo\n" +
		"🏪 /loja — loja de recompensas\n" +
		"🎁 /resgatar — troca seus créditos"
	b.editMessage(ctx, cb.Message, text, MainKeyboard())
}

func (b *Bot) showBalance(ctx context.Context, cb *models.CallbackQuery) {
	userID := strconv.FormatInt(cb.From.ID, 10)
	balance, err := b.storage.GetBalance(userID)
	if err != nil {
		b.log.Error("get balance", "error", err)
		return
	}

	text := fmt.Sprintf(
		"💰 <b>Seu Saldo de Créditos</b>\n\nVocê possui <b>%d créditos</b>",
		balance,
	)
	b.editMessage(ctx, cb.Message, text, MainKeyboard())
}

func (b *Bot) showShop(ctx context.Context, cb *models.CallbackQuery) {
	b.editMessage(ctx, cb.Message, shopText(), RewardsKeyboard())
}

func (b *Bot) handleRedeem(ctx context.Context, cb *models.CallbackQuery, key string) {
	reward, ok := rewardByKey(key)
	if !ok {
		b.log.Warn("unknown reward", "key", key, "user_id", cb.From.ID)
		return
	}

	userID := strconv.FormatInt(cb.From.ID, 10)

	newBalance, err := b.storage.Debit(userID, reward.Cost)
	if err == storage.ErrInsufficient {
		balance, _ := b.storage.GetBalance(userID)
		text := fmt.Sprintf(
			"❌ <b>Créditos Insuficientes</b>\n\n"+
				"Você precisa de <b>%d créditos</b> para resgatar %s %s.\n"+
				"💰 Seu saldo atual: <b>%d créditos</b>\n"+
				"💸 Faltam: <b>%d créditos</b>\n\n"+
				"💡 Faça mais compras em nossa loja!\nCada R$ 1,00 gasto = 1 crédito ganho",
			reward.Cost, reward.Emoji, reward.Label, balance, reward.Cost-balance,
		)
		b.editMessage(ctx, cb.Message, text, RewardsKeyboard())
		return
	}
	if err != nil {
		b.log.Error("redeem reward", "user_id", userID, "error", err)
		b.editMessage(ctx, cb.Message, "❌ Erro ao resgatar recompensa.", BackKeyboard())
		return
	}

	b.log.Info("reward redeemed",
		"user_id", userID,
		"reward", reward.Key,
		"cost", reward.Cost,
		"balance", newBalance,
	)

	text := fmt.Sprintf(
		"🎁 <b>Resgate Realizado com Sucesso!</b>\n\n"+
			"Você resgatou: <b>%s %s</b>\n"+
			"💸 Custo: <b>%d créditos</b>\n"+
			"💳 Novo saldo: <b>%d créditos</b>\n\n"+
			"📞 Entre em contato com um administrador para receber sua recompensa!",
		reward.Emoji, reward.Label, reward.Cost, newBalance,
	)
	b.editMessage(ctx, cb.Message, text, BackKeyboard())

	// Notify admins, best-effort
	adminNote := fmt.Sprintf(
		"📦 <b>Novo Resgate</b>\n"+
			"👤 <a href='tg://user?id=%s'>%s</a>\n"+
			"🎁 %s %s por <b>%d créditos</b>\n"+
			"💳 Saldo final: <b>%d créditos</b>",
		userID, userID, reward.Emoji, reward.Label, reward.Cost, newBalance,
	)
	for adminID := range b.cfg.AdminIDs {
		if err := b.SendDirectMessage(ctx, adminID, adminNote); err != nil {
			b.log.Warn("notify admin of redemption", "admin_id", adminID, "error", err)
		}
	}
}

// --- Helpers ---

func shopText() string {
	var lines []string
	lines = append(lines, "🏪 <b>Loja de Recompensas</b>\n")
	lines = append(lines, "Troque seus créditos por recompensas incríveis!\n")
	for _, r := range rewards {
		lines = append(lines, fmt.Sprintf("%s <b>%s</b> — %d créditos", r.Emoji, r.Label, r.Cost))
	}
	lines = append(lines, "\nToque em uma recompensa para resgatar 👇")
	return strings.Join(lines, "\n")
}

// extractText joins the textual parts of a message, one per line, trimmed.
func extractText(msg *models.Message) string {
	var parts []string
	if msg.Text != "" {
		parts = append(parts, msg.Text)
	}
	if msg.Caption != "" {
		parts = append(parts, msg.Caption)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string, keyboard *models.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}

	_, err := b.bot.SendMessage(ctx, params)
	if err != nil {
		b.log.Error("send message", "error", err)
	}
}

func (b *Bot) sendPlain(ctx context.Context, chatID int64, text string) {
	_, err := b.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		b.log.Error("send message", "error", err)
	}
}

func (b *Bot) editMessage(ctx context.Context, msg models.MaybeInaccessibleMessage, text string, keyboard *models.InlineKeyboardMarkup) {
	if msg.Message == nil {
		return
	}

	params := &bot.EditMessageTextParams{
		ChatID:    msg.Message.Chat.ID,
		MessageID: msg.Message.ID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}

	_, err := b.bot.EditMessageText(ctx, params)
	if err != nil {
		b.log.Error("edit message", "error", err)
	}
}

// --- pipeline.Notifier ---

// SendDirectMessage sends a private message to a user.
func (b *Bot) SendDirectMessage(ctx context.Context, userID int64, text string) error {
	disablePreview := true
	_, err := b.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    userID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{
			IsDisabled: &disablePreview,
		},
	})
	return err
}

// ReplyInChannel sends a confirmation reply to a message in a chat.
func (b *Bot) ReplyInChannel(ctx context.Context, channelID int64, replyTo int, text string) error {
	_, err := b.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    channelID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
		ReplyParameters: &models.ReplyParameters{
			MessageID: replyTo,
		},
	})
	return err
}
