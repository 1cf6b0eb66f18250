package bot

import (
	"github.com/sardorbek/referral_bot/config"
	"github.com/sardorbek/referral_bot/internal/service"
	"github.com/sardorbek/referral_bot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot is the thin presentation layer: it resolves Telegram ids, checks the
// admin set for admin-only commands and formats service results into text.
// All accounting decisions live in the service.
type Bot struct {
	API     *tgbotapi.BotAPI
	service *service.Service
	logger  *utils.Logger
	config  *config.Config
	admins  map[int64]bool
}

func NewBot(
	api *tgbotapi.BotAPI,
	svc *service.Service,
	logger *utils.Logger,
	cfg *config.Config,
) *Bot {
	admins := make(map[int64]bool)
	for _, id := range cfg.AdminIDList() {
		admins[id] = true
	}
	return &Bot{
		API:     api,
		service: svc,
		logger:  logger,
		config:  cfg,
		admins:  admins,
	}
}

func (b *Bot) Start() {
	b.logger.Info("Starting bot...")
	updates := b.API.GetUpdatesChan(tgbotapi.NewUpdate(0))
	for update := range updates {
		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}
		b.HandleUpdate(update)
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.admins[userID]
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.API.Send(msg); err != nil {
		b.logger.Errorf("Failed to send message to %d: %v", chatID, err)
	}
}

func (b *Bot) sendDocument(chatID int64, name string, data []byte, caption string) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	if _, err := b.API.Send(doc); err != nil {
		b.logger.Errorf("Failed to send document to %d: %v", chatID, err)
	}
}
