package main

import (
	"github.com/sardorbek/referral_bot/config"
	"github.com/sardorbek/referral_bot/db"
	"github.com/sardorbek/referral_bot/internal/bot"
	"github.com/sardorbek/referral_bot/internal/repository"
	"github.com/sardorbek/referral_bot/internal/service"
	"github.com/sardorbek/referral_bot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	logger := utils.InitLogger()
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		logger.Fatal("Failed to load config: ", err)
	}

	database, err := db.ConnectDb(cfg.DB_URL, logger)
	if err != nil {
		logger.Fatal(err)
	}

	if err := db.Migrate(database, true, logger); err != nil {
		logger.Fatal(err)
	}

	repo := repository.NewRepository(database, logger)
	svc := service.NewService(repo, service.RewardPolicy{
		LevelRewards:           service.DefaultLevelRewards(),
		RewardBlockedAncestors: cfg.RewardBlockedAncestors,
		OwnerID:                cfg.OwnerID,
	}, logger)

	telegramBot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Fatal("Failed to create bot API: ", err)
	}

	bot := bot.NewBot(telegramBot, svc, logger, &cfg)
	bot.Start()
}
