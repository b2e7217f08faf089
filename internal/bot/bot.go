package bot

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/zhurnal/internal/app"
	"github.com/shrimpsizemoose/zhurnal/internal/models"
)

type Bot struct {
	service *app.Service
	api     *tgbotapi.BotAPI
	admins  map[int64]bool
	actor   *models.User
}

func New(service *app.Service) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(service.Config.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	b := newBot(service)
	b.api = api
	return b, nil
}

func newBot(service *app.Service) *Bot {
	admins := make(map[int64]bool)
	for _, id := range service.Config.Bot.AdminIDs {
		admins[id] = true
	}

	return &Bot{
		service: service,
		admins:  admins,
		// chat admins act with teacher rights
		actor: &models.User{Email: "telegram", Role: models.RoleTeacher},
	}
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case update := <-updates:
			if update.Message == nil {
				continue
			}

			go b.handleMessage(update.Message)

		case <-sigChan:
			logger.Info.Println("Shutting down bot...")
			b.api.StopReceivingUpdates()
			return nil
		}
	}
}
