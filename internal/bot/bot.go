// Package bot is the companion Telegram bot: the same profile and connection
// flows as the mini app, driven by commands and QR deep links instead of the
// webapp UI.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/OneAIforWeb3/linkup/internal/common/logger"
	connectsservice "github.com/OneAIforWeb3/linkup/internal/features/connects/service"
	profileservice "github.com/OneAIforWeb3/linkup/internal/features/profile/service"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	profiles profileservice.ProfileService
	connects connectsservice.ConnectsService
	log      zerolog.Logger
}

func New(token string, profiles profileservice.ProfileService, connects connectsservice.ConnectsService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	b := &Bot{
		api:      api,
		profiles: profiles,
		connects: connects,
		log:      logger.Component("bot"),
	}
	b.log.Info().Str("username", api.Self.UserName).Msg("Authorized")

	b.setCommands()
	return b, nil
}

func (b *Bot) setCommands() {
	commands := []tgbotapi.BotCommand{
		{Command: "profile", Description: "Set up your profile"},
		{Command: "qr", Description: "Show your QR code"},
		{Command: "scan", Description: "Scan someone's QR data"},
		{Command: "myconnections", Description: "View your connections"},
		{Command: "help", Description: "Command reference"},
	}

	cfg := tgbotapi.NewSetMyCommands(commands...)
	if _, err := b.api.Request(cfg); err != nil {
		b.log.Warn().Err(err).Msg("Failed to set commands")
	}
}

// Start runs the long-polling update loop until the context ends.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	updates := b.api.GetUpdatesChan(updateConfig)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update := <-updates:
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("Send failed")
	}
}
