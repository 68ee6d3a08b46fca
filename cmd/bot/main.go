package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/OneAIforWeb3/linkup/internal/bot"
	"github.com/OneAIforWeb3/linkup/internal/common/config"
	"github.com/OneAIforWeb3/linkup/internal/common/logger"
	connectsservice "github.com/OneAIforWeb3/linkup/internal/features/connects/service"
	profileservice "github.com/OneAIforWeb3/linkup/internal/features/profile/service"
	"github.com/OneAIforWeb3/linkup/internal/platform/linkupapi"
)

func main() {
	cfg := config.Load()
	logger.Init("linkup-bot", cfg.Debug)

	if cfg.Telegram.BotToken == "" {
		logger.Fatal().Msg("BOT_TOKEN is required")
	}

	client := linkupapi.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second)
	profiles := profileservice.NewProfileService(client)
	connects := connectsservice.NewConnectsService(client)

	b, err := bot.New(cfg.Telegram.BotToken, profiles, connects)
	if err != nil {
		logger.Fatal().Err(err).Msg("Bot startup failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := b.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Bot stopped with error")
	}
	logger.Info().Msg("Bot stopped")
}
