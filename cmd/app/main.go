package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/OneAIforWeb3/linkup/internal/common/config"
	"github.com/OneAIforWeb3/linkup/internal/common/logger"
	connectsservice "github.com/OneAIforWeb3/linkup/internal/features/connects/service"
	"github.com/OneAIforWeb3/linkup/internal/features/navigation"
	profileservice "github.com/OneAIforWeb3/linkup/internal/features/profile/service"
	"github.com/OneAIforWeb3/linkup/internal/platform/host"
	"github.com/OneAIforWeb3/linkup/internal/platform/linkupapi"
)

func main() {
	cfg := config.Load()
	logger.Init("linkup-app", cfg.Debug)

	client := linkupapi.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second)
	profiles := profileservice.NewProfileService(client)
	connects := connectsservice.NewConnectsService(client)

	bridge := host.NewStandaloneBridge()
	if cfg.Telegram.InitData != "" {
		identity, err := host.ParseInitDataIdentity(cfg.Telegram.InitData, cfg.Telegram.BotToken)
		if err != nil {
			logger.Warn().Err(err).Msg("Ignoring unusable TELEGRAM_INIT_DATA")
		} else {
			bridge.WithIdentity(identity)
		}
	}
	adapter := host.NewAdapter(bridge)

	controller := navigation.NewController(adapter, profiles, connects)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	adapter.Startup()
	if _, err := controller.Launch(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Launch failed")
	}

	runConsole(ctx, controller, adapter)
}
