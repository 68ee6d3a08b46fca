package main

import (
	"fmt"

	"github.com/OneAIforWeb3/linkup/internal/common/config"
	"github.com/OneAIforWeb3/linkup/internal/common/logger"
	"github.com/OneAIforWeb3/linkup/internal/devstub"
)

func main() {
	cfg := config.Load()
	logger.Init("linkup-stub", cfg.Debug)

	server := devstub.New(cfg.Stub.Origin)

	addr := fmt.Sprintf(":%d", cfg.Stub.Port)
	logger.Info().Str("addr", addr).Msg("Development backend stub listening")
	if err := server.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("Stub server failed")
	}
}
