package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/anjerodev/dotenv/internal/app"
	"github.com/anjerodev/dotenv/internal/config"
	"github.com/anjerodev/dotenv/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if err := logger.InitLogger(cfg.Env); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := app.Run(cfg); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
