package main

import (
	"flag"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/zhurnal/internal/app"
	"github.com/shrimpsizemoose/zhurnal/internal/bot"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewOfflineService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	b, err := bot.New(service)
	if err != nil {
		logger.Error.Fatalf("Failed to create bot: %v", err)
	}

	logger.Info.Println("Bot initialized successfully")
	if err := b.Start(); err != nil {
		logger.Error.Fatalf("Bot error: %v", err)
	}
}
