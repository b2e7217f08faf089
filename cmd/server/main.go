package main

import (
	"flag"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/zhurnal/internal/app"
	"github.com/shrimpsizemoose/zhurnal/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	if service.Config.Seed.Enabled {
		if err := service.Seed(); err != nil {
			logger.Error.Fatalf("Failed to seed database: %v", err)
		}
	}

	h, err := handlers.NewHandler(service)
	if err != nil {
		logger.Error.Fatalf("Failed to load templates: %v", err)
	}

	logger.Info.Printf("Starting zhurnal server on %s", service.Config.Server.Port)
	logger.Debug.Printf("Lesson price: %d", service.Ledger.Price())
	if err := http.ListenAndServe(service.Config.Server.Port, h.Routes()); err != nil {
		logger.Error.Fatalf("Zhurnal server failed: %v", err)
	}
}
