package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/va6996/flightsearch/config"
	"github.com/va6996/flightsearch/log"
	"github.com/va6996/flightsearch/plugins/flights"
	"github.com/va6996/flightsearch/scenario"
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	log.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf(ctx, "Failed to load config: %v", err)
	}
	if err := log.SetLevelName(cfg.Log.Level); err != nil {
		log.Fatalf(ctx, "Failed to configure logging: %v", err)
	}

	client := flights.NewClient(cfg.Server.BaseURL, cfg.Server.RequestTimeout())
	driver := scenario.NewDriver(client, client.BaseURL, os.Stdout)

	if err := driver.Run(ctx); err != nil {
		// Already reported on stdout by the driver
		stop()
		os.Exit(1)
	}
}
