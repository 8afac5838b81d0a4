package main

import (
	"context"
	"flag"
	"log"
	"os"

	"CryptoPulse/internal/di"
	"CryptoPulse/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	noClear := flag.Bool("no-clear", false, "do not clear the terminal between ticks")
	once := flag.Bool("once", false, "run a single tick and exit")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *noClear {
		cfg.Display.Clear = false
	}
	if *once {
		cfg.Poller.Once = true
	}

	log.Printf("env=%s assets=%v currency=%s interval=%s", cfg.Environment, cfg.Watchlist.Assets, cfg.Watchlist.Currency, cfg.Poller.Interval)

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run application (blocks until signal or --once)
	if err := app.Run(context.Background()); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
