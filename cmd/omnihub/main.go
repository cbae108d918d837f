// Package main is the entry point for the omnihub façade server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"omnihub/config"
	"omnihub/internal/app"
	"omnihub/internal/logging"
	"omnihub/internal/version"

	// Import adapter packages to trigger their init() registration
	_ "omnihub/internal/providers/frankfurter"
	_ "omnihub/internal/providers/gnews"
	_ "omnihub/internal/providers/libretranslate"
	_ "omnihub/internal/providers/mymemory"
	_ "omnihub/internal/providers/newsapi"
	_ "omnihub/internal/providers/openmeteo"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	versionFlag := flag.Bool("version", false, "Print version information")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	logging.Setup(os.Stdout, logging.Options{
		Format: os.Getenv("LOG_FORMAT"),
		Level:  os.Getenv("LOG_LEVEL"),
	})

	slog.Info("starting omnihub",
		"version", version.Version,
		"commit", version.Commit,
		"build_date", version.Date,
	)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	// Handle graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := application.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := application.Start(":" + cfg.Server.Port); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
