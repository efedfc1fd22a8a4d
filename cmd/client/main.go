package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/inkwell-notes/inkwell/internal/buildinfo"
	"github.com/inkwell-notes/inkwell/internal/client/cli"
	"github.com/inkwell-notes/inkwell/internal/client/config"
	"github.com/inkwell-notes/inkwell/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	// optional .env next to the binary; real env vars take precedence
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	app := cli.NewApp(cfg, logger)
	app.Run(ctx)
}
