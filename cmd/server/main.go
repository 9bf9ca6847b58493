package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/nfrund/zina/internal/config"
	"github.com/nfrund/zina/internal/logging"
	"github.com/nfrund/zina/internal/server"
)

func main() {
	cfg := config.MustNew()
	logging.New()

	ctx := context.Background()
	s, err := server.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}
	if err := s.Start(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}
