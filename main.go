package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ricardonunez-io/logcopilot/internal/cli"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	cli.Execute(ctx)
}
