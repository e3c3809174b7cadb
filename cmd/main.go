package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	httpapi "github.com/Suleiman700/Watch-Together-v4/internal/api/http"
	"github.com/Suleiman700/Watch-Together-v4/internal/config"
	"github.com/Suleiman700/Watch-Together-v4/internal/registry"
	"github.com/Suleiman700/Watch-Together-v4/internal/relay"
	"github.com/Suleiman700/Watch-Together-v4/internal/repository"
	"github.com/Suleiman700/Watch-Together-v4/internal/service"
	"github.com/Suleiman700/Watch-Together-v4/lib/logger/slogpretty"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	store := repository.NewInMemoryRoomStore()
	sessions := registry.NewSessionRegistry()
	broadcast := relay.New(store, sessions, log)

	roomService := service.NewRoomService(store, broadcast, log)
	roomController := httpapi.NewRoomController(roomService, sessions, log)

	router := httpapi.SetupRouter(roomController, cfg.HTTP.AllowedOrigins)

	log.Info("starting application", slog.String("addr", cfg.HTTP.Address))
	if err := router.Run(cfg.HTTP.Address); err != nil {
		log.Error("http server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
