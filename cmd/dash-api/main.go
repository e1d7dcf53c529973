package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joho/godotenv"
)

func main() {
	// .env необязателен: в docker переменные приходят из окружения.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}

	app := mustBootstrapDashAPI()
	defer app.Close()

	if err := app.Run(); err != nil && !errors.Is(err, context.Canceled) {
		panic(err)
	}
}
