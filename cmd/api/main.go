package main

import (
	"context"
	"log"
	"taskBoard/internal/app"
	"taskBoard/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	// .env необязателен, переменные окружения могут прийти снаружи
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}

	ctx := context.Background()
	a, err := app.New(cfg).Init(ctx)
	if err != nil {
		log.Fatalf("инициализация: %v", err)
	}
	if err := a.Run(ctx); err != nil {
		log.Fatalf("сервер: %v", err)
	}
}
