package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"taskManager/internal/app"
	"taskManager/internal/config"
	"taskManager/internal/logger"
)

func main() {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "конфигурация: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg)
	if err := application.Init(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "запуск: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("Приложение завершилось с ошибкой", err)
		stop()
		os.Exit(1)
	}
}
