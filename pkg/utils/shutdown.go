// Package utils предоставляет обработку сигналов завершения.
//
// Бот живёт до отмены корневого контекста: internal/bot.Run блокируется
// на <-ctx.Done() и закрывает Discord сессию при отмене.
package utils

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupGracefulShutdownWithContext возвращает корневой контекст бота,
// отменяемый по SIGINT (Ctrl+C) или SIGTERM, и функцию завершения.
//
// Использование:
//
//	ctx, shutdown := utils.SetupGracefulShutdownWithContext()
//	defer shutdown()
//
// По сигналу контекст отменяется, gateway-соединение закрывается,
// rate limiter прерывает ожидание слота — доставка останавливается
// на границе сообщения. Функция завершения закрывает лог-файл.
func SetupGracefulShutdownWithContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		Info("Received signal, shutting down gracefully", "signal", sig.String())
		cancel()
	}()

	return ctx, func() {
		cancel()
		Close()
	}
}
