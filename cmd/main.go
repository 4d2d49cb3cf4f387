package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	Execute()
}

func runServer(ctx context.Context, server *http.Server, shutdownTimeout time.Duration) error {
	logger := slog.Default()

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server started", slog.String("addr", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChannel)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("err", err))
			return err
		}
		return nil
	case sig := <-signalChannel:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	case <-ctx.Done():
	}

	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}
	shutDownCtx, shutDownCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("err", err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
