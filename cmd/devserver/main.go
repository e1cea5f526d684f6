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

	"github.com/digitalhat/storefront/internal/devserver"
	"github.com/digitalhat/storefront/internal/domain"
)

func main() {
	port := getEnv("DEVSERVER_PORT", "8080")
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	server := devserver.New(log)
	// A known member account so the storefront demo can sign in.
	server.SeedUser("Demo Member", "demo@digitalhat.dev", "demo-password", domain.RoleMember)
	server.SeedUser("Demo Admin", "admin@digitalhat.dev", "admin-password", domain.RoleAdmin)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      server.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("dev server starting", slog.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down dev server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("dev server exited")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
