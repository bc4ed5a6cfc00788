package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nutrilog/nutrilog/internal/devserver"
	"github.com/nutrilog/nutrilog/internal/logging"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	secret := flag.String("secret", "dev-secret-change-me", "JWT signing secret")
	accessTTL := flag.Duration("access-ttl", 5*time.Minute, "access token lifetime")
	refreshTTL := flag.Duration("refresh-ttl", 24*time.Hour, "refresh token lifetime")
	logLevel := flag.String("log-level", "debug", "log level (debug, info, warn, error)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.NewDefault(*logLevel)
	registry := prometheus.NewRegistry()
	tokens := devserver.NewTokenService([]byte(*secret), *accessTTL, *refreshTTL)
	server := devserver.NewServer(tokens, devserver.NewCollector(registry), logger)

	srv := &http.Server{
		Addr:    *addr,
		Handler: server.Router(registry),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info(ctx, "dev server listening", "addr", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("%v", err)
	}
}
