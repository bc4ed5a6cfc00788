package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/nutrilog/nutrilog/internal/client/cli"
	"github.com/nutrilog/nutrilog/internal/client/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)
}
