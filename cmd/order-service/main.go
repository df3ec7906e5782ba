package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Cheertaboi/shop-microservices/internal/app"
	"github.com/Cheertaboi/shop-microservices/internal/config"
	"github.com/Cheertaboi/shop-microservices/internal/logging"
	"github.com/Cheertaboi/shop-microservices/internal/server"
)

func main() {
	cfg, err := config.Load(config.ServiceOrder)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", cfg.Service)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := svc.Close(closeCtx); err != nil {
			log.Warn("close store", "err", err)
		}
	}()

	log.Info("starting order-service", "addr", cfg.Addr())
	if err := server.Run(ctx, cfg.Addr(), svc.Handler, log); err != nil {
		log.Error("listen", "err", err)
		stop()
		os.Exit(1)
	}
}
