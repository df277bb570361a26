package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/raayon-bot/raayon/config"
	"github.com/raayon-bot/raayon/pkg/bus"
	"github.com/raayon-bot/raayon/pkg/engine"
	"github.com/raayon-bot/raayon/pkg/model"
	_ "github.com/raayon-bot/raayon/pkg/model/anthropic"
	_ "github.com/raayon-bot/raayon/pkg/model/openai"
	"github.com/raayon-bot/raayon/pkg/store"
	"github.com/raayon-bot/raayon/pkg/telegram"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "init" {
		if err := config.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "init failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "raayon: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	entryStore, err := store.NewSQLiteStore(config.DataDir())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer entryStore.Close()

	provider, err := model.NewProvider(cfg.Provider)
	if err != nil {
		return err
	}

	messageBus := bus.NewMessageBus()

	eng, err := engine.New(entryStore, provider, messageBus, log, engine.Options{
		PageSize:     cfg.PageSize,
		HistoryLimit: cfg.HistoryLimit,
		Timeout:      time.Duration(cfg.TimeoutSeconds) * time.Second,
		MaxTokens:    cfg.MaxTokens,
		Temperature:  cfg.Temperature,
	})
	if err != nil {
		return err
	}

	channel, err := telegram.NewTelegramChannel(telegram.TelegramConfig{
		Token:     cfg.Telegram.Token,
		Proxy:     cfg.Telegram.Proxy,
		AllowFrom: cfg.Telegram.AllowFrom,
	}, messageBus, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := channel.Start(ctx); err != nil {
		return err
	}

	go eng.Run(ctx)

	log.Info("raayon is running",
		zap.String("provider", cfg.Provider.Type),
		zap.String("model", cfg.Provider.Model))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := channel.Stop(shutdownCtx); err != nil {
		log.Warn("channel stop failed", zap.Error(err))
	}

	return nil
}
