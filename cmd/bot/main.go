package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/apiclient"
	"storefront/internal/auth"
	"storefront/internal/bot"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/ledger"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/payment"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const metricsAddr = ":9091"

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env, "bot", cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("Bot stopped with error", zap.Error(err))
	}
	log.Info("Graceful shutdown complete")
}

func run(cfg *config.Config, log *zap.Logger) (err error) {
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.Telegram.BotToken, cfg.Telegram.APIEndpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to telegram: %w", err)
	}
	log.Info("Authorized on telegram", zap.String("username", api.Self.UserName))

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		err = multierr.Append(err, rdb.Close())
	}()

	reg := prometheus.NewRegistry()
	botMetrics := metrics.NewBotMetrics(reg)

	signer := auth.NewSigner(cfg.JWT.Secret, "storefront-bot", cfg.JWT.ServiceTokenTTL)
	backend := apiclient.New(cfg.Bot.APIURL, nil, signer, log)

	carts := cart.NewService(cart.NewRedisStore(rdb))
	gateway := payment.NewStripeGateway(payment.StripeConfig{
		SecretKey:  cfg.Stripe.SecretKey,
		Currency:   cfg.Stripe.Currency,
		SuccessURL: cfg.Stripe.SuccessURL,
		CancelURL:  cfg.Stripe.CancelURL,
		MinAmount:  cfg.Stripe.MinAmount,
		APIURL:     cfg.Stripe.APIURL,
	}, nil, log)

	// the backend holds the authoritative order; the spreadsheet is the local ledger
	sink := ledger.MultiSink{
		ledger.NewAPISink(backend),
		ledger.NewXLSXSink(cfg.Bot.LedgerPath, log),
	}

	conversation := checkout.NewConversation(
		carts,
		checkout.NewRedisSessionStore(rdb, cfg.Bot.SessionTTL),
		gateway,
		sink,
		botMetrics,
		log,
	)

	storefront := bot.New(bot.Deps{
		Sender:   api,
		Catalog:  backend,
		Users:    backend,
		Carts:    carts,
		Checkout: conversation,
		FAQ:      bot.NewFAQCache(rdb, backend, cfg.Bot.FAQCache, log),
		Gate: bot.NewSubscriptionGate(api,
			cfg.Telegram.ChannelID, cfg.Telegram.ChannelURL,
			cfg.Telegram.GroupID, cfg.Telegram.GroupURL,
			log),
		Redis: rdb,
	}, bot.Options{
		PageSize:        cfg.Bot.PageSize,
		InlineCacheTime: cfg.Telegram.InlineCacheTime,
		NavTTL:          cfg.Bot.SessionTTL,
	}, botMetrics, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = cfg.Telegram.UpdatesTimeout
	updates := api.GetUpdatesChan(updateCfg)

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down gracefully, press Ctrl+C again to force")
		api.StopReceivingUpdates()
		return nil
	})

	dispatcher := bot.NewDispatcher(cfg.Telegram.Workers, storefront.HandleUpdate)
	g.Go(func() error {
		log.Info("Bot started", zap.Int("workers", cfg.Telegram.Workers))
		return dispatcher.Run(gctx, updates)
	})

	metricsServer := &http.Server{
		Addr:              metricsAddr,
		Handler:           metrics.Handler(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	reader, err := events.NewClient(cfg.Kafka.Brokers).NewReader(cfg.Kafka.OrderTopic, cfg.Kafka.GroupID)
	switch {
	case errors.Is(err, events.ErrDisabled):
		log.Warn("Kafka brokers not configured, payment notifications disabled")
	case err != nil:
		stop()
		return multierr.Combine(err, g.Wait())
	default:
		defer func() {
			err = multierr.Append(err, reader.Close())
		}()
		notifier := bot.NewNotifier(api, log)
		g.Go(func() error {
			return events.Consume(gctx, reader, notifier.Handle, log)
		})
	}

	return g.Wait()
}
