package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"storefront-backend/internal/client"
	"storefront-backend/internal/config"
	"storefront-backend/internal/metrics"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/repository"
	"storefront-backend/internal/server"
	"storefront-backend/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to parse config")
	}

	setupLogger(&cfg.Log)

	db := client.InitMysqlClient(cfg.DatabaseURL)
	stripeClient := client.NewStripeClient(&cfg.Stripe)
	shippoClient := client.NewShippoClient(&cfg.Shippo)
	notifier := service.NewSMTPNotifier(&cfg.SMTP)

	productRepo := repository.NewProductRepository(db)
	variantRepo := repository.NewVariantRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserProfileRepository(db)

	services := &server.Services{
		Catalog:  service.NewCatalogService(productRepo),
		Cart:     service.NewCartService(cartRepo, variantRepo),
		Checkout: service.NewCheckoutService(stripeClient, variantRepo, cfg.FrontendURL),
		Order:    service.NewOrderService(orderRepo),
		Webhook: service.NewWebhookService(
			db, stripeClient, orderRepo, variantRepo, cartRepo, notifier, cfg.Store.OwnerEmail,
		),
		Profile:  service.NewProfileService(userRepo),
		Shipping: service.NewShippingService(shippoClient, orderRepo, notifier, &cfg.Store),
	}

	auth := middleware.NewClerkAuth(&cfg.Clerk)
	serverMetrics := metrics.NewServerMetrics("api")

	srv := server.NewServer(services, auth, serverMetrics)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info().Str("addr", serverAddr).Msg("starting HTTP server")
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info().Msg("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		log.Fatal().Err(err).Msg("HTTP server shutdown error")
	}
}

func setupLogger(logCfg *config.Log) {
	level, err := zerolog.ParseLevel(logCfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if logCfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
