package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/conexao-adventure/booking-api/internal/config"
	"github.com/conexao-adventure/booking-api/internal/database"
	"github.com/conexao-adventure/booking-api/internal/handler"
	"github.com/conexao-adventure/booking-api/internal/middleware"
	"github.com/conexao-adventure/booking-api/internal/queue"
	"github.com/conexao-adventure/booking-api/internal/repository"
	"github.com/conexao-adventure/booking-api/internal/router"
	"github.com/conexao-adventure/booking-api/internal/service"
	"github.com/conexao-adventure/booking-api/internal/validate"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.Env == "dev" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Logger = logger

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connect failed")
	}
	defer db.Close()

	// Redis is optional: a nil client disables caching and rate
	// limiting but the API keeps serving.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn().Msg("redis unavailable, cache and rate limit disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	adventures := repository.NewAdventureRepo(db)
	events := repository.NewEventRepo(db)
	bookings := repository.NewBookingRepo(db)
	payments := repository.NewPaymentRepo(db)
	preRegs := repository.NewPreRegistrationRepo(db)
	loyaltyRepo := repository.NewLoyaltyRepo(db)
	messages := repository.NewMessageRepo(db)

	ledger := service.NewBookingLedger(db, bookings, events, adventures, cfg.Timezone, logger)
	loyalty := service.NewLoyaltyEngine(db, users, loyaltyRepo, bookings, logger)
	notifier := service.NewWhatsAppNotifier(messages, cfg.CompanyName, cfg.CompanyPhone, logger)
	processor := service.NewPaymentProcessor(
		payments, bookings, adventures, events, users,
		ledger, loyalty, notifier,
		cfg.PixKey, cfg.PointsPerReal, logger,
	)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	publicH := handler.NewPublicHandler(adventures, events, loyaltyRepo, cfg.Timezone)
	bookingH := handler.NewBookingHandler(ledger, bookings, events, adventures, users, notifier, cfg.Timezone)
	paymentH := handler.NewPaymentHandler(processor, payments, bookings)
	loyaltyH := handler.NewLoyaltyHandler(loyalty, loyaltyRepo, users)
	preRegH := handler.NewPreRegistrationHandler(cfg, preRegs, users, events, adventures, ledger, notifier)
	staffAdvH := handler.NewStaffAdventureHandler(adventures)
	staffEvH := handler.NewStaffEventHandler(events, adventures, bookings, users, notifier)
	staffBkH := handler.NewStaffBookingHandler(cfg, ledger, loyalty, bookings, events, adventures, users, notifier)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validate.New()
	e.Use(echomw.Recover())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, preRegH, cache)
	router.RegisterCustomer(e, bookingH, paymentH, loyaltyH, cfg.JWTSecret)
	router.RegisterStaff(e, staffAdvH, staffEvH, staffBkH, preRegH, cfg.JWTSecret)

	go queue.StartWhatsAppConsumer(messages)

	logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
