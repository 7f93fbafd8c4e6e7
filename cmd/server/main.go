package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/activity"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/booking"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/config"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/database"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/handler"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/middleware"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/payment"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/queue"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/repository"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/router"
	queuepublisher "github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/service"
)

func main() {
	// Load .env when present; real deployments set the environment
	// directly and the file is absent.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories.
	roomRepo := repository.NewRoomRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	activityRepo := repository.NewActivityRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	// Payment gateway.
	gateway := payment.NewPaystackGateway(cfg.PaystackSecret, cfg.PaystackBaseURL,
		time.Duration(cfg.GatewayTimeout)*time.Second)

	// Booking orchestrator.
	svc := booking.NewService(roomRepo, customerRepo, bookingRepo, paymentRepo, booking.Config{
		Gateway:              gateway,
		Activity:             activity.NewRecorder(activityRepo),
		PublishEvent:         queuepublisher.PublishBookingEvent,
		AllowCheckedInCancel: cfg.AllowCheckedInCancel,
	})

	// Background consumer for booking events.  A broker outage is
	// logged, not fatal: events are fire-and-forget.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("[queue] consumer stopped: %v", err)
		}
	}()

	// Redis-backed middlewares; pass-through when disabled.
	rdb := config.NewRedisClient()
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, userRepo, tokenRepo), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(svc, roomRepo), limiter, cache)
	router.RegisterWebhook(e, handler.NewWebhookHandler(cfg.WebhookSecret, svc))
	router.RegisterStaff(e, handler.NewStaffHandler(svc, roomRepo), handler.NewActivityHandler(activityRepo), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
