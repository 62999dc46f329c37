package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/turfbook/turf-booking/internal/config"
	"github.com/turfbook/turf-booking/internal/database"
	"github.com/turfbook/turf-booking/internal/handler"
	"github.com/turfbook/turf-booking/internal/pricing"
	"github.com/turfbook/turf-booking/internal/queue"
	"github.com/turfbook/turf-booking/internal/receipt"
	"github.com/turfbook/turf-booking/internal/repository"
	"github.com/turfbook/turf-booking/internal/router"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional; nil disables caching and rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Print("redis unavailable; caching and rate limiting disabled")
	}

	sportRepo := repository.NewSportRepo(db)
	slotRepo := repository.NewSlotRepo(db)
	pricingRepo := repository.NewPricingRuleRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	staffRepo := repository.NewStaffRepo(db)
	contactRepo := repository.NewContactRepo(db)

	resolver := pricing.NewResolver(cfg.FallbackPrice)
	receipts := receipt.NewPDFRenderer(cfg.SiteURL)

	publicHandler := handler.NewPublicHandler(sportRepo, slotRepo, pricingRepo, contactRepo, resolver)
	bookingHandler := handler.NewBookingHandler(sportRepo, slotRepo, pricingRepo, bookingRepo, resolver, receipts)
	staffHandler := handler.NewStaffHandler(cfg, staffRepo, sportRepo, slotRepo, bookingRepo)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterPublic(e, publicHandler, bookingHandler, rdb)
	router.RegisterStaff(e, staffHandler, cfg.JWTSecret)

	// Background consumer mirrors confirmed bookings into logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
