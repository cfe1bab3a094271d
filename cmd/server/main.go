package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/campusfest/festival/internal/config"
	"github.com/campusfest/festival/internal/database"
	"github.com/campusfest/festival/internal/handler"
	"github.com/campusfest/festival/internal/middleware"
	"github.com/campusfest/festival/internal/queue"
	"github.com/campusfest/festival/internal/repository"
	"github.com/campusfest/festival/internal/router"
	"github.com/campusfest/festival/internal/service"
	"github.com/campusfest/festival/internal/utils"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	reservations := repository.NewReservationRepo(db)
	trucks := repository.NewFoodTruckRepo(db)
	orders := repository.NewOrderRepo(db)

	qr := utils.NewQRTokenEncoder(cfg.QRSecret)
	engine := service.NewReservationEngine(events, users, reservations, qr)
	orderSvc := service.NewOrderService(trucks, orders)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	publicH := handler.NewPublicHandler(events, trucks)
	reservationH := handler.NewReservationHandler(engine, events)
	operatorH := handler.NewOperatorHandler(engine, events, reservations, qr)
	eventH := handler.NewEventHandler(events, users)
	truckH := handler.NewFoodTruckHandler(trucks)
	orderH := handler.NewOrderHandler(orderSvc, trucks)

	// Notification fan-out runs for the lifetime of the process and
	// reconnects on broker failures.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterAttendee(e, reservationH, orderH, cfg.JWTSecret)
	router.RegisterVendor(e, eventH, operatorH, truckH, orderH, cfg.JWTSecret)
	router.RegisterAdmin(e, eventH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
