package main

import (
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"restaurant-pos/billing"
	"restaurant-pos/config"
	"restaurant-pos/controllers"
	"restaurant-pos/database"
	"restaurant-pos/export"
	"restaurant-pos/logger"
	"restaurant-pos/middlewares"
	"restaurant-pos/models"
	"restaurant-pos/notify"
	"restaurant-pos/orders"
	"restaurant-pos/reports"
	"restaurant-pos/routes"
	"restaurant-pos/seed"
	"restaurant-pos/tables"
	"restaurant-pos/utils"

	"github.com/bwmarrin/snowflake"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	appLog := logger.NewLogger("restaurant-pos")

	// ---- Database
	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	store := database.NewStore(db)
	if cfg.Seed {
		if _, err := seed.Run(store, cfg.SeedAdminPassword, cfg.TaxRate, appLog); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// ---- Order and invoice numbers
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		log.Fatalf("snowflake: %v", err)
	}
	orderNumbers := utils.Numbers(node, "ORD")
	invoiceNumbers := utils.Numbers(node, "INV")

	// ---- Notifications (fall back to the log when the broker is down)
	var notifier notify.Notifier = notify.NewLogNotifier(appLog)
	if cfg.RabbitMQURL != "" {
		amqpNotifier, err := notify.Dial(cfg.RabbitMQURL, appLog)
		if err != nil {
			appLog.Error("startup", "", "rabbitmq unavailable, logging notifications instead", err)
		} else {
			notifier = amqpNotifier
			defer amqpNotifier.Close()
		}
	}

	h := &controllers.Handler{
		Store:    store,
		Orders:   orders.NewEngine(cfg.TaxRate, orderNumbers),
		Billing:  billing.NewEngine(invoiceNumbers),
		Tables:   tables.NewRegistry(models.TableStatus(cfg.TableReleaseStatus)),
		Reports:  reports.New(sqlx.NewDb(sqlDB, database.SQLDriverName(db))),
		Notifier: notifier,
		Log:      appLog,
		Shop:     export.Shop{Name: cfg.RestaurantName, GSTNumber: cfg.GSTNumber, Currency: cfg.Currency},
		Secret:   cfg.JWTSecret,
		Location: cfg.Location,
	}

	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler(appLog),
		BodyLimit:    cfg.BodyLimitBytes,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: false, // bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
		ExposeHeaders:    "Idempotent-Replayed, X-Request-ID",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
	}))

	routes.Register(app, h, db, appLog)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		appLog.Info("shutdown", "", "stopping server")
		_ = app.Shutdown()
	}()

	appLog.Info("startup", "", "API server starting", slog.String("port", cfg.Port), slog.String("db_driver", cfg.DBDriver))
	if err := app.Listen(":" + cfg.Port); err != nil {
		appLog.Error("startup", "", "server stopped", err)
		os.Exit(1)
	}
}
