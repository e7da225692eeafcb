package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"

	"taskman/configs"
	v1 "taskman/internal/api/v1"
	"taskman/internal/api/v1/handlers"
	"taskman/internal/auth"
	"taskman/internal/middleware"
	"taskman/internal/repository"
	"taskman/pkg/database"
	"taskman/pkg/logger"
)

func main() {
	cfg := configs.LoadConfig()

	logs, err := logger.New(cfg.LogDir)
	if err != nil {
		log.Fatalf("init loggers: %v", err)
	}
	defer logs.Sync()
	logs.System.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	db, err := database.ConnectDB(cfg)
	if err != nil {
		logs.Error.Error("Database connection failed", zap.Error(err))
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()
	logs.System.Info("Database connected")

	if err := repository.CreateTablesIfNotExist(db); err != nil {
		logs.Error.Error("Schema setup failed", zap.Error(err))
		log.Fatalf("create tables: %v", err)
	}

	// Redis only backs the login rate limiter. Without it the limiter
	// falls back to in-memory counters, which is fine for a single node.
	var loginLimiterStorage fiber.Storage
	if cfg.RedisHost != "" {
		redisClient, err := database.ConnectRedis(cfg)
		if err != nil {
			logs.Error.Error("Redis connection failed", zap.Error(err))
			log.Fatalf("connect redis: %v", err)
		}
		defer redisClient.Close()
		loginLimiterStorage = database.NewRedisStorage(redisClient)
		logs.System.Info("Redis connected")
	}

	users := repository.NewUserStore(db)
	tasks := repository.NewTaskStore(db)
	tokens := auth.NewTokenManager([]byte(cfg.SecretKey), time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	guard := auth.NewGuard(tokens, users)
	h := handlers.New(users, tasks, tokens, logs)

	app := fiber.New()

	// Middleware
	app.Use(middleware.ErrorHandler(logs))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.FrontendURL,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Task management API",
			"success": true,
			"status":  fiber.StatusOK,
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	loginLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		Storage:    loginLimiterStorage,
	})
	v1.RegisterRoutes(app, h, middleware.Auth(guard, logs), loginLimiter)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logs.System.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logs.Error.Error("Application failed to start", zap.Error(err))
		log.Fatalf("listen: %v", err)
	}
}
