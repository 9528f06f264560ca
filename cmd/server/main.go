package main

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fadilmartias/notice-radar/internal/config"
	"github.com/fadilmartias/notice-radar/internal/domain/fiber/handler"
	"github.com/fadilmartias/notice-radar/internal/filter"
	"github.com/fadilmartias/notice-radar/internal/kvstore"
	"github.com/fadilmartias/notice-radar/internal/ledger"
	"github.com/fadilmartias/notice-radar/internal/middleware"
	"github.com/fadilmartias/notice-radar/internal/repository"
	"github.com/fadilmartias/notice-radar/internal/scoring"
	"github.com/fadilmartias/notice-radar/internal/service"
	"github.com/fadilmartias/notice-radar/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}
			return ctx.Status(code).JSON(fiber.Map{"success": false, "message": message})
		},
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, " + middleware.UserIDHeader,
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		// profiling endpoints only outside production
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	db := ConnectDB()
	notices := repository.NewNoticeRepository(db)

	oracle, err := service.NewOracle(ctx, config.LoadScoringConfig())
	if err != nil {
		log.Fatal(err)
	}
	if err := config.LoadLedgerConfig().Validate(); err != nil {
		log.Fatal(err)
	}
	slots := ConnectSlots(ctx)

	deps := usecase.Dependencies{
		Pipeline:  filter.NewPipeline(notices, appConfig.Location(), appConfig.PageSize),
		Notices:   notices,
		Scorer:    scoring.NewClient(oracle),
		Tracker:   scoring.NewTracker(),
		Pages:     service.NewPageReaderService(config.LoadScoringConfig().Timeout),
		CrawlLogs: repository.NewCrawlLogRepository(db),
		Slots:     slots,
	}
	sessions := usecase.NewSessions(deps, OpenLedger(ctx, db, slots))
	handler.NewNoticeHandler(sessions).RegisterRoutes(app)

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			log.Printf("Active goroutines: %d", runtime.NumGoroutine())
		}
	}()

	log.Println("Server running on ", appConfig.Port)
	if err := app.Listen(appConfig.Port); err != nil {
		log.Fatal(err)
	}
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	var dialector gorm.Dialector
	switch dbConfig.Driver {
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(dbConfig.Path), 0o755); err != nil {
			log.Fatalf("Could not create database directory: %v", err)
		}
		dialector = sqlite.Open(dbConfig.DSN())
	case config.DriverPostgres:
		dialector = postgres.Open(dbConfig.DSN())
	default:
		log.Fatalf("Unknown DB_DRIVER %q", dbConfig.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Could not get database instance: %v", err)
	}
	switch {
	case dbConfig.Driver == config.DriverSQLite:
		sqlDB.SetMaxOpenConns(1)
	case !appConfig.IsProduction():
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	default:
		sqlDB.SetMaxIdleConns(20)
		sqlDB.SetMaxOpenConns(200)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("migration failed: ", err)
	}
	log.Printf("Connected to %s database", dbConfig.Driver)
	return db
}

// ConnectSlots opens the store behind local ledgers and preferences.
func ConnectSlots(ctx context.Context) kvstore.SlotStore {
	cfg := config.LoadLedgerConfig()
	switch cfg.SlotBackend {
	case config.SlotBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("Could not connect to redis: %v", err)
		}
		return kvstore.NewRedisStore(client, cfg.RedisPrefix)
	case config.SlotBackendFile:
		store, err := kvstore.NewFileStore(cfg.SlotDir)
		if err != nil {
			log.Fatal(err)
		}
		return store
	default:
		log.Fatalf("Unknown SLOT_BACKEND %q", cfg.SlotBackend)
		return nil
	}
}

// OpenLedger picks the exclusion strategy once for the whole process.
func OpenLedger(ctx context.Context, db *gorm.DB, slots kvstore.SlotStore) ledger.Opener {
	cfg := config.LoadLedgerConfig()
	switch cfg.Mode {
	case config.LedgerModeRemote:
		log.Println("Exclusions stored per user in the database")
		return ledger.RemoteOpener(repository.NewExclusionRepository(db), repository.NewBookmarkRepository(db))
	case config.LedgerModeLocal:
		local, err := ledger.OpenLocal(ctx, slots)
		if err != nil {
			log.Fatal(err)
		}
		log.Println("Exclusions stored in local slots")
		return ledger.LocalOpener(local)
	default:
		log.Fatalf("Unknown LEDGER_MODE %q", cfg.Mode)
		return nil
	}
}
