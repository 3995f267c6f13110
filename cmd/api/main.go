package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tableorder-api/internal/application/service"
	"github.com/sangkips/tableorder-api/internal/config"
	domainRepo "github.com/sangkips/tableorder-api/internal/domain/repository"
	"github.com/sangkips/tableorder-api/internal/infrastructure/cache"
	"github.com/sangkips/tableorder-api/internal/infrastructure/database"
	"github.com/sangkips/tableorder-api/internal/infrastructure/events"
	"github.com/sangkips/tableorder-api/internal/infrastructure/notify"
	"github.com/sangkips/tableorder-api/internal/infrastructure/repository"
	"github.com/sangkips/tableorder-api/internal/infrastructure/seed"
	"github.com/sangkips/tableorder-api/internal/presentation/http/handler"
	"github.com/sangkips/tableorder-api/internal/presentation/http/routes"
	"github.com/sangkips/tableorder-api/pkg/printer"
	"github.com/sangkips/tableorder-api/pkg/ratelimit"
	"github.com/sangkips/tableorder-api/pkg/utils"
	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Amounts are sent to clients as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := database.SeedDefaultData(db); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
		cfg.JWT.SessionExpiryHours,
	)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	menuRepo := repository.NewMenuItemRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	healthChecks := map[string]routes.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	// Redis backs the settings cache and OTP codes when configured
	var (
		settingsCache domainRepo.SettingsCache = cache.NoopSettingsCache{}
		otpStore      domainRepo.OTPStore      = cache.NewMemoryOTPStore()
	)
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisClient.Close()

		settingsCache = cache.NewRedisSettingsCache(redisClient, cfg.Redis.SettingsTTL)
		otpStore = cache.NewRedisOTPStore(redisClient)
		healthChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	} else {
		log.Printf("Redis not configured, using in-process OTP store")
	}

	publisher := events.NewPublisher(&cfg.Kafka)
	defer publisher.Close()

	thermalPrinter, err := printer.New(cfg.Printer.Type, cfg.Printer.USBPath, cfg.Printer.Address)
	if err != nil {
		log.Printf("Warning: Failed to initialize printer: %v", err)
		thermalPrinter = printer.NewNullPrinter()
	}
	defer thermalPrinter.Close()

	apiLimiter := ratelimit.New(ratelimit.Config{
		Requests: cfg.RateLimit.Requests,
		Period:   time.Duration(cfg.RateLimit.Duration) * time.Second,
	})
	otpLimiter := ratelimit.New(ratelimit.Config{
		Requests: cfg.OTP.SendsPerMinute,
		Period:   time.Minute,
	})
	go apiLimiter.Run(5*time.Minute, ctx.Done())
	go otpLimiter.Run(5*time.Minute, ctx.Done())
	go purgeIdempotencyKeys(ctx, idempotencyRepo, time.Hour)

	loc := cfg.Restaurant.Location()

	// Services
	settingsService := service.NewSettingsService(settingsRepo, settingsCache)
	billingService := service.NewBillingService(settingsService)
	authService := service.NewAuthService(userRepo, jwtManager)
	userService := service.NewUserService(userRepo, roleRepo, permissionRepo)
	otpService := service.NewOTPService(otpStore, customerRepo, settingsService, jwtManager, otpLimiter,
		cfg.OTP, cfg.Restaurant.MaxTables, cfg.App.Env != "production")
	categoryService := service.NewCategoryService(categoryRepo)
	menuService := service.NewMenuService(menuRepo, categoryRepo, settingsService)
	couponService := service.NewCouponService(couponRepo, orderRepo, settingsService, notify.NewWhatsAppClient(&cfg.WhatsApp), publisher)
	printerService := service.NewPrinterService(thermalPrinter, cfg.Printer.Type, cfg.Printer.CharWidth, loc)
	orderService := service.NewOrderService(orderRepo, menuRepo, customerRepo, couponService, billingService, publisher, printerService, loc)
	customerService := service.NewCustomerService(customerRepo)
	dashboardService := service.NewDashboardService(analyticsRepo, orderRepo, customerRepo, loc)

	if cfg.Seed.MenuFile != "" {
		menuFile, err := seed.LoadMenuFile(cfg.Seed.MenuFile)
		if err != nil {
			log.Printf("Warning: Failed to read menu seed: %v", err)
		} else if _, err := menuService.SeedMenu(ctx, menuFile); err != nil {
			log.Printf("Warning: Failed to seed menu: %v", err)
		}
	}

	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService, otpService),
		User:      handler.NewUserHandler(userService),
		Menu:      handler.NewMenuHandler(menuService),
		Category:  handler.NewCategoryHandler(categoryService),
		Order:     handler.NewOrderHandler(orderService),
		Coupon:    handler.NewCouponHandler(couponService, orderService),
		Customer:  handler.NewCustomerHandler(customerService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Settings:  handler.NewSettingsHandler(settingsService),
		Printer:   handler.NewPrinterHandler(printerService, orderService),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Limiter:         apiLimiter,
		HealthChecks:    healthChecks,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
		log.Printf("Environment: %s", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}

// purgeIdempotencyKeys drops expired idempotency keys every interval
func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, err := repo.DeleteExpired(ctx)
			if err != nil {
				log.Printf("Failed to purge idempotency keys: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("Purged %d expired idempotency keys", removed)
			}
		case <-ctx.Done():
			return
		}
	}
}
