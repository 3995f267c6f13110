package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sangkips/tableorder-api/internal/config"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tableorder-api/internal/domain/repository"
	"github.com/sangkips/tableorder-api/internal/infrastructure/database"
	"github.com/sangkips/tableorder-api/internal/presentation/http/handler"
	"github.com/sangkips/tableorder-api/internal/presentation/http/middleware"
	"github.com/sangkips/tableorder-api/pkg/ratelimit"
	"github.com/sangkips/tableorder-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Menu      *handler.MenuHandler
	Category  *handler.CategoryHandler
	Order     *handler.OrderHandler
	Coupon    *handler.CouponHandler
	Customer  *handler.CustomerHandler
	Dashboard *handler.DashboardHandler
	Settings  *handler.SettingsHandler
	Printer   *handler.PrinterHandler
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Limiter         *ratelimit.KeyedLimiter
	HealthChecks    map[string]HealthCheck
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))
	if deps.Cfg.Metrics.Enabled {
		router.Use(middleware.MetricsMiddleware())
		router.GET(deps.Cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	router.GET("/health", health(deps))

	v1 := router.Group("/api/v1")
	{
		registerPublicRoutes(v1, h, deps)

		diner := v1.Group("")
		diner.Use(middleware.SessionMiddleware(deps.JWTManager))
		diner.Use(middleware.RateLimit(deps.Limiter))
		registerDinerRoutes(diner, h, deps)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(middleware.RateLimit(deps.Limiter))
		registerProtectedRoutes(protected, h)
	}

	return router
}

func health(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{}
		for name, check := range deps.HealthChecks {
			if err := check(ctx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{
			"status":  state,
			"service": deps.Cfg.App.Name,
			"checks":  checks,
		})
	}
}

func registerPublicRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	public := v1.Group("")
	public.Use(middleware.RateLimit(deps.Limiter))

	auth := public.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.POST("/otp/send", h.Auth.SendOTP)
		auth.POST("/otp/verify", h.Auth.VerifyOTP)
	}

	public.GET("/menu", h.Menu.PublicMenu)
	public.GET("/settings", h.Settings.GetSnapshot)
}

func registerDinerRoutes(diner *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo})

	diner.POST("/orders", idempotent, h.Order.PlaceOrder)
	diner.GET("/orders/session", h.Order.SessionOrders)
	diner.GET("/bill", h.Order.GetBill)
	diner.POST("/bill/pay", idempotent, h.Order.PayBill)
	diner.POST("/coupons/validate", h.Coupon.Validate)
	diner.POST("/coupons/apply", idempotent, h.Coupon.Apply)
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.GET("/profile", h.Auth.GetProfile)
	protected.PUT("/profile/password", h.Auth.ChangePassword)

	admin := protected.Group("/admin")

	admin.GET("/dashboard", middleware.RequirePermission(database.PermViewDashboard), h.Dashboard.GetStats)

	registerMenuRoutes(admin, h)
	registerOrderRoutes(admin, h)
	registerCouponRoutes(admin, h)

	customers := admin.Group("/customers")
	customers.Use(middleware.RequirePermission(database.PermManageCustomers))
	{
		customers.GET("", h.Customer.List)
		customers.GET("/:id", h.Customer.Get)
	}

	settings := admin.Group("/settings")
	settings.Use(middleware.RequirePermission(database.PermManageSettings))
	{
		settings.GET("", h.Settings.List)
		settings.PUT("", h.Settings.UpdateSettings)
	}

	printer := admin.Group("/printer")
	printer.Use(middleware.RequirePermission(database.PermManageOrders))
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/test", h.Printer.TestPrint)
		printer.POST("/print", h.Printer.PrintReceipt)
	}

	staff := admin.Group("")
	staff.Use(middleware.RequireRole(entity.RoleAdmin))
	{
		staff.POST("/staff", h.User.CreateStaff)
		staff.GET("/roles", h.User.ListRoles)
		staff.GET("/permissions", h.User.ListPermissions)
	}
}

func registerMenuRoutes(admin *gin.RouterGroup, h *Handlers) {
	menu := admin.Group("/menu")
	menu.Use(middleware.RequirePermission(database.PermManageMenu))
	{
		menu.GET("", h.Menu.List)
		menu.POST("", h.Menu.Create)
		menu.GET("/:id", h.Menu.Get)
		menu.PUT("/:id", h.Menu.Update)
		menu.PATCH("/:id/availability", h.Menu.SetAvailability)
		menu.DELETE("/:id", h.Menu.Delete)
	}

	categories := admin.Group("/categories")
	categories.Use(middleware.RequirePermission(database.PermManageMenu))
	{
		categories.GET("", h.Category.List)
		categories.POST("", h.Category.Create)
		categories.PUT("/:id", h.Category.Update)
		categories.DELETE("/:id", h.Category.Delete)
	}
}

func registerOrderRoutes(admin *gin.RouterGroup, h *Handlers) {
	orders := admin.Group("/orders")
	orders.Use(middleware.RequirePermission(database.PermManageOrders))
	{
		orders.GET("", h.Order.List)
		orders.GET("/:id", h.Order.Get)
		orders.PATCH("/:id/status", h.Order.UpdateStatus)
	}

	bills := admin.Group("/bills")
	bills.Use(middleware.RequirePermission(database.PermManageOrders))
	{
		bills.GET("/:sessionId", h.Order.SessionBill)
		bills.POST("/:sessionId/pay", h.Order.SettleBill)
	}
}

func registerCouponRoutes(admin *gin.RouterGroup, h *Handlers) {
	coupons := admin.Group("/coupons")
	coupons.Use(middleware.RequirePermission(database.PermManageCoupons))
	{
		coupons.GET("", h.Coupon.List)
		coupons.GET("/types", h.Coupon.Types)
		coupons.POST("", h.Coupon.Create)
		coupons.POST("/validate", h.Coupon.Validate)
		coupons.POST("/apply", h.Coupon.Apply)
	}
}
