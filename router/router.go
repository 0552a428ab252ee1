package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/drivethru-app/config"
	"github.com/yeremiapane/drivethru-app/controllers"
	"github.com/yeremiapane/drivethru-app/database"
	"github.com/yeremiapane/drivethru-app/kds"
	"github.com/yeremiapane/drivethru-app/middlewares"
	"github.com/yeremiapane/drivethru-app/services"
	"github.com/yeremiapane/drivethru-app/utils"
)

// Dependencies are the long-lived components the routes are served from.
// Journal may be nil when the journal is disabled.
type Dependencies struct {
	Config  *config.Config
	Orders  *services.OrderService
	Hub     *kds.Hub
	Journal *database.Journal
	Tokens  *utils.TokenManager
}

func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	r := gin.New()

	// Apply core middlewares
	r.Use(middlewares.RequestID())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.Recovery())
	r.Use(middlewares.ErrorHandler())
	r.Use(middlewares.SecurityHeaders(cfg.IsProduction()))
	r.Use(middlewares.CORSMiddlewares(cfg.AllowedOrigins))

	// Inisialisasi controller
	healthCtrl := controllers.NewHealthController(cfg)
	orderCtrl := controllers.NewOrderController(deps.Orders, cfg.MinMessageLength, cfg.MaxMessageLength)
	boardCtrl := controllers.NewBoardController(deps.Hub, cfg.AllowedOrigins)
	adminCtrl := controllers.NewAdminController(cfg, deps.Tokens, deps.Journal, deps.Orders)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/", healthCtrl.Health)
	r.GET("/health", healthCtrl.Health)

	r.GET("/ws/board", boardCtrl.BoardHandler)

	api := r.Group("/api/v1")
	if cfg.EnableRateLimiting {
		limiter := middlewares.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
		api.Use(limiter.RateLimit())
	}

	api.POST("/process", orderCtrl.ProcessOrder)
	api.GET("/orders", orderCtrl.GetCurrentOrders)
	api.GET("/orders/stats", orderCtrl.GetOrderStats)
	api.GET("/orders/history", orderCtrl.GetOrderHistory)
	api.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	api.DELETE("/orders/:order_id", orderCtrl.CancelOrder)

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	api.POST("/admin/login", middlewares.NewStrictRateLimiter(), adminCtrl.Login)

	admin := api.Group("/admin")
	admin.Use(middlewares.AdminAuth(deps.Tokens))
	{
		admin.GET("/journal", adminCtrl.GetJournal)
		admin.GET("/config", adminCtrl.GetConfig)
		admin.DELETE("/orders", adminCtrl.ClearOrders)
	}

	return r
}
