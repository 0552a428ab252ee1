package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/drivethru-app/config"
	"github.com/yeremiapane/drivethru-app/database"
	"github.com/yeremiapane/drivethru-app/kds"
	"github.com/yeremiapane/drivethru-app/router"
	"github.com/yeremiapane/drivethru-app/services"
	"github.com/yeremiapane/drivethru-app/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load configuration: %v", err)
	}

	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)

	if problems := cfg.Validate(); len(problems) > 0 {
		utils.ErrorLogger.Fatalf("Invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}

	// Set gin mode
	if cfg.GinMode == gin.ReleaseMode || cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	store := database.NewOrderStore()
	hub := kds.NewHub(store.Snapshot)
	notifiers := services.MultiNotifier{hub}

	// Initialize journal DB
	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	var journal *database.Journal
	if db != nil {
		journal = database.NewJournal(db)
		notifiers = append(notifiers, journal)
	}

	if cfg.AMQPURL != "" {
		publisher, err := services.DialAMQP(cfg.AMQPURL)
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to connect to message broker: %v", err)
		}
		defer publisher.Close()
		notifiers = append(notifiers, publisher)
		utils.InfoLogger.Infof("Publishing order events to exchange %s", services.OrdersExchange)
	}

	parser, err := services.NewIntentParser(cfg, nil)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to create intent parser: %v", err)
	}
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := services.NewRedisClient(ctx, cfg.RedisAddr)
		cancel()
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()
		parser = services.NewCachedIntentParser(parser, client, cfg.IntentCacheTTL)
		utils.InfoLogger.Infof("Caching intents in redis at %s", cfg.RedisAddr)
	}

	orders := services.NewOrderService(store, parser, notifiers, services.OrderOptions{
		MaxItemQuantity: cfg.MaxItemQuantity,
		AITimeout:       cfg.AIRequestTimeout,
	})

	r := router.SetupRouter(router.Dependencies{
		Config:  cfg,
		Orders:  orders,
		Hub:     hub,
		Journal: journal,
		Tokens:  utils.NewTokenManager(cfg.SecretKey, cfg.AccessTokenTTL),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Infof("Starting %s on %s (provider=%s, model=%s)", "drive-thru API", cfg.Addr(), cfg.AIProvider, cfg.AIModel())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.InfoLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Errorf("Server forced to shutdown: %v", err)
	}
	utils.InfoLogger.Info("Server exited")
}
