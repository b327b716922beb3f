package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"qmenus-system/config"
	"qmenus-system/internal/catalog"
	"qmenus-system/internal/database"
	"qmenus-system/internal/draft"
	"qmenus-system/internal/gateway/handlers"
	"qmenus-system/internal/gateway/middleware"
	"qmenus-system/internal/sync"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	cfg := config.LoadConfig()
	if cfg.Sync.RestaurantID == "" {
		log.Fatal("RESTAURANT_ID is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := config.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	db, err := database.NewConnection(cfg.DB.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to catalog DB: %v", err)
	}
	if err := catalog.MigrateCatalogDB(db); err != nil {
		log.Fatalf("Failed to migrate catalog DB: %v", err)
	}
	if err := database.MigrateArchiveDB(db); err != nil {
		log.Fatalf("Failed to migrate archive DB: %v", err)
	}

	drafts := draft.NewStore(draft.NewRedisKV(redisClient))
	repo := catalog.NewRepository(db, redisClient)
	archiver := database.NewOrderArchiver(db, cfg.Sync.RestaurantID)

	engine := sync.NewEngine(sync.Config{
		RestaurantID:    cfg.Sync.RestaurantID,
		Stream:          sync.NewRedisStream(redisClient),
		Drafts:          drafts,
		Archiver:        archiver,
		HighlightWindow: cfg.Sync.HighlightWindow,
		StalePendingAge: cfg.Sync.StalePendingAge,
	})
	if err := engine.Start(ctx); err != nil {
		log.Fatalf("Failed to start sync engine: %v", err)
	}
	defer engine.Close()

	authHandler := handlers.NewAuthHTTPHandler(cfg.Auth, cfg.Sync.RestaurantID)
	menuHandler := handlers.NewMenuHTTPHandler(repo)
	draftHandler := handlers.NewDraftHTTPHandler(drafts, repo)
	orderHandler := handlers.NewOrderHTTPHandler(engine, repo, drafts, archiver, cfg.Sync.RestaurantID)
	currencyHandler := handlers.NewCurrencyHTTPHandler(drafts, repo)

	r := gin.Default()

	r.Use(middleware.CORS())
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(cfg.API.RateLimit))

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
		}
	}

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth())
	{
		orders := protected.Group("/orders")
		{
			orders.GET("", orderHandler.ListOrders)
			orders.POST("", orderHandler.SubmitOrder)
			orders.GET("/highlights", orderHandler.GetHighlights)
			orders.POST("/snapshot", orderHandler.LoadSnapshot)
			orders.GET("/closed", orderHandler.ListClosedOrders)
			orders.GET("/:orderId", orderHandler.GetOrder)
			orders.POST("/:orderId/select", orderHandler.SelectOrder)
			orders.GET("/:orderId/receipt", orderHandler.GetReceipt)
		}

		submissions := protected.Group("/submissions")
		{
			submissions.GET("", orderHandler.ListSubmissions)
		}

		restaurants := protected.Group("/restaurants")
		{
			restaurants.GET("/:id", menuHandler.GetRestaurant)
			restaurants.GET("/:id/menu", menuHandler.GetMenu)
			restaurants.POST("/:id/refresh", menuHandler.RefreshCatalog)

			restaurants.GET("/:id/currency", currencyHandler.GetCurrency)
			restaurants.PUT("/:id/currency", currencyHandler.SetCurrency)
			restaurants.DELETE("/:id/currency", currencyHandler.ClearCurrency)
			restaurants.GET("/:id/convert", currencyHandler.Convert)

			draftRoutes := restaurants.Group("/:id/drafts/:tableId")
			{
				draftRoutes.GET("", draftHandler.GetDraft)
				draftRoutes.DELETE("", draftHandler.ClearDraft)
				draftRoutes.POST("/items", draftHandler.AddItem)
				draftRoutes.POST("/custom-items", draftHandler.AddCustomItem)
				draftRoutes.DELETE("/items/:lineId", draftHandler.RemoveItem)
				draftRoutes.PUT("/customer", draftHandler.UpdateCustomer)
			}
		}
	}

	r.GET("/health", healthCheckHandler(redisClient))

	port := ":8080"
	log.Printf("Starting terminal server on port %s", port)

	srv := &http.Server{Addr: port, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down terminal server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

func healthCheckHandler(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		httpStatus := http.StatusOK

		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			status = "degraded"
			httpStatus = http.StatusPartialContent
		}

		c.JSON(httpStatus, gin.H{
			"status":    status,
			"message":   "Server is running",
			"timestamp": time.Now(),
		})
	}
}
