package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"storesync/internal/api/handlers"
	"storesync/internal/api/middleware"
	"storesync/internal/config"
	"storesync/internal/database"
	"storesync/internal/logger"
	"storesync/internal/sync"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database, orchestrator *sync.Orchestrator) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	shopHandler := handlers.NewShopHandler(db.DB, logger)
	syncHandler := handlers.NewSyncHandler(db.DB, orchestrator, logger)

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Shops
		shops := v1.Group("/shops")
		{
			shops.GET("", shopHandler.List)
			shops.GET("/:id", shopHandler.Get)
			shops.POST("", shopHandler.Create)
			shops.PUT("/:id", shopHandler.Update)
			shops.DELETE("/:id", shopHandler.Delete)
		}

		// Sync triggers
		v1.POST("/products/:id/sync", syncHandler.SyncProduct)
		v1.POST("/products/:id/drift", syncHandler.DetectDrift)
		v1.POST("/categories/:id/sync", syncHandler.SyncCategory)

		syncGroup := v1.Group("/sync")
		{
			syncGroup.POST("/category-tree", syncHandler.SyncCategoryTree)
			syncGroup.POST("/disable", syncHandler.Disable)
			syncGroup.GET("/states", syncHandler.ListStates)
			syncGroup.GET("/logs", syncHandler.ListLogs)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
