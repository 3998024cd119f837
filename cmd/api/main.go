package main

import (
	"context"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/notify"
	"backend/internal/repository"
	"backend/internal/scheduler"
	"backend/internal/service"
	"backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Realty Service API
// @version         1.0
// @description     Tenant service-request coordination for multi-building facilities.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	db, err := database.NewConnection(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Info("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Outbound mail: fall back to log-only delivery when SMTP is not configured
	var gateway notify.Gateway = notify.LogGateway{}
	if cfg.SMTP.Host != "" {
		gateway = notify.NewSMTPGateway(cfg.SMTP)
	}

	// Set up dependencies (Repository -> Service -> Handler)
	requestStore := repository.NewRequestStore(db)
	userRepo := repository.NewUserRepository(db)
	buildingRepo := repository.NewBuildingRepository(db)

	requestService := service.NewRequestService(requestStore, wsHub)
	assignmentService := service.NewAssignmentService(requestStore, userRepo, wsHub)
	userService := service.NewUserService(userRepo, buildingRepo, gateway, cfg.JWTSecret, cfg.AccessTokenTTL)
	buildingService := service.NewBuildingService(buildingRepo)

	escalations := scheduler.NewEscalationScheduler(requestStore, userRepo, gateway, cfg.Escalation)
	escalations.Start(context.Background())

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(userService)
	requestHandler := handler.NewRequestHandler(requestService, assignmentService)
	staffHandler := handler.NewStaffHandler(userService)
	buildingHandler := handler.NewBuildingHandler(buildingService)
	escalationHandler := handler.NewEscalationHandler(escalations)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))
	requestHandler.RegisterRoutes(router.Group(""))
	staffHandler.RegisterRoutes(router.Group(""))
	buildingHandler.RegisterRoutes(router.Group(""))
	escalationHandler.RegisterRoutes(router.Group(""))

	log.Infof("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
