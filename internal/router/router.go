package router

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rifat29/ripple/backend/internal/graph"
	"github.com/rifat29/ripple/backend/internal/handlers"
	"github.com/rifat29/ripple/backend/internal/middleware"
	"github.com/rifat29/ripple/backend/internal/realtime"
	"github.com/rifat29/ripple/backend/internal/repositories"
	"github.com/rifat29/ripple/backend/pkg/config"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, cfg *config.Config) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORSWithConfig(eMiddleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowCredentials: true,
	}))
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, mgClient *mongo.Client, cfg *config.Config, log *logrus.Logger) {
	db := mgClient.Database(cfg.MongoDBName)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(db)
	postRepo := repositories.NewMongoPostRepository(db)
	commentRepo := repositories.NewMongoCommentRepository(db)
	communityRepo := repositories.NewMongoCommunityRepository(db)
	chatRepo := repositories.NewMongoChatRepository(db)
	messageRepo := repositories.NewMongoMessageRepository(db)
	notificationRepo := repositories.NewMongoNotificationRepository(db)

	indexCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := chatRepo.EnsureIndexes(indexCtx); err != nil {
		log.WithError(err).Fatal("failed to create conversation indexes")
	}
	if err := messageRepo.EnsureIndexes(indexCtx); err != nil {
		log.WithError(err).Fatal("failed to create message indexes")
	}
	if err := communityRepo.EnsureIndexes(indexCtx); err != nil {
		log.WithError(err).Fatal("failed to create community indexes")
	}

	// --- Consistency engine over the relationship graph ---
	engine := graph.NewEngine(userRepo, postRepo, commentRepo, communityRepo, notificationRepo, log)

	// --- Realtime delivery ---
	registry := realtime.NewRegistry()
	rtEngine := realtime.NewEngine(registry, chatRepo, messageRepo, log)
	rtServer := realtime.NewServer(rtEngine, log)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())

	userHandler := handlers.NewUserHandler(userRepo, chatRepo)
	userHandler.RegisterUserRoutes(api)

	followHandler := handlers.NewFollowHandler(engine)
	followHandler.RegisterFollowRoutes(api)

	postHandler := handlers.NewPostHandler(engine, postRepo, userRepo)
	postHandler.RegisterPostRoutes(api)

	likeHandler := handlers.NewLikeHandler(engine)
	likeHandler.RegisterLikeRoutes(api)

	commentHandler := handlers.NewCommentHandler(engine, commentRepo, userRepo)
	commentHandler.RegisterCommentRoutes(api)

	communityHandler := handlers.NewCommunityHandler(engine, communityRepo, userRepo)
	communityHandler.RegisterCommunityRoutes(api)

	chatHandler := handlers.NewChatHandler(chatRepo, messageRepo, userRepo)
	chatHandler.RegisterChatRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)

	// Websocket endpoint; the JWT for upgrades travels in the "jwt" cookie
	ws := e.Group("/ws")
	ws.Use(middleware.JWTAuthMiddleware())
	ws.GET("", rtServer.HandleConnection)

	log.Info("all routes configured")
}
