package main

import (
	"log"
	"time"

	"hearts-platform/backend/internal/auth"
	"hearts-platform/backend/internal/db"
	"hearts-platform/backend/internal/game"
	"hearts-platform/backend/internal/handlers"
	"hearts-platform/backend/internal/locks"
	"hearts-platform/backend/internal/redis"
	"hearts-platform/backend/internal/repository"
	"hearts-platform/backend/internal/session"
	"hearts-platform/backend/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server holds all dependencies and configuration for the hearts platform server
type Server struct {
	config Config
	db     *db.DB
	redis  *redis.Client

	authService *auth.Service
	repo        *repository.Repository
	store       *session.Store
	registry    *ws.Registry
	locks       *locks.Manager
	coordinator *game.Coordinator
}

// NewServer creates and initializes a new Server instance
func NewServer(config Config) (*Server, error) {
	database, err := db.New(config.DBConfig)
	if err != nil {
		return nil, err
	}

	redisClient, err := redis.New(config.RedisConfig)
	if err != nil {
		return nil, err
	}

	repo := repository.New(database.DB)
	store := session.NewStore(redisClient.Client)
	registry := ws.NewRegistry()
	lockMgr := locks.NewManager(redisClient.Client)
	coordinator := game.NewCoordinator(repo, store, registry, lockMgr)

	return &Server{
		config:      config,
		db:          database,
		redis:       redisClient,
		authService: auth.NewService(config.JWTSecret),
		repo:        repo,
		store:       store,
		registry:    registry,
		locks:       lockMgr,
		coordinator: coordinator,
	}, nil
}

// Run starts the server and blocks until it exits
func (s *Server) Run() error {
	if s.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := s.setupRoutes()

	log.Printf("Server starting on port %s", s.config.ServerPort)
	return r.Run(":" + s.config.ServerPort)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *gin.Engine {
	r := gin.Default()

	// Configure CORS
	corsConfig := cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true // Allow all origins
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400 * time.Second,
	}
	r.Use(cors.New(corsConfig))

	// Public routes
	r.POST("/api/auth/register", func(c *gin.Context) {
		handlers.HandleRegister(c, s.db, s.authService)
	})
	r.POST("/api/auth/login", func(c *gin.Context) {
		handlers.HandleLogin(c, s.db, s.authService)
	})

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(handlers.AuthMiddleware(s.authService))
	{
		authorized.GET("/api/user", func(c *gin.Context) {
			handlers.HandleGetCurrentUser(c, s.db)
		})
		authorized.POST("/api/games/find-or-create", func(c *gin.Context) {
			handlers.HandleFindOrCreateGame(c, s.coordinator)
		})
		authorized.GET("/api/games", func(c *gin.Context) {
			handlers.HandleListWaitingGames(c, s.repo)
		})
		authorized.GET("/api/games/:id", func(c *gin.Context) {
			handlers.HandleGetGame(c, s.repo)
		})
	}

	// WebSocket endpoint (handles auth internally via token query param)
	r.GET("/api/games/:id/ws", func(c *gin.Context) {
		handlers.HandleGameSocket(c, s.authService, s.repo, s.registry, s.coordinator)
	})

	return r
}

// Close cleanly shuts down the server
func (s *Server) Close() error {
	if err := s.redis.Close(); err != nil {
		log.Printf("Failed to close Redis connection: %v", err)
	}
	sqlDB, err := s.db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
