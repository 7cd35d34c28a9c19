package container

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"elib-backend/internal/config"
	infraCache "elib-backend/internal/infrastructure/cache"
	"elib-backend/internal/infrastructure/database"
	"elib-backend/internal/infrastructure/storage"
	"elib-backend/pkg/cache"
	"elib-backend/pkg/jwt"
	"elib-backend/pkg/logger"

	bookHandler "elib-backend/internal/domains/book/handler"
	bookRepo "elib-backend/internal/domains/book/repository"
	bookService "elib-backend/internal/domains/book/service"
	"elib-backend/internal/domains/user"
	userHandler "elib-backend/internal/domains/user/handler"
	userRepo "elib-backend/internal/domains/user/repository"
	userService "elib-backend/internal/domains/user/service"
)

// Container holds every long-lived dependency of the application,
// built once at startup in dependency order.
type Container struct {
	Config      *config.Config
	DB          *database.PostgresDB
	Cache       cache.Cache
	Media       *storage.MinIOStore
	Processor   *storage.ImageProcessor
	JWTManager  *jwt.Manager
	AsynqClient *asynq.Client

	UserRepo    user.Repository
	UserService user.Service
	UserHandler *userHandler.UserHandler

	BookRepo    bookRepo.RepositoryInterface
	BookService bookService.ServiceInterface
	BookHandler *bookHandler.Handler

	redis *infraCache.RedisCache
}

// NewContainer initializes config, infrastructure, repositories,
// services and handlers, in that order.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	logger.Init(cfg.App.Environment)

	ctx := context.Background()

	db, err := database.NewPostgresDB(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	c.DB = db

	c.redis = infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.redis.Ping(ctx); err != nil {
		// The cache is an optimization; a dead Redis only costs reads.
		logger.Warn("redis unavailable at startup", err)
	}
	c.Cache = c.redis

	media, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to init media store: %w", err)
	}
	c.Media = media
	c.Processor = storage.NewImageProcessor()

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	c.UserRepo = userRepo.NewPostgresRepository(db.Pool)
	c.UserService = userService.NewUserService(c.UserRepo, c.JWTManager)
	c.UserHandler = userHandler.NewUserHandler(c.UserService)

	c.BookRepo = bookRepo.NewPostgresRepository(db.Pool)
	c.BookService = bookService.NewService(c.BookRepo, c.Media, c.Cache, c.AsynqClient)
	c.BookHandler = bookHandler.NewHandler(c.BookService, cfg.Upload)

	return c, nil
}

// Cleanup releases all held connections.
func (c *Container) Cleanup() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			logger.Warn("asynq client close failed", err)
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			logger.Warn("redis close failed", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
