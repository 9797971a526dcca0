package container

import (
	"context"
	"fmt"
	"time"

	"knowledgehub-backend/internal/config"
	infraCache "knowledgehub-backend/internal/infrastructure/cache"
	"knowledgehub-backend/internal/infrastructure/database"
	"knowledgehub-backend/pkg/cache"
	"knowledgehub-backend/pkg/jwt"
	"knowledgehub-backend/pkg/logger"

	"knowledgehub-backend/internal/domains/account"
	accountHandler "knowledgehub-backend/internal/domains/account/handler"
	accountRepo "knowledgehub-backend/internal/domains/account/repository"
	accountService "knowledgehub-backend/internal/domains/account/service"
	"knowledgehub-backend/internal/domains/question"
	questionHandler "knowledgehub-backend/internal/domains/question/handler"
	questionRepo "knowledgehub-backend/internal/domains/question/repository"
	questionService "knowledgehub-backend/internal/domains/question/service"
	"knowledgehub-backend/internal/domains/tag"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph. Every component is a
// singleton created once at startup, in dependency order.
type Container struct {
	// Infrastructure
	Config     *config.Config
	DB         *database.Postgres
	Cache      cache.Cache
	JWTManager *jwt.Manager

	// Repositories
	AccountRepo  account.Repository
	QuestionRepo question.Repository

	// External collaborators
	TagSuggester tag.Suggester

	// Services
	AccountService  account.Service
	QuestionService question.Service

	// Handlers
	AccountHandler  *accountHandler.Handler
	QuestionHandler *questionHandler.Handler
}

// NewContainer builds the whole graph. Order matters: config, then
// infrastructure, then repositories, services, handlers.
func NewContainer() (*Container, error) {
	c := &Container{}

	// ========================================
	// STEP 1: CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Info("config loaded", map[string]interface{}{
		"environment": cfg.App.Environment,
	})

	// ========================================
	// STEP 2: DATABASE
	// ========================================
	// The pool is lazy: the handle is created now, the first query (or
	// this warm-up Acquire) opens the connections.
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgres(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := db.Acquire(ctx); err != nil {
		// Startup continues; requests answer 503 until the store returns.
		logger.Warn("database not reachable at startup", map[string]interface{}{
			"error": err.Error(),
		})
	}
	c.DB = db

	// ========================================
	// STEP 3: CACHE
	// ========================================
	redisCache := infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)

	if rc, ok := redisCache.(*infraCache.RedisCache); ok {
		if err := rc.Connect(context.Background()); err != nil {
			// Cache is a soft dependency; population falls through to
			// the store when it is down.
			logger.Warn("redis connection failed (non-critical)", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	c.Cache = redisCache

	c.JWTManager = jwt.NewManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.SessionExpiryHrs)*time.Hour,
	)

	// ========================================
	// STEP 4: REPOSITORIES
	// ========================================
	c.AccountRepo = accountRepo.NewPostgresRepository(c.DB)
	c.QuestionRepo = questionRepo.NewPostgresRepository(c.DB)

	// ========================================
	// STEP 5: EXTERNAL COLLABORATORS
	// ========================================
	c.TagSuggester = tag.NewClient(&tag.Config{
		BaseURL: cfg.TagSuggest.BaseURL,
		Timeout: time.Duration(cfg.TagSuggest.TimeoutMs) * time.Millisecond,
	})

	// ========================================
	// STEP 6: SERVICES
	// ========================================
	// The account service sees the question domain only through the
	// existence check it needs for bookmark validation.
	c.AccountService = accountService.NewAccountService(
		c.AccountRepo,
		c.QuestionRepo,
		c.JWTManager,
		c.Cache,
	)

	c.QuestionService = questionService.NewQuestionService(
		c.QuestionRepo,
		c.AccountRepo,
		c.TagSuggester,
		c.Cache,
	)

	// ========================================
	// STEP 7: HANDLERS
	// ========================================
	c.AccountHandler = accountHandler.NewHandler(c.AccountService)
	c.QuestionHandler = questionHandler.NewHandler(c.QuestionService)

	logger.Info("container initialized", nil)
	return c, nil
}

// Cleanup releases held resources during graceful shutdown.
func (c *Container) Cleanup() {
	if c.DB != nil {
		c.DB.Close()
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				logger.Warn("failed to close redis", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}

	logger.Info("container cleanup completed", nil)
}
