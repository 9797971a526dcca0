package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"knowledgehub-backend/internal/shared/middleware"
	"knowledgehub-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupAccountRoutes(v1, c)
		setupQuestionRoutes(v1, c)
		setupTagRoutes(v1, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.AccountHandler.Register)
		auth.POST("/login", c.AccountHandler.Login)
		auth.POST("/logout", middleware.Auth(c.JWTManager, c.AccountService), c.AccountHandler.Logout)
	}
}

// ========================================
// ACCOUNT ROUTES
// ========================================
func setupAccountRoutes(v1 *gin.RouterGroup, c *container.Container) {
	accounts := v1.Group("/accounts")
	accounts.Use(middleware.Auth(c.JWTManager, c.AccountService))
	{
		accounts.GET("/me", c.AccountHandler.GetProfile)
		accounts.PUT("/me", c.AccountHandler.UpdateProfile)
		accounts.GET("/me/bookmarks", c.QuestionHandler.ListBookmarked)
	}
}

// ========================================
// QUESTION ROUTES
// ========================================
func setupQuestionRoutes(v1 *gin.RouterGroup, c *container.Container) {
	authRequired := middleware.Auth(c.JWTManager, c.AccountService)

	questions := v1.Group("/questions")
	{
		// Public reads
		questions.GET("", c.QuestionHandler.List)
		questions.GET("/:id", c.QuestionHandler.Get)

		// Authenticated mutations
		questions.POST("", authRequired, c.QuestionHandler.Create)
		questions.PUT("/:id", authRequired, c.QuestionHandler.Update)
		questions.DELETE("/:id", authRequired, c.QuestionHandler.Delete)
		questions.POST("/:id/vote", authRequired, c.QuestionHandler.Vote)

		questions.POST("/:id/answers", authRequired, c.QuestionHandler.SubmitAnswer)
		questions.DELETE("/:id/answers/:answerID", authRequired, c.QuestionHandler.DeleteAnswer)

		questions.POST("/:id/bookmark", authRequired, c.AccountHandler.Bookmark)
		questions.DELETE("/:id/bookmark", authRequired, c.AccountHandler.Unbookmark)
	}
}

// ========================================
// TAG ROUTES
// ========================================
func setupTagRoutes(v1 *gin.RouterGroup, c *container.Container) {
	tags := v1.Group("/tags")
	{
		tags.POST("/suggest", c.QuestionHandler.SuggestTags)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   getEnv("APP_VERSION", "1.0.0"),
		}

		// Check database
		dbStatus := "ok"
		{
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if appCtx.DB == nil {
				dbStatus = "disconnected"
			} else if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
			}
		}
		if dbStatus != "ok" {
			health["status"] = "degraded"
		}

		// Check redis
		redisStatus := "ok"
		{
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if appCtx.Cache == nil {
				redisStatus = "disconnected"
			} else if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
