package app

import (
	"prepace_backend/docs"
	"prepace_backend/internal/config"
	"prepace_backend/internal/middleware"
	"prepace_backend/internal/model"
	"prepace_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		registerPracticeRoutes(authGroup, c)
	}

	// 3. 管理员路由
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg.JWT.Secret), middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.POST("/questions/recompute", c.admin.RecomputeQuestions)
	}
}

func registerPracticeRoutes(rg *gin.RouterGroup, c *controllers) {
	sessions := rg.Group("/sessions")
	{
		sessions.POST("", c.session.CreateSession)
		sessions.GET("", c.session.ListSessions)
		sessions.GET("/:id", c.session.GetSession)
		sessions.PATCH("/:id/complete", c.session.CompleteSession)
		sessions.PATCH("/:id/abandon", c.session.AbandonSession)
	}

	answers := rg.Group("/answers")
	{
		answers.POST("", c.answer.SubmitAnswer)
		answers.POST("/voice", c.answer.SubmitVoiceAnswer)
		answers.GET("", c.answer.ListAnswers)
		answers.GET("/:id", c.answer.GetAnswer)
		answers.PATCH("/:id/bookmark", c.answer.ToggleBookmark)
		answers.PATCH("/:id/self-rating", c.answer.SetSelfRating)
	}

	feedback := rg.Group("/feedback")
	{
		feedback.GET("/:answerId", c.feedback.GetFeedback)
		feedback.POST("/:answerId/regenerate", c.feedback.Regenerate)
	}

	questions := rg.Group("/questions")
	{
		questions.GET("", c.question.ListQuestions)
		questions.GET("/daily", c.question.DailyQuestion)
		questions.GET("/random", c.question.RandomQuestions)
		questions.GET("/:id", c.question.GetQuestion)
	}

	stats := rg.Group("/stats")
	{
		stats.GET("/overview", c.stats.Overview)
		stats.GET("/by-category", c.stats.ByCategory)
		stats.GET("/progress", c.stats.Progress)
		stats.GET("/weak-areas", c.stats.WeakAreas)
	}

	leaderboard := rg.Group("/leaderboard")
	{
		leaderboard.GET("", c.stats.Leaderboard)
		leaderboard.GET("/streaks", c.stats.StreakLeaderboard)
	}

	streak := rg.Group("/streak")
	{
		streak.POST("/check-in", c.streak.CheckIn)
		streak.GET("", c.streak.GetStreak)
	}
}
