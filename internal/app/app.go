package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prepace_backend/internal/config"
	"prepace_backend/internal/controller"
	"prepace_backend/internal/repository"
	"prepace_backend/internal/service"
	"prepace_backend/internal/util"
	"prepace_backend/pkg/configwatcher"
	"prepace_backend/pkg/database"
	"prepace_backend/pkg/logger"
	"prepace_backend/pkg/monitoring"
	"prepace_backend/pkg/security"
	"prepace_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedFile 题库为空时导入的初始题目
const SeedFile = "configs/questions.yaml"

type App struct {
	Config    *config.Config
	ConfigDir string
	Router    *gin.Engine
	DB        *gorm.DB
	Redis     *redis.Client

	events          service.EventPublisher
	tracer          *sdktrace.TracerProvider
	services        *services
	configCallbacks []configwatcher.Reloader

	// 后台任务（限流清理、配置监听）随 Run 结束而停止
	ctx    context.Context
	cancel context.CancelFunc
}

type repositories struct {
	user     *repository.UserRepository
	question *repository.QuestionRepository
	session  *repository.SessionRepository
	answer   *repository.AnswerRepository
	checkin  *repository.CheckinRepository
}

type services struct {
	ai          *service.AIService
	storage     *service.StorageService
	feedback    *service.FeedbackService
	aggregator  *service.RecomputeAggregator
	question    *service.QuestionService
	session     *service.SessionService
	answer      *service.AnswerService
	stats       *service.StatsService
	leaderboard *service.LeaderboardService
	streak      *service.StreakService
}

type controllers struct {
	session  *controller.SessionController
	answer   *controller.AnswerController
	feedback *controller.FeedbackController
	question *controller.QuestionController
	stats    *controller.StatsController
	streak   *controller.StreakController
	admin    *controller.AdminController
	health   *controller.HealthController
}

// RegisterConfigCallback 配置文件变更后依次回调
func (a *App) RegisterConfigCallback(callback configwatcher.Reloader) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		question: repository.NewQuestionRepository(db),
		session:  repository.NewSessionRepository(db),
		answer:   repository.NewAnswerRepository(db),
		checkin:  repository.NewCheckinRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}
	loc := cfg.Practice.Location()
	cache := service.NewCache(a.Redis)

	s.ai = service.NewAIService(cfg.AI)
	s.storage = service.NewStorageService(cfg)
	s.aggregator = service.NewRecomputeAggregator(repos.answer, repos.question)
	s.feedback = service.NewFeedbackService(s.ai, repos.answer, repos.question, s.aggregator)
	s.question = service.NewQuestionService(repos.question, cache, loc)
	s.session = service.NewSessionService(repos.session, repos.answer, s.aggregator, a.events)

	s.answer = service.NewAnswerService(repos.answer, repos.session, repos.question, s.feedback, s.aggregator, a.events)
	s.answer.Storage = s.storage
	s.answer.Prober = service.FFprobeProber{}
	s.answer.MaxRecordingMB = cfg.Practice.MaxRecordingMB

	s.stats = service.NewStatsService(repos.answer, repos.session, repos.user, loc)
	s.leaderboard = service.NewLeaderboardService(repos.answer, repos.user, cache, cfg.Practice.LeaderboardTTL())
	s.streak = service.NewStreakService(repos.user, repos.checkin, a.events, loc)

	// 评分服务的密钥和地址支持热更新，无需重启
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.ai.UpdateConfig(newCfg.AI)
		logger.Log.Info("scoring oracle config reloaded", zap.Bool("configured", s.ai.Configured()))
	})

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		session:  controller.NewSessionController(s.session),
		answer:   controller.NewAnswerController(s.answer),
		feedback: controller.NewFeedbackController(s.feedback),
		question: controller.NewQuestionController(s.question),
		stats:    controller.NewStatsController(s.stats, s.leaderboard),
		streak:   controller.NewStreakController(s.streak),
		admin:    controller.NewAdminController(s.aggregator),
		health:   controller.NewHealthController(a.DB, a.Redis, s.ai),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(a.ctx, cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func initEvents(cfg *config.RabbitMQConfig) service.EventPublisher {
	if cfg.URL == "" {
		logger.Log.Info("RabbitMQ not configured, domain events are dropped")
		return service.NopPublisher{}
	}
	pub, err := service.NewAMQPPublisher(cfg.URL, cfg.Exchange)
	if err != nil {
		// 事件只是通知，不可用时不影响练习主流程
		logger.Log.Warn("Failed to connect RabbitMQ, domain events are dropped", zap.Error(err))
		return service.NopPublisher{}
	}
	return pub
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// release 模式下默认不迁移，需要显式 --migrate
	if cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
		if err := database.SeedQuestions(db, SeedFile); err != nil {
			logger.Log.Error("Failed to seed question bank", zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		DB:        db,
		ctx:       ctx,
		cancel:    cancel,
	}
	if cfg.MigrateOnly {
		return app
	}

	app.Redis, err = database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	app.events = initEvents(&cfg.RabbitMQ)

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) startBackgroundTasks() {
	go func() {
		if err := configwatcher.Watch(a.ctx, a.ConfigDir, a.configCallbacks...); err != nil {
			logger.Log.Warn("config hot reload disabled", zap.String("dir", a.ConfigDir), zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	a.startBackgroundTasks()

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(ctx)
	logger.Log.Info("Server exiting")
}

// Close 释放外部连接，顺序与初始化相反
func (a *App) Close(ctx context.Context) {
	a.cancel()

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.events != nil {
		a.events.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Log.Error("Failed to close redis", zap.Error(err))
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
