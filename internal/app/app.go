package app

import (
	"context"
	"lms_console_backend/internal/config"
	"lms_console_backend/internal/controller"
	"lms_console_backend/internal/repository"
	"lms_console_backend/internal/service"
	"lms_console_backend/pkg/configwatcher"
	"lms_console_backend/pkg/database"
	"lms_console_backend/pkg/logger"
	"lms_console_backend/pkg/monitoring"
	"lms_console_backend/pkg/security"
	"lms_console_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const configFile = "configs/config.yaml"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	limiter         *security.Limiter
	configCallbacks []func(*config.Config)
}

type repositories struct {
	assessment *repository.AssessmentRepository
	submission *repository.SubmissionRepository
	course     *repository.CourseRepository
}

type services struct {
	storage    *service.StorageService
	assessment *service.AssessmentService
	submission *service.SubmissionService
	grading    *service.GradingEngine
	course     *service.CourseService
	board      *service.BoardService
	importer   *service.ImportService
}

type controllers struct {
	assessment *controller.AssessmentController
	grading    *controller.GradingController
	importer   *controller.ImportController
	submission *controller.SubmissionController
	course     *controller.CourseController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		assessment: repository.NewAssessmentRepository(db),
		submission: repository.NewSubmissionRepository(db),
		course:     repository.NewCourseRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.assessment = service.NewAssessmentService(repos.assessment)
	s.submission = service.NewSubmissionService(repos.assessment, repos.submission)
	s.grading = service.NewGradingEngine(repos.assessment, s.submission)
	s.course = service.NewCourseService(repos.course, rdb, cfg.Cache.CourseTTL)
	s.board = service.NewBoardService(repos.assessment, s.course)
	s.importer = service.NewImportService(s.assessment, s.storage, service.ImportSettingsFrom(cfg.Import))

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		assessment: controller.NewAssessmentController(s.assessment, s.board),
		grading:    controller.NewGradingController(s.assessment, s.grading),
		importer:   controller.NewImportController(s.importer),
		submission: controller.NewSubmissionController(s.submission),
		course:     controller.NewCourseController(s.course),
		health:     controller.NewHealthController(db, rdb, s.storage),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if cfg.RateLimit.MaxRequests > 0 && window > 0 {
		a.limiter = security.NewLimiter(cfg.RateLimit.MaxRequests, window)
		router.Use(a.limiter.Middleware())
	}

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// registerConfigCallbacks 热更新：日志级别与导入限制
func (a *App) registerConfigCallbacks(s *services) {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		logger.ApplyConfig(cfg)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		s.importer.SetSettings(service.ImportSettingsFrom(cfg.Import))
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")
	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 缓存可选，连接失败时直接读库
		logger.Log.Warn("Redis unavailable, course cache disabled", zap.Error(err))
		rdb = nil
	}
	app.Redis = rdb

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)
	app.registerConfigCallbacks(services)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("lms-console", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	if a.limiter != nil {
		go a.limiter.Run(bgCtx)
	}
	go func() {
		if err := configwatcher.WatchConfig(bgCtx, filepath.Clean(configFile), a.applyConfig); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}()

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	log.Println("Server exiting")
}
