package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fyerfyer/doc-diff-system/api"
	"github.com/fyerfyer/doc-diff-system/api/handler"
	"github.com/fyerfyer/doc-diff-system/api/middleware"
	appconfig "github.com/fyerfyer/doc-diff-system/config"
	"github.com/fyerfyer/doc-diff-system/internal/cache"
	"github.com/fyerfyer/doc-diff-system/internal/database"
	"github.com/fyerfyer/doc-diff-system/internal/diff"
	"github.com/fyerfyer/doc-diff-system/internal/render"
	"github.com/fyerfyer/doc-diff-system/internal/repository"
	"github.com/fyerfyer/doc-diff-system/internal/services"
	"github.com/fyerfyer/doc-diff-system/internal/version"
	"github.com/fyerfyer/doc-diff-system/pkg/storage"
	"github.com/fyerfyer/doc-diff-system/pkg/taskqueue"
)

// 命令行选项
type options struct {
	ConfigFile string // 配置文件路径
	Mode       string // 运行模式 (debug/release)
	Once       bool   // 一次性执行整批发布后退出，不启动服务器
	Worker     bool   // 以队列工作者模式运行
}

func main() {
	// 加载.env文件（如果存在）
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment variables from .env file")
	}

	opts := parseFlags()

	// 加载配置文件
	cfg, err := appconfig.Load(opts.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置Gin模式
	gin.SetMode(opts.Mode)

	// 初始化日志
	logger := setupLogger(cfg.Log)
	logger.Info("Starting document diff system...")

	// 初始化数据库
	if err := setupDatabase(cfg, logger); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// 创建归档存储服务
	archiveStorage, err := setupStorage(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	// 创建缓存服务
	cacheService, err := setupCache(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize cache: %v", err)
	}

	// 初始化任务队列（如果启用）
	var queue taskqueue.Queue
	if cfg.Queue.Enable {
		queue, err = setupTaskQueue(cfg, logger)
		if err != nil {
			logger.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer queue.Close()
		logger.Info("Task queue initialized successfully")
	}

	// 初始化业务服务
	repo := repository.NewDiffRepository()
	versionStore := version.NewArchiveStore(archiveStorage, repo, logger)

	diffOptions := []services.DiffServiceOption{
		services.WithMatcher(&diff.GreedyMatcher{
			MatchThreshold:     cfg.Diff.MatchThreshold,
			UnchangedThreshold: cfg.Diff.UnchangedThreshold,
		}),
		services.WithNoticeThreshold(cfg.Diff.NoticeThreshold),
		services.WithDiffLogger(logger),
	}
	if cfg.Cache.Enable && cacheService != nil {
		diffOptions = append(diffOptions,
			services.WithDiffCache(cacheService, time.Duration(cfg.Cache.TTL)*time.Second))
	}
	differ := services.NewDiffService(diffOptions...)

	renderer := render.NewRenderer(cfg.Docs.SiteTitle)

	publishOptions := []services.PublishServiceOption{
		services.WithPublishLogger(logger),
	}
	if queue != nil {
		publishOptions = append(publishOptions, services.WithPublishQueue(queue))
	}
	publisher := services.NewPublishService(
		renderer,
		differ,
		versionStore,
		repo,
		cfg.Docs.SourceDir,
		cfg.Docs.OutputDir,
		publishOptions...,
	)

	// 一次性模式：同步发布整个文档集后退出
	if opts.Once {
		run, err := publisher.PublishAll(context.Background())
		if err != nil {
			logger.Fatalf("Publish run failed: %v", err)
		}
		logger.WithFields(logrus.Fields{
			"run_id":    run.ID,
			"documents": run.DocumentCount,
			"changed":   run.ChangedCount,
			"errors":    run.ErrorCount,
		}).Info("Publish run finished")
		return
	}

	// 工作者模式：消费队列中的发布任务
	if opts.Worker {
		runWorker(cfg, publisher, queue, logger)
		return
	}

	// 初始化API处理器
	publishHandler := handler.NewPublishHandler(publisher)
	var taskHandler *handler.TaskHandler
	if queue != nil {
		taskHandler = handler.NewTaskHandler(queue)
	}

	// 设置路由
	r := api.SetupRouter(publishHandler, taskHandler)

	// 启动HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// 优雅关闭
	go func() {
		// 启动服务
		logger.Infof("Server is running on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待终止信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// 创建带超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// parseFlags 解析命令行参数
func parseFlags() options {
	opts := options{}

	flag.StringVar(&opts.ConfigFile, "config", "", "Path to config file")
	flag.StringVar(&opts.Mode, "mode", "debug", "Run mode (debug/release)")
	flag.BoolVar(&opts.Once, "once", false, "Run a single publish pass and exit")
	flag.BoolVar(&opts.Worker, "worker", false, "Run as a task queue worker")

	flag.Parse()
	return opts
}

// setupLogger 设置日志系统
func setupLogger(cfg appconfig.LogConfig) *logrus.Logger {
	logger := middleware.GetLogger()

	// 设置日志级别
	switch cfg.Level {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	// 配置了日志文件时启用滚动输出
	if cfg.File != "" {
		logger.SetOutput(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   true,
		})
	}

	return logger
}

// setupDatabase 设置数据库
func setupDatabase(cfg *appconfig.Config, logger *logrus.Logger) error {
	dbConfig := database.DefaultConfig()
	dbConfig.Type = cfg.Database.Type
	dbConfig.DSN = cfg.Database.DSN

	return database.Setup(dbConfig, logger)
}

// setupStorage 设置归档存储服务
func setupStorage(cfg *appconfig.Config) (storage.Storage, error) {
	switch cfg.Storage.Type {
	case "minio":
		return storage.NewMinioStorage(storage.MinioConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
		})
	default:
		return storage.NewLocalStorage(storage.LocalConfig{
			Path: cfg.Storage.Path,
		})
	}
}

// setupCache 设置缓存服务
func setupCache(cfg *appconfig.Config) (cache.Cache, error) {
	if !cfg.Cache.Enable {
		return nil, nil
	}

	cacheConfig := cache.Config{
		Type:            cfg.Cache.Type,
		DefaultTTL:      time.Duration(cfg.Cache.TTL) * time.Second,
		CleanupInterval: 10 * time.Minute,
	}

	// 如果配置了Redis，添加Redis配置
	if cfg.Cache.Type == "redis" {
		cacheConfig.RedisAddr = cfg.Cache.Address
		cacheConfig.RedisPassword = cfg.Cache.Password
		cacheConfig.RedisDB = cfg.Cache.DB
	}

	return cache.NewCache(cacheConfig)
}

// setupTaskQueue 设置任务队列
func setupTaskQueue(cfg *appconfig.Config, logger *logrus.Logger) (taskqueue.Queue, error) {
	queueConfig := &taskqueue.Config{
		RedisAddr:     cfg.Queue.RedisAddr,
		RedisPassword: cfg.Queue.RedisPassword,
		RedisDB:       cfg.Queue.RedisDB,
		Concurrency:   cfg.Queue.Concurrency,
		RetryLimit:    cfg.Queue.RetryLimit,
		RetryDelay:    time.Duration(cfg.Queue.RetryDelay) * time.Second,
		Queues:        taskqueue.DefaultConfig().Queues,
	}

	logger.WithFields(logrus.Fields{
		"type":        cfg.Queue.Type,
		"redis_addr":  cfg.Queue.RedisAddr,
		"concurrency": cfg.Queue.Concurrency,
	}).Info("Setting up task queue")

	return taskqueue.NewQueue(cfg.Queue.Type, queueConfig)
}

// runWorker 以工作者模式运行，消费队列中的发布任务
func runWorker(cfg *appconfig.Config, publisher *services.PublishService, queue taskqueue.Queue, logger *logrus.Logger) {
	redisQueue, ok := queue.(*taskqueue.RedisQueue)
	if !ok {
		logger.Fatal("Worker mode requires a redis task queue")
	}

	worker := taskqueue.NewRedisWorker(redisQueue, nil)
	taskHandler := services.NewPublishTaskHandler(publisher, logger)
	for _, taskType := range taskHandler.GetTaskTypes() {
		worker.RegisterHandler(taskType, taskHandler)
	}

	if err := worker.Start(); err != nil {
		logger.Fatalf("Failed to start worker: %v", err)
	}
	logger.Info("Worker started, waiting for publish tasks")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down worker...")
	worker.Stop()
	logger.Info("Worker exited")
}
