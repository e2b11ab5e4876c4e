package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Acclerate/BiliNote/config"
	"github.com/Acclerate/BiliNote/internal/deps"
	"github.com/Acclerate/BiliNote/internal/handler"
	"github.com/Acclerate/BiliNote/internal/queue"
	"github.com/Acclerate/BiliNote/internal/router"
	"github.com/Acclerate/BiliNote/internal/service"
	"github.com/Acclerate/BiliNote/internal/storage"
	"github.com/Acclerate/BiliNote/internal/taskrunner"
	"github.com/Acclerate/BiliNote/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	if handled, code := handleCLIFlags(); handled {
		os.Exit(code)
	}

	created, err := config.LoadOrCreateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "加载配置失败 Failed to load config:", err)
		os.Exit(1)
	}

	log.InitLogger()
	defer log.GetLogger().Sync()

	if created {
		if configPath, pathErr := config.ResolveConfigPath(); pathErr == nil {
			log.GetLogger().Info("已生成默认配置 Default config created", zap.String("path", configPath))
		}
	}

	// ffmpeg/ffprobe 路径显式下发,缺失直接拒绝启动
	storage.ApplyConfiguredBinPaths(config.Conf.Media.FfmpegPath, config.Conf.Media.FfprobePath)
	if err = deps.Check(); err != nil {
		log.GetLogger().Error("依赖环境准备失败 Dependency check failed", zap.Error(err))
		os.Exit(1)
	}

	storage.InitDB()
	if err = storage.SeedDefaultProviders(); err != nil {
		log.GetLogger().Error("内置服务商初始化失败 Failed to seed providers", zap.Error(err))
		os.Exit(1)
	}

	// Mark any stale "running" tasks as "failed" (zombie cleanup)
	if count, err := storage.MarkStaleTasks(); err != nil {
		log.GetLogger().Warn("Failed to mark stale tasks", zap.Error(err))
	} else if count > 0 {
		log.GetLogger().Info("Marked stale tasks as failed", zap.Int64("count", count))
	}

	svc := service.NewService()

	var closeSubmitter func()
	if config.Conf.Queue.Enabled {
		q := queue.NewQueue(queue.QueueConfig{
			RedisAddr:     config.Conf.Queue.RedisAddr,
			RedisPassword: config.Conf.Queue.RedisPassword,
			RedisDB:       config.Conf.Queue.RedisDB,
			Concurrency:   config.Conf.Queue.Concurrency,
		})
		svc.Submitter = q
		go func() {
			if workerErr := queue.StartWorker(q, svc); workerErr != nil {
				log.GetLogger().Error("队列 worker 退出 Queue worker stopped", zap.Error(workerErr))
			}
		}()
		closeSubmitter = func() { _ = q.Close() }
		log.GetLogger().Info("任务执行模式:Redis 队列", zap.String("redis_addr", config.Conf.Queue.RedisAddr))
	} else {
		runner := taskrunner.New(svc, taskrunner.Config{Concurrency: config.Conf.App.TaskWorkers})
		svc.Submitter = runner
		closeSubmitter = runner.Close
		log.GetLogger().Info("任务执行模式:进程内 worker", zap.Int("workers", config.Conf.App.TaskWorkers))
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.Default()
	router.SetupRouter(engine, handler.NewHandler(svc))

	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	go func() {
		log.GetLogger().Info("服务启动 Server listening", zap.String("addr", addr))
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			log.GetLogger().Fatal("后端服务启动失败 Server failed", zap.Error(serveErr))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.GetLogger().Info("收到退出信号,开始优雅停机 Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.GetLogger().Warn("HTTP 服务停机异常 HTTP shutdown error", zap.Error(err))
	}
	closeSubmitter()
	log.GetLogger().Info("服务已退出 Server stopped")
}
