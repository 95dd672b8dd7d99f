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

	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/config"
	"github.com/rajib3777/academia-sub001/internal/api/handler"
	"github.com/rajib3777/academia-sub001/internal/api/router"
	"github.com/rajib3777/academia-sub001/internal/cron"
	"github.com/rajib3777/academia-sub001/internal/repository"
	"github.com/rajib3777/academia-sub001/internal/service"
	"github.com/rajib3777/academia-sub001/pkg/database"
	"github.com/rajib3777/academia-sub001/pkg/jwt"
	applogger "github.com/rajib3777/academia-sub001/pkg/logger"
	"github.com/rajib3777/academia-sub001/pkg/redis"
	"github.com/rajib3777/academia-sub001/pkg/sms"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("ACADEMIA_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("sms_enabled", cfg.SMS.Enabled),
	)

	// 3. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（失败时降级运行：无缓存、无限流、无 Token 黑名单）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，缓存与限流功能将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 短信网关
	var smsSender sms.Sender = sms.LogSender{Logger: logger}
	if cfg.SMS.Enabled {
		smsSender = sms.NewClient(&cfg.SMS)
	}

	// 6. 依赖注入: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, smsSender, logger)
	h := handler.NewHandler(svc, logger)

	if cfg.Bootstrap.AdminUsername != "" {
		if _, err := svc.User.EnsureAdmin(context.Background(), cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
			logger.Fatal("初始化管理员失败", zap.Error(err))
		}
	}

	// 7. 定时任务
	jobs := cron.NewManager(logger)
	if err := jobs.Register(
		cron.SMSDrainJob(cfg.SMS.DrainSpec, svc.SMS, logger),
		cron.OTPPurgeJob(cfg.OTP.PurgeSpec, svc.OTP, logger),
	); err != nil {
		logger.Fatal("定时任务注册失败", zap.Error(err))
	}
	jobs.Start()

	// 8. 初始化路由
	engine, err := router.Setup(cfg, h, jwtMgr, rdb, logger)
	if err != nil {
		logger.Fatal("路由初始化失败", zap.Error(err))
	}

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	jobs.Stop()

	if err := sqlDB.Close(); err != nil {
		logger.Warn("关闭数据库连接失败", zap.Error(err))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Warn("关闭 Redis 连接失败", zap.Error(err))
		}
	}

	logger.Info("服务器已关闭")
}
