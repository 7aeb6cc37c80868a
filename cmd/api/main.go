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

	_ "go.uber.org/automaxprocs"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"column/internal/core/auth"
	"column/internal/core/cache"
	"column/internal/core/config"
	"column/internal/core/database"
	"column/internal/core/imagestore"
	"column/internal/core/logger"
	"column/internal/core/mailer"
	"column/internal/core/server"
	"column/internal/repo"
	"column/internal/service"
	"column/internal/transport/http/handler"
	"column/internal/transport/http/router"
)

func main() {
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate(cfg.Log.Rotate),
		zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 缓存（未配置地址则关闭）
	rc := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer func() { _ = rc.Close() }()
	if err := rc.Ping(ctx); err != nil {
		log.Warn("redis unreachable, dashboard cache falls back to db", zap.Error(err))
	}

	// 图床
	images, err := imagestore.Open(ctx, cfg.Images)
	if err != nil {
		log.Fatal("image store open", zap.Error(err))
	}
	if images.Enabled() {
		if err := images.EnsureBucket(ctx); err != nil {
			log.Fatal("image bucket", zap.Error(err))
		}
	} else {
		log.Warn("image store disabled, cover uploads will fail", zap.String("backend", cfg.Images.Backend))
	}

	// 邮件
	sender, closeSender, err := mailer.OpenSender(ctx, cfg.Mail, log)
	if err != nil {
		log.Fatal("mail sender open", zap.Error(err))
	}
	if closeSender != nil {
		defer func() { _ = closeSender() }()
	}
	mail := mailer.New(sender, mailer.Options{
		ClientURL:   cfg.App.ClientURL,
		Product:     cfg.App.Name,
		SenderEmail: cfg.Mail.SenderEmail,
		Timeout:     time.Duration(cfg.Mail.TimeoutSec) * time.Second,
	})

	// 依赖
	jwter := &auth.JWTer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, TTL: cfg.JWT.TTL()}
	users, posts := repo.NewUserRepo(db), repo.NewPostRepo(db)
	authSvc := service.NewAuthService(users, jwter, mail, log)
	postSvc := service.NewPostService(posts, images, log)
	commentSvc := service.NewCommentService(repo.NewCommentRepo(db), posts, log)
	adminSvc := service.NewAdminService(users, posts, repo.NewStatsRepo(db), service.AdminOptions{
		Cache:      rc,
		CacheTTL:   time.Duration(cfg.Redis.DashboardTTLSec) * time.Second,
		OwnerEmail: cfg.Admin.OwnerEmail,
	}, log)
	userSvc := service.NewUserService(users, posts, images, log)

	// 路由
	r := router.NewAPIEngine(router.Deps{
		Log:    log,
		Auth:   authSvc,
		Health: func(ctx context.Context) error { return pingDB(ctx, db) },
		Modules: []handler.Module{
			handler.NewAuthHandler(authSvc),
			handler.NewPostHandler(postSvc),
			handler.NewCommentHandler(commentSvc),
			handler.NewUserHandler(userSvc),
			handler.NewAdminHandler(adminSvc),
		},
	}, router.Options{
		Mode:           ginMode(cfg.App.Env),
		AllowOrigins:   []string{cfg.App.ClientURL},
		RequestTimeout: time.Duration(cfg.App.HTTP.RequestTimeoutSec) * time.Second,
		MaxBodyBytes:   int64(cfg.App.HTTP.MaxBodyMB) << 20,
		MaxInFlight:    cfg.App.HTTP.MaxInFlight,
		RPS:            cfg.RateLimit.RPS,
		Burst:          cfg.RateLimit.Burst,
		AuthRPS:        cfg.RateLimit.AuthRPS,
		AuthBurst:      cfg.RateLimit.AuthBurst,
	})

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
		log,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("column api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+"/api"),
		zap.String("mail_backend", cfg.Mail.Backend),
		zap.String("image_backend", cfg.Images.Backend),
		zap.Bool("cache", rc.Enabled()),
	)

	// 异步启动
	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("column api start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("column api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.FromConfig(cfg.DB, l)
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func ginMode(env string) string {
	switch env {
	case "prod", "production":
		return "release"
	case "test":
		return "test"
	}
	return "debug"
}
