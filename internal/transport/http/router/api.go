package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"column/internal/core/server"
	"column/internal/domain"
	"column/internal/transport/http/ez"
	"column/internal/transport/http/handler"
	mdw "column/internal/transport/http/middleware"
	resp "column/internal/transport/http/response"
)

type Options struct {
	Mode           string
	AllowOrigins   []string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	MaxInFlight    int64
	RPS            float64
	Burst          int
	AuthRPS        float64 // /api/auth 每 IP；<= 0 关闭
	AuthBurst      int
}

func (o *Options) defaults() {
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 15 * time.Second
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 8 << 20
	}
	if o.MaxInFlight <= 0 {
		o.MaxInFlight = 300
	}
	if o.RPS <= 0 {
		o.RPS, o.Burst = 200, 400
	}
	if o.Burst <= 0 {
		o.Burst = int(o.RPS) * 2
	}
	if o.AuthBurst <= 0 {
		o.AuthBurst = 10
	}
}

type Deps struct {
	Log  *zap.Logger
	Auth mdw.Authenticator
	// Health 返回 error 时 /health 报 503（例如 DB ping 失败）
	Health  func(ctx context.Context) error
	Modules []handler.Module
}

func NewAPIEngine(d Deps, o Options) *gin.Engine {
	o.defaults()
	r := server.NewRouter(d.Log, server.Options{Mode: o.Mode, AllowOrigins: o.AllowOrigins, OnPanic: mdw.PanicBody})

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.AccessLog(d.Log),
		mdw.Metrics(),
		mdw.RateLimit(rate.Limit(o.RPS), o.Burst),
		mdw.Timeout(o.RequestTimeout),
		mdw.ConcurrencyLimit(o.MaxInFlight),
		mdw.MaxBodyBytes(o.MaxBodyBytes),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		if d.Health != nil {
			if err := d.Health(c.Request.Context()); err != nil {
				d.Log.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, resp.New("unhealthy", gin.H{"status": "down"}, nil))
				return
			}
		}
		c.JSON(http.StatusOK, resp.OK("", gin.H{"status": "ok"}))
	})
	r.GET("/metrics", mdw.MetricsHandler())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, resp.Error(http.StatusNotFound, "Route not found"))
	})

	g := handler.Guards{
		Required: mdw.AuthRequired(d.Auth, 0),
		Optional: mdw.AuthOptional(d.Auth),
		Admin:    mdw.AuthRequired(d.Auth, domain.AdminOnly),
	}
	if o.AuthRPS > 0 {
		g.AuthLimit = mdw.RateLimitPerIP(rate.Limit(o.AuthRPS), o.AuthBurst)
	}

	// 前缀
	api := ez.New(r.Group("/api"), d.Log)
	var reg Registry
	reg.Register(d.Modules...)
	reg.MountAll(api, g)

	return r
}
