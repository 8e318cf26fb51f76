package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jmehdipour/paynotify/internal/config"
	"github.com/jmehdipour/paynotify/internal/http/middleware"
	"github.com/jmehdipour/paynotify/internal/metrics"
	"github.com/jmehdipour/paynotify/internal/repository"
	"github.com/jmehdipour/paynotify/internal/service/queue"
	"github.com/jmehdipour/paynotify/internal/webhook"
)

// Deps are the collaborators built by the serve command. Reports and Limiter are optional.
type Deps struct {
	Webhook   *webhook.Service
	Publisher queue.Publisher
	Checkout  SessionCreator
	Reports   repository.CHNotificationsRepository
	Limiter   middleware.Limiter
	Logger    *zap.Logger
}

type Server struct {
	e   *echo.Echo
	log *zap.Logger
}

func NewServer(cfg config.Config, d Deps) *Server {
	lg := d.Logger
	if lg == nil {
		lg = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(echoLogLevel(cfg.Log.Level))
	e.Use(
		echoMid.Recover(),
		echoMid.RequestIDWithConfig(echoMid.RequestIDConfig{Generator: uuid.NewString}),
		echoMid.Logger(),
	)

	metrics.MustRegister(prometheus.DefaultRegisterer)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Limiter:        d.Limiter,
		RetryAfterHint: true,
		OnError:        func(err error) { lg.Warn("rate limiter unavailable", zap.Error(err)) },
	})

	// Stripe signs the raw body, so the webhook route must not be re-encoded by a binder.
	e.POST("/webhooks/stripe", stripeWebhookHandler(d.Webhook, d.Publisher, lg),
		echoMid.BodyLimit(bodyLimit(cfg.HTTP.BodyLimit)), rlMW)

	v1 := e.Group("/v1")
	if d.Checkout != nil {
		v1.POST("/checkout/sessions", createCheckoutSessionHandler(d.Checkout, lg), rlMW)
	}
	if d.Reports != nil {
		v1.GET("/reports/notifications", listNotificationsHandler(d.Reports, lg),
			middleware.APIKeyMiddleware(cfg.HTTP.AdminAPIKey))
	}

	return &Server{e: e, log: lg}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) Start(addr string) error {
	s.log.Info("http: listening", zap.String("addr", addr))
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }

func echoLogLevel(level string) log.Lvl {
	switch level {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	default:
		return log.INFO
	}
}

func bodyLimit(v string) string {
	if v == "" {
		return "1M"
	}
	return v
}
