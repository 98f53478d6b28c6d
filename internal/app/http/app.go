package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"breate/internal/config"
	appmw "breate/internal/middleware"
	httprouters "breate/internal/transport/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"
)

type Server struct {
	log             *slog.Logger
	e               *echo.Echo
	routers         *httprouters.Routers
	authenticator   appmw.Authenticator
	limit           config.RateLimitConfig
	host            string
	port            string
	shutdownTimeout time.Duration
}

func New(log *slog.Logger, cfg config.HTTPConfig, limit config.RateLimitConfig, authenticator appmw.Authenticator, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// RealIP is the peer address; X-Forwarded-For and X-Real-IP are ignored.
	e.IPExtractor = echo.ExtractIPDirect()

	e.Validator = httprouters.NewValidator()
	e.HTTPErrorHandler = httprouters.ErrorHandler(log)

	e.Pre(middleware.RemoveTrailingSlash())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Recover())
	e.Use(appmw.PrometheusMetrics)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
			)

			return nil
		},
	}))

	return &Server{
		log:             log,
		e:               e,
		routers:         routers,
		authenticator:   authenticator,
		limit:           limit,
		host:            cfg.Host,
		port:            cfg.Port,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("addr", s.addr()))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(s.addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	optCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("stopping http server", slog.String("op", op))

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

// Handler exposes the configured echo instance, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) BuildRouters() {
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.e.GET("/swagger/*", echoSwagger.WrapHandler)

	s.routers.Mount(s.e, appmw.Authenticate(s.log, s.authenticator), s.credentialLimiter())
}

// credentialLimiter throttles login and registration per client IP.
func (s *Server) credentialLimiter() echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(s.limit.Rate),
		Burst:     s.limit.Burst,
		ExpiresIn: s.limit.ExpiresIn,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "Unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			s.log.Warn("rate limit exceeded", slog.String("ip", identifier), slog.String("path", c.Path()))

			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
		},
	})
}

func (s *Server) addr() string {
	return net.JoinHostPort(s.host, s.port)
}
