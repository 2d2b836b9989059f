package grpcweb

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"clinic-management-api/internal/monitoring"
	"clinic-management-api/internal/store"
)

// HealthChecker is what GET /health reports on.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Stats() store.PoolStats
}

type GatewayConfig struct {
	Bridge      *Bridge
	Health      HealthChecker
	Metrics     *monitoring.Metrics
	Log         zerolog.Logger
	CORSOrigins []string
}

// NewGateway mounts the grpc-web bridge, /health and /metrics on one echo
// instance.
func NewGateway(cfg GatewayConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	// RealIP is the socket address; the bridge hands it to the login rate limiter
	e.IPExtractor = echo.ExtractIPDirect()

	e.Use(recovery(cfg.Log))
	e.Use(requestID())
	e.Use(requestLogger(cfg.Log))
	if cfg.Metrics != nil {
		e.Use(countRequests(cfg.Metrics))
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderContentType, echo.HeaderAuthorization, echo.HeaderXRequestID,
			"X-Grpc-Web", "X-User-Agent",
		},
		ExposeHeaders: []string{
			"Grpc-Status", "Grpc-Message", "Grpc-Status-Details-Bin", echo.HeaderXRequestID,
		},
		MaxAge: 86400,
	}))
	e.Use(echomw.BodyLimit("4M"))

	e.GET("/health", health(cfg.Health))
	if cfg.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(cfg.Metrics.Handler()))
	}
	if cfg.Bridge != nil {
		e.POST("/:service/:method", cfg.Bridge.Handle)
	}
	return e
}

func health(hc HealthChecker) echo.HandlerFunc {
	return func(c echo.Context) error {
		if hc == nil {
			return c.JSON(http.StatusOK, map[string]any{"status": "ok"})
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := hc.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":   "unavailable",
				"database": err.Error(),
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status": "ok",
			"pool":   hc.Stats(),
		})
	}
}

func recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					var stack [4096]byte
					n := runtime.Stack(stack[:], false)
					logger.Error().
						Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
						Str("panic", fmt.Sprint(r)).
						Str("stack", string(stack[:n])).
						Msg("panic recovered")
					monitoring.CapturePanic(r, map[string]any{"path": c.Request().URL.Path})
					err = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
				}
			}()
			return next(c)
		}
	}
}

// requestID keeps a caller-supplied X-Request-ID or generates one.
func requestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Set("request_id", rid)
			c.Response().Header().Set(echo.HeaderXRequestID, rid)
			return next(c)
		}
	}
}

func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			evt := logger.Info()
			if c.Response().Status >= http.StatusInternalServerError {
				evt = logger.Error().Err(err)
			}
			evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("request")
			return nil
		}
	}
}

func countRequests(m *monitoring.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				c.Error(err)
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			m.HTTPTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(c.Response().Status)).Inc()
			return nil
		}
	}
}
