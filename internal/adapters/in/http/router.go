package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter builds the echo instance serving the pickup API. validate may be
// nil to skip OpenAPI request validation.
func NewRouter(server *Server, tokens *TokenManager, validate echo.MiddlewareFunc, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.WARN)

	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1", Authenticate(tokens, logger))
	if validate != nil {
		api.Use(validate)
	}

	api.POST("/lockers/plan", server.PlanLockers)
	api.GET("/lockers/availability", server.CheckLockerAvailability)

	api.GET("/appointments", server.GetUserAppointments)
	api.POST("/appointments", server.CreateAppointment)
	api.GET("/appointments/:id", server.GetAppointment)
	api.PATCH("/appointments/:id", server.UpdateAppointment)
	api.POST("/appointments/:id/items", server.AddProductsToAppointment)
	api.POST("/appointments/:id/confirm", server.ConfirmAppointment)
	api.POST("/appointments/:id/cancel", server.CancelAppointment)
	api.POST("/appointments/:id/complete", server.CompleteAppointment)

	api.POST("/orders/paid", server.RegisterPaidOrder)
	api.POST("/admin/penalties/purge", server.PurgePenalties)

	return e
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
			)
			return nil
		}
	}
}
