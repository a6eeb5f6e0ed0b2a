package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lectio/lectio/internal/config"
	"github.com/lectio/lectio/pkg/logger"
	"github.com/lectio/lectio/pkg/utils"
)

type MiddlewareManager struct {
	cfg     *config.Config
	origins []string
	logger  logger.Logger
}

// Middleware manager constructor
func NewMiddlewareManager(cfg *config.Config, origins []string, logger logger.Logger) *MiddlewareManager {
	return &MiddlewareManager{cfg: cfg, origins: origins, logger: logger}
}

// RequestLoggerMiddleware logs one line per request with the request id.
func (mw *MiddlewareManager) RequestLoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		req := c.Request()
		res := c.Response()
		mw.logger.Infof("RequestID: %s, Method: %s, URI: %s, Status: %v, Time: %s, IP: %s",
			utils.GetRequestID(c), req.Method, req.RequestURI, res.Status, time.Since(start), utils.GetIPAddress(c))
		return err
	}
}
