package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	adminHttp "github.com/lectio/lectio/internal/admin/delivery/http"
	adminUsecase "github.com/lectio/lectio/internal/admin/usecase"
	"github.com/lectio/lectio/internal/middleware"
	"github.com/lectio/lectio/internal/models"
	pipelineRepository "github.com/lectio/lectio/internal/pipeline/repository"
	"github.com/lectio/lectio/internal/task"
	"github.com/lectio/lectio/pkg/utils"
)

func (s *Server) MapHandlers(e *echo.Echo) error {
	pRepo := pipelineRepository.NewPipelineRepo(s.db)
	pRedisRepo := pipelineRepository.NewPipelineRedisRepo(s.redisClient)

	awaker, err := task.New[models.AwakeMessage](s.broker, task.TypeQueueAwaker, s.cfg.RabbitMQ.QueueSuffix,
		s.cfg.RabbitMQ.MaxAttempts, s.logger, nil)
	if err != nil {
		return err
	}

	adminUC := adminUsecase.NewAdminUseCase(s.cfg, awaker, pRepo, pRedisRepo, s.logger)
	adminHandlers := adminHttp.NewAdminHandlers(s.cfg, adminUC, s.logger)

	mw := middleware.NewMiddlewareManager(s.cfg, []string{"*"}, s.logger)
	e.Use(mw.RequestLoggerMiddleware)

	v1 := e.Group("/api/v1")
	health := v1.Group("/health")
	adminGroup := v1.Group("/admin")

	adminHttp.MapAdminRoutes(adminGroup, adminHandlers, mw)
	health.GET("", func(c echo.Context) error {
		s.logger.Infof("Health check RequestID: %s", utils.GetRequestID(c))
		return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
	})
	return nil
}
