// Package app assembles the tracker's services and HTTP routes.
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-attendance-tracker/api/swagger"
	"github.com/noah-isme/sma-attendance-tracker/internal/handler"
	"github.com/noah-isme/sma-attendance-tracker/internal/middleware"
	"github.com/noah-isme/sma-attendance-tracker/internal/repository"
	"github.com/noah-isme/sma-attendance-tracker/internal/service"
	"github.com/noah-isme/sma-attendance-tracker/internal/view"
	"github.com/noah-isme/sma-attendance-tracker/pkg/config"
	"github.com/noah-isme/sma-attendance-tracker/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-attendance-tracker/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-attendance-tracker/pkg/middleware/requestid"
)

// App is the assembled router and its collectors.
type App struct {
	Engine  *gin.Engine
	Metrics *service.MetricsService
}

// New wires repositories, services, handlers and routes for cfg.
func New(cfg *config.Config, logr *zap.Logger) (*App, error) {
	if logr == nil {
		logr = zap.NewNop()
	}
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	store := repository.NewStore()
	roster := repository.NewRosterRepository(store)
	ledger := repository.NewAttendanceRepository(store)

	var metrics *service.MetricsService
	if cfg.Features.Metrics {
		metrics = service.NewMetricsService()
	}
	validate := service.NewValidator()
	students := service.NewStudentService(roster, validate, metrics, logr)
	attendance := service.NewAttendanceService(roster, ledger, cfg.Attendance.ResubmitPolicy, validate, metrics, logr)
	stats := service.NewStatisticsService(roster, ledger, metrics, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	ops := handler.NewMetricsHandler(metrics, func(ctx context.Context) error {
		_, err := roster.Count(ctx)
		return err
	})
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	if metrics != nil {
		r.GET("/metrics", ops.Prometheus)
	}
	if cfg.Features.Docs && cfg.Env != config.EnvProduction {
		swagger.SwaggerInfo.BasePath = apiPrefix(cfg.APIPrefix)
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	studentHandler := handler.NewStudentHandler(students, attendance, stats)
	attendanceHandler := handler.NewAttendanceHandler(attendance)
	statisticsHandler := handler.NewStatisticsHandler(stats)

	api := r.Group(apiPrefix(cfg.APIPrefix))
	api.GET("/students", studentHandler.List)
	api.POST("/students", studentHandler.Create)
	api.GET("/students/:id", studentHandler.Get)
	api.GET("/students/:id/attendance", studentHandler.Records)
	api.GET("/students/:id/statistics", studentHandler.Statistics)
	api.POST("/attendance", attendanceHandler.Record)
	api.GET("/statistics", statisticsHandler.Overview)

	if cfg.Features.Views {
		renderer, err := view.NewRenderer()
		if err != nil {
			return nil, fmt.Errorf("load views: %w", err)
		}
		view.NewHandler(students, attendance, stats, renderer, logr).Register(r)
		r.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/views/students")
		})
	}

	logr.Info("routes ready",
		zap.String("api_prefix", apiPrefix(cfg.APIPrefix)),
		zap.String("resubmit_policy", attendance.Policy()),
		zap.Bool("views", cfg.Features.Views),
		zap.Bool("metrics", metrics != nil),
	)
	return &App{Engine: r, Metrics: metrics}, nil
}

func apiPrefix(prefix string) string {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return "/"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}
