package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/fleetops/couriertrack/internal/config"
	courierdomain "github.com/fleetops/couriertrack/internal/courier/domain"
	distancedomain "github.com/fleetops/couriertrack/internal/distance/domain"
	entrancedomain "github.com/fleetops/couriertrack/internal/entrance/domain"
	locationdomain "github.com/fleetops/couriertrack/internal/location/domain"
	"github.com/fleetops/couriertrack/internal/observability"
	obsmiddleware "github.com/fleetops/couriertrack/internal/observability/logger"
	obsmetrics "github.com/fleetops/couriertrack/internal/observability/metrics"
	obstracing "github.com/fleetops/couriertrack/internal/observability/tracing"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	courierSvc  courierdomain.Service
	locationSvc locationdomain.Service
	distanceSvc distancedomain.Service
	entranceSvc entrancedomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	CourierSvc  courierdomain.Service
	LocationSvc locationdomain.Service
	DistanceSvc distancedomain.Service
	EntranceSvc entrancedomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		courierSvc:  p.CourierSvc,
		locationSvc: p.LocationSvc,
		distanceSvc: p.DistanceSvc,
		entranceSvc: p.EntranceSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Couriers --------
	api.POST("/couriers", s.APIKeyRequired(), s.CreateCourier)
	api.GET("/couriers/:id", s.APIKeyRequired(), s.GetCourierByID)
	api.GET("/couriers/:id/total-travel-distance", s.APIKeyRequired(), s.GetTotalTravelDistance)
	api.GET("/couriers/:id/entrances", s.APIKeyRequired(), s.GetCourierEntrances)

	// -------- Locations --------
	api.POST("/locations", s.APIKeyRequired(), s.UpdateLocation)
}
