package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Depado/ginprom"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
	"github.com/sql-trainer/backend/httpapi"
	gradingservice "github.com/sql-trainer/backend/httpapi/grading"
	"github.com/sql-trainer/backend/internal/config"
	"github.com/sql-trainer/backend/internal/events"
	"github.com/sql-trainer/backend/internal/grader"
	"github.com/sql-trainer/backend/internal/history"
	"github.com/sql-trainer/backend/internal/httputils"
	"github.com/sql-trainer/backend/internal/questions"
	"github.com/sql-trainer/backend/internal/workers"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/fx"
)

// ClientMiddleware creates a client-identity middleware that can be injected into gin.
func ClientMiddleware() Middleware {
	return Middleware{
		Handler: httputils.ClientMiddleware(),
	}
}

// CorsMiddleware creates a cors middleware that can be injected into gin.
func CorsMiddleware(cfg config.Config) Middleware {
	return Middleware{
		Handler: cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "User-Agent", "Referer"},
			AllowCredentials: true,
		}),
	}
}

// LoggerMiddleware creates a slog request-logging middleware that can be injected into gin.
func LoggerMiddleware() Middleware {
	return Middleware{
		Handler: sloggin.New(slog.Default()),
	}
}

// TracingMiddleware creates an otelgin middleware that can be injected into gin.
func TracingMiddleware() Middleware {
	return Middleware{
		Handler: otelgin.Middleware("sqltrainer-backend"),
	}
}

// GradingService creates the grading service.
func GradingService(catalog *questions.Catalog, g *grader.Grader, store *history.Store, eventService *events.EventService) httpapi.Service {
	return gradingservice.NewGradingService(catalog, g, store, eventService)
}

// GinEngine creates a gin engine.
func GinEngine(services []httpapi.Service, middlewares []Middleware, cfg config.Config) *gin.Engine {
	engine := gin.New()

	if err := engine.SetTrustedProxies(cfg.TrustProxies); err != nil {
		slog.Error("error setting trusted proxies", "error", err)
	}

	for _, middleware := range middlewares {
		engine.Use(middleware.Handler)
	}

	engine.Use(gin.Recovery())

	prom := ginprom.New(ginprom.Engine(engine), ginprom.Path("/metrics"))
	engine.Use(prom.Instrument())

	engine.GET("/healthz", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "OK")
	})

	httpapi.Register(engine, services...)

	return engine
}

// GinLifecycle starts the gin engine.
func GinLifecycle(lifecycle fx.Lifecycle, engine *gin.Engine, cfg config.Config) {
	httpCtx, cancel := context.WithCancel(context.Background())

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			srv := &http.Server{
				Addr:    fmt.Sprintf(":%d", cfg.Port),
				Handler: engine,
			}

			go func() {
				slog.Info("gin engine starting", "address", srv.Addr)

				if err := srv.ListenAndServe(); err != nil {
					if errors.Is(err, http.ErrServerClosed) {
						return
					}

					slog.Error("error running gin engine", "error", err)
				}
			}()

			go func() {
				<-httpCtx.Done()
				if err := srv.Shutdown(context.Background()); err != nil {
					slog.Error("error shutting down gin engine", "error", err)
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			select {
			case <-ctx.Done():
			default:
				cancel()
			}

			// let in-flight analytics drain
			workers.Global.Wait()

			return nil
		},
	})
}

// Middleware is a middleware that can be injected into gin.
type Middleware struct {
	Handler gin.HandlerFunc
}

// AnnotateMiddleware annotates a middleware function to be injected into gin.
func AnnotateMiddleware(f any) any {
	return fx.Annotate(
		f,
		fx.ResultTags(`group:"middlewares"`),
	)
}

// AnnotateService annotates a service function to be injected into gin.
func AnnotateService(f any) any {
	return fx.Annotate(
		f,
		fx.ResultTags(`group:"services"`),
	)
}
