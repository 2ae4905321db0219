package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/sql-trainer/backend/internal/deps"
	"go.uber.org/fx"

	_ "github.com/sql-trainer/backend/internal/deps/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	app := fx.New(
		deps.FxCommonModule,
		fx.Provide(
			AnnotateMiddleware(ClientMiddleware),
			AnnotateMiddleware(CorsMiddleware),
			AnnotateMiddleware(LoggerMiddleware),
			AnnotateMiddleware(TracingMiddleware),
			AnnotateService(GradingService),
			fx.Annotate(
				GinEngine,
				fx.ParamTags(`group:"services"`, `group:"middlewares"`),
			),
		),
		fx.Invoke(deps.OTelSDK),
		fx.Invoke(GinLifecycle),
	)

	app.Start(ctx)

	<-ctx.Done()
	slog.Info("Gracefully shutting down server (Ctrl+C again to force stop)...")
	cancel()

	app.Stop(context.Background())

	slog.Info("Server stopped")
}
