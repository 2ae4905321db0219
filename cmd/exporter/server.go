package main

import (
	"github.com/sql-trainer/backend/internal/deps"
	"go.uber.org/fx"

	_ "github.com/sql-trainer/backend/internal/deps/logger"
)

func main() {
	app := fx.New(
		fx.Provide(
			ExporterConfig,
			HistoryStore,
			PrometheusMetrics,
		),
		fx.Invoke(deps.OTelSDK),
		fx.Invoke(PrometheusHTTPHandler),
	)

	app.Run()
}
