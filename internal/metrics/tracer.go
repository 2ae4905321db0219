package metrics

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("sqltrainer.metrics")
