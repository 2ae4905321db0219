package gradingservice

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("sqltrainer.httpapi")
