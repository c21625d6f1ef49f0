package vahan

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("vahanpulse.lib.scrapers.vahan")
