// Package logger prefixes log lines with the active trace id so storefront logs can be
// joined with the spans otelhttp records for the same request.
package logger

import (
	"context"
	"fmt"
	"log"

	"go.opentelemetry.io/otel/trace"
)

// Prefix returns "trace_id=<id> " when ctx carries a valid span, otherwise "".
func Prefix(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return fmt.Sprintf("trace_id=%s ", sc.TraceID().String())
}

func Printf(ctx context.Context, format string, args ...any) {
	log.Print(Prefix(ctx) + fmt.Sprintf(format, args...))
}
