package vlm

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/ChristopherRabotin/vlm"

// startStep opens the span of one time step.
func startStep(ctx context.Context, solver string, step, panels int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "vlm.step", trace.WithAttributes(
		attribute.String("solver", solver),
		attribute.Int("step", step),
		attribute.Int("panels", panels),
	))
}

// startPhase opens the span of a phase within a time step.
func startPhase(ctx context.Context, phase string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, phase)
}

// InitTracing installs a global tracer provider writing spans to w. It returns a shutdown function to flush them.
func InitTracing(w io.Writer) (func(context.Context) error, error) {
	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
		stdouttrace.WithoutTimestamps(),
	)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
