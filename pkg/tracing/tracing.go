package tracing

import (
	"fmt"

	"contrib.go.opencensus.io/exporter/jaeger"
	"go.opencensus.io/plugin/ochttp"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/trace"

	"github.com/forgehq/forge/config"
)

// InitTracing configures the OpenCensus sampler and trace exporter. With
// tracing disabled it is a no-op, so callers can invoke it unconditionally.
func InitTracing(cfg *config.TracingConfig) error {
	if !cfg.Enabled {
		return nil
	}

	trace.ApplyConfig(trace.Config{
		DefaultSampler: trace.ProbabilitySampler(cfg.SamplingProbability),
	})

	switch cfg.TraceExporter {
	case "", "none":
		// Spans are still recorded for in-process inspection.
	case "jaeger":
		if err := initJaegerExporter(cfg); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown trace exporter: %s", cfg.TraceExporter)
	}

	if err := view.Register(ochttp.DefaultServerViews...); err != nil {
		return fmt.Errorf("failed to register HTTP server views: %w", err)
	}

	return nil
}

func initJaegerExporter(cfg *config.TracingConfig) error {
	if cfg.JaegerEndpoint == "" {
		return fmt.Errorf("jaeger endpoint is required for the jaeger exporter")
	}

	exporter, err := jaeger.NewExporter(jaeger.Options{
		CollectorEndpoint: cfg.JaegerEndpoint,
		Process: jaeger.Process{
			ServiceName: cfg.ServiceName,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create jaeger exporter: %w", err)
	}

	trace.RegisterExporter(exporter)
	return nil
}
