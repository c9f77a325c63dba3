package telem

import (
	"fmt"

	"contrib.go.opencensus.io/exporter/jaeger"
	"contrib.go.opencensus.io/exporter/stackdriver"
	kitlog "github.com/go-kit/kit/log"
	"go.opencensus.io/trace"
)

type TracingOptions struct {
	Exporter            string // none, jaeger or stackdriver
	ServiceName         string
	JaegerAgentEndpoint string
	StackdriverProject  string
}

// StartTracing registers the configured span exporter and samples every span: migrations
// are rare and short, so there is no volume to protect against. The returned function
// flushes buffered spans and should be called before exit.
func StartTracing(logger kitlog.Logger, opts TracingOptions) (func(), error) {
	var exporter interface {
		trace.Exporter
		Flush()
	}

	switch opts.Exporter {
	case "", "none":
		return func() {}, nil
	case "jaeger":
		jexporter, err := jaeger.NewExporter(jaeger.Options{
			AgentEndpoint: opts.JaegerAgentEndpoint,
			Process: jaeger.Process{
				ServiceName: opts.ServiceName,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create jaeger exporter: %w", err)
		}

		exporter = jexporter
	case "stackdriver":
		sexporter, err := stackdriver.NewExporter(stackdriver.Options{
			ProjectID: opts.StackdriverProject,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stackdriver exporter: %w", err)
		}

		exporter = sexporter
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", opts.Exporter)
	}

	logger.Log("event", "tracing.start", "exporter", opts.Exporter)
	trace.RegisterExporter(exporter)
	trace.ApplyConfig(trace.Config{DefaultSampler: trace.AlwaysSample()})

	return func() {
		exporter.Flush()
		trace.UnregisterExporter(exporter)
	}, nil
}
