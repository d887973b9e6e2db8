// Package tracing monta o TracerProvider do OpenTelemetry a partir da
// configuração. Os spans saem por OTEL_TRACES_EXPORTER (stdout ou none).
package tracing

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

type Config struct {
	Exporter    string  `env:"OTEL_TRACES_EXPORTER" envDefault:"none"`
	ServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"portfolio-contact"`
	SampleRatio float64 `env:"OTEL_TRACES_SAMPLER_ARG" envDefault:"1"`

	// Output substitui stdout no exporter stdout (testes).
	Output io.Writer
}

func (c Config) Validate() error {
	switch strings.ToLower(c.Exporter) {
	case ExporterNone, ExporterStdout:
	default:
		return fmt.Errorf("OTEL_TRACES_EXPORTER must be %q or %q, got %q", ExporterStdout, ExporterNone, c.Exporter)
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("OTEL_TRACES_SAMPLER_ARG must be within [0,1], got %v", c.SampleRatio)
	}
	return nil
}

// New devolve o provider do processo. Com exporter none os spans continuam
// sendo criados (ids, status, atributos) mas não saem do processo.
// Shutdown descarrega o batch pendente: chame no encerramento.
func New(cfg Config, opts ...sdktrace.TracerProviderOption) (*sdktrace.TracerProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := resource.Merge(resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName)))
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	base := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	}
	if strings.EqualFold(cfg.Exporter, ExporterStdout) {
		w := cfg.Output
		if w == nil {
			w = os.Stdout
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("stdout trace exporter: %w", err)
		}
		base = append(base, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(append(base, opts...)...), nil
}
