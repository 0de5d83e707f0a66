package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Config holds telemetry settings
type Config struct {
	ServiceName    string
	ServiceVersion string
	MetricsEnabled bool
}

// Service owns the meter provider and the prometheus registry it exports to
type Service struct {
	config        Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	registry      *prometheus.Registry

	forms *FormMetrics
	http  *HTTPMetrics
}

// NewService creates a telemetry service. When metrics are disabled every
// instrument is a no-op and Handler returns nil.
func NewService(config Config) (*Service, error) {
	if config.ServiceName == "" {
		config.ServiceName = "formfields"
	}
	s := &Service{config: config}

	if config.MetricsEnabled {
		if err := s.initMetrics(); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	} else {
		s.meter = noop.NewMeterProvider().Meter(config.ServiceName)
	}

	var err error
	if s.forms, err = NewFormMetrics(s.meter); err != nil {
		return nil, err
	}
	if s.http, err = NewHTTPMetrics(s.meter); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) initMetrics() error {
	s.registry = prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(s.registry))
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", s.config.ServiceName),
		attribute.String("service.version", s.config.ServiceVersion),
	))
	if err != nil {
		return fmt.Errorf("failed to merge with default resource: %w", err)
	}

	s.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	s.meter = s.meterProvider.Meter(
		s.config.ServiceName,
		metric.WithInstrumentationVersion(s.config.ServiceVersion),
	)
	return nil
}

// Forms returns the submission and field instruments
func (s *Service) Forms() *FormMetrics {
	return s.forms
}

// HTTP returns the request instruments
func (s *Service) HTTP() *HTTPMetrics {
	return s.http
}

// Handler serves the prometheus exposition format, or nil when metrics are disabled
func (s *Service) Handler() http.Handler {
	if s.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the meter provider
func (s *Service) Shutdown(ctx context.Context) error {
	if s.meterProvider == nil {
		return nil
	}
	if err := s.meterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}
