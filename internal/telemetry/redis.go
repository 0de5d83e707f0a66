package telemetry

import (
	"fmt"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

// InstrumentRedis records connection pool and command duration metrics for
// client on the service's meter provider. It does nothing when metrics are
// disabled.
func (s *Service) InstrumentRedis(client redis.UniversalClient) error {
	if s.meterProvider == nil {
		return nil
	}
	if err := redisotel.InstrumentMetrics(client, redisotel.WithMeterProvider(s.meterProvider)); err != nil {
		return fmt.Errorf("failed to instrument Redis metrics: %w", err)
	}
	return nil
}
