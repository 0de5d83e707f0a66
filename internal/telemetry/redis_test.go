package telemetry

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestInstrumentRedis(t *testing.T) {
	s, err := NewService(Config{MetricsEnabled: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	client := newMiniredisClient(t)
	require.NoError(t, s.InstrumentRedis(client))

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "formfields:field:email", "{}", 0).Err())
	require.NoError(t, client.Get(ctx, "formfields:field:email").Err())

	body := scrape(t, s)
	assert.Contains(t, body, "db_client_connections")
}

func TestInstrumentRedis_MetricsDisabled(t *testing.T) {
	s, err := NewService(Config{MetricsEnabled: false})
	require.NoError(t, err)

	client := newMiniredisClient(t)
	require.NoError(t, s.InstrumentRedis(client))
	assert.NoError(t, client.Ping(context.Background()).Err())
}
