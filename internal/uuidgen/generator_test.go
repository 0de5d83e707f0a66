package uuidgen

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewForEntity(t *testing.T) {
	tests := []struct {
		name            string
		entityType      EntityType
		expectedVersion uuid.Version
	}{
		{"form uses UUIDv7", EntityTypeForm, 7},
		{"request uses UUIDv4", EntityTypeRequest, 4},
		{"other entity uses UUIDv4", EntityType("other"), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewForEntity(tt.entityType)
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, id)
			assert.Equal(t, tt.expectedVersion, id.Version())
		})
	}
}

func TestMustNewForEntity(t *testing.T) {
	assert.NotPanics(t, func() {
		id := MustNewForEntity(EntityTypeForm)
		assert.Equal(t, uuid.Version(7), id.Version())
	})
}

func TestV7Generator(t *testing.T) {
	g := V7Generator{}
	first, err := g.NewID()
	require.NoError(t, err)
	second, err := g.NewID()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	parsed, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	// UUIDv7 strings sort by creation time
	assert.Less(t, first, second)
}

func TestSequenceGenerator(t *testing.T) {
	t.Run("counts up from start", func(t *testing.T) {
		g := NewSequenceGenerator("f", 10)
		for _, want := range []string{"f10", "f11", "f12"} {
			id, err := g.NewID()
			require.NoError(t, err)
			assert.Equal(t, want, id)
		}
	})

	t.Run("unique under concurrency", func(t *testing.T) {
		g := NewSequenceGenerator("", 0)
		var (
			mu   sync.Mutex
			seen = make(map[string]struct{})
			wg   sync.WaitGroup
		)
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id, _ := g.NewID()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}()
		}
		wg.Wait()
		assert.Len(t, seen, 50)
	})
}

func TestNewGenerator(t *testing.T) {
	g, err := NewGenerator("")
	require.NoError(t, err)
	assert.IsType(t, V7Generator{}, g)

	g, err = NewGenerator(StrategySequence)
	require.NoError(t, err)
	id, err := g.NewID()
	require.NoError(t, err)
	assert.Equal(t, "form-1", id)

	_, err = NewGenerator("random")
	assert.Error(t, err)
}
