package uuidgen

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// EntityType represents the different entity types in the system
type EntityType string

const (
	// EntityTypeForm identifies a stored submission
	EntityTypeForm EntityType = "form"
	// EntityTypeRequest identifies an inbound HTTP request
	EntityTypeRequest EntityType = "request"
)

// Strategy names accepted by NewGenerator
const (
	StrategyUUIDv7   = "uuidv7"
	StrategySequence = "sequence"
)

// NewForEntity generates a UUID appropriate for the given entity type.
// Submissions use UUIDv7 so rows sharing a form id cluster in the index.
// All other entities use UUIDv4.
func NewForEntity(entityType EntityType) (uuid.UUID, error) {
	switch entityType {
	case EntityTypeForm:
		return uuid.NewV7()
	default:
		return uuid.NewRandom()
	}
}

// MustNewForEntity is like NewForEntity but panics on error.
// Should only be used in situations where UUID generation failure is unrecoverable.
func MustNewForEntity(entityType EntityType) uuid.UUID {
	id, err := NewForEntity(entityType)
	if err != nil {
		panic(fmt.Sprintf("failed to generate UUID for entity type %s: %v", entityType, err))
	}
	return id
}

// Generator produces form identifiers
type Generator interface {
	NewID() (string, error)
}

// V7Generator issues time-ordered UUIDv7 form ids
type V7Generator struct{}

// NewID returns a fresh UUIDv7 string
func (V7Generator) NewID() (string, error) {
	id, err := NewForEntity(EntityTypeForm)
	if err != nil {
		return "", fmt.Errorf("failed to generate form id: %w", err)
	}
	return id.String(), nil
}

// SequenceGenerator issues "<prefix><n>" ids from an in-process counter.
// Ids are only unique for the lifetime of the process.
type SequenceGenerator struct {
	prefix string
	next   atomic.Int64
}

// NewSequenceGenerator creates a SequenceGenerator whose first id is prefix+start
func NewSequenceGenerator(prefix string, start int64) *SequenceGenerator {
	g := &SequenceGenerator{prefix: prefix}
	g.next.Store(start)
	return g
}

// NewID returns the next id in the sequence
func (g *SequenceGenerator) NewID() (string, error) {
	n := g.next.Add(1) - 1
	return fmt.Sprintf("%s%d", g.prefix, n), nil
}

// NewGenerator builds the Generator named by strategy
func NewGenerator(strategy string) (Generator, error) {
	switch strategy {
	case "", StrategyUUIDv7:
		return V7Generator{}, nil
	case StrategySequence:
		return NewSequenceGenerator("form-", 1), nil
	default:
		return nil, fmt.Errorf("unknown form id strategy: %s", strategy)
	}
}
