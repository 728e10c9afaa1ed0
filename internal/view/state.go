package view

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
)

// State is the backing store behind a materialized instance's generated
// properties. Instance equality and hashing delegate entirely to the state
// handle's identity.
type State interface {
	Get(name string) (any, error)
	Set(name string, value any) error

	// Apply invokes a configuration block against a nested composite value,
	// creating it when absent.
	Apply(name string, configure func(nested State) error) error

	DisplayName() string

	// BackingNode exposes the raw node handle for the surrounding rule
	// engine only, never for user-facing code.
	BackingNode() any

	Equals(other State) bool
	Hash() uint64
}

// MapState is the default in-memory State. Each state owns a unique node id;
// two MapStates are equal iff they share a node id (a child handed out by
// Apply keeps its own id).
type MapState struct {
	node        string
	displayName string

	mu     sync.RWMutex
	values map[string]any
}

// NewMapState creates an empty state with a fresh node id. An empty display
// name falls back to the node id.
func NewMapState(displayName string) *MapState {
	return &MapState{
		node:        uuid.NewString(),
		displayName: displayName,
		values:      make(map[string]any),
	}
}

// Get returns the stored value for the property, or nil when unset.
func (s *MapState) Get(name string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name], nil
}

// Set stores the value for the property.
func (s *MapState) Set(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
	return nil
}

// Apply configures the nested state stored under name, creating it on first
// use.
func (s *MapState) Apply(name string, configure func(nested State) error) error {
	s.mu.Lock()
	nested, ok := s.values[name].(State)
	if !ok {
		if s.values[name] != nil {
			existing := s.values[name]
			s.mu.Unlock()
			return fmt.Errorf("property %q holds a non-composite value (%T)", name, existing)
		}
		nested = NewMapState(fmt.Sprintf("%s.%s", s.DisplayName(), name))
		s.values[name] = nested
	}
	s.mu.Unlock()
	return configure(nested)
}

// DisplayName returns the state's display name, falling back to the node id.
func (s *MapState) DisplayName() string {
	if s.displayName != "" {
		return s.displayName
	}
	return s.node
}

// BackingNode returns the opaque node id.
func (s *MapState) BackingNode() any {
	return s.node
}

// Equals reports node identity, never field-wise comparison.
func (s *MapState) Equals(other State) bool {
	if other == nil {
		return false
	}
	return s.BackingNode() == other.BackingNode()
}

// Hash hashes the node id.
func (s *MapState) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(s.node))
	return h.Sum64()
}
