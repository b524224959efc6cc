package material

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicateMaterial is returned when a material id is registered twice.
var ErrDuplicateMaterial = errors.New("material already registered")

// registry is the implementation of the Registry interface.
type registry struct {
	mu        *sync.RWMutex
	materials map[ID]Material
}

// Registry indexes materials by id. Lookups are safe for concurrent use with registration.
type Registry interface {
	// Register adds a material. Registering an id twice returns ErrDuplicateMaterial.
	//
	// Parameters:
	//   - m: the material to add
	//
	// Returns:
	//   - error: ErrDuplicateMaterial if the id is taken
	Register(m Material) error

	// Lookup retrieves a material by id.
	//
	// Parameters:
	//   - id: the material id
	//
	// Returns:
	//   - Material: the material, or nil
	//   - bool: true if the id is registered
	Lookup(id ID) (Material, bool)

	// Materials returns every registered material ordered by id.
	Materials() []Material

	// Len returns the number of registered materials.
	Len() int

	// Release releases the GPU resources of every registered material and empties the registry.
	Release()
}

var _ Registry = &registry{}

// NewRegistry creates an empty material registry.
func NewRegistry() Registry {
	return &registry{
		mu:        &sync.RWMutex{},
		materials: make(map[ID]Material),
	}
}

func (r *registry) Register(m Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.materials[m.ID()]; ok {
		return fmt.Errorf("material %d (%s): %w", m.ID(), m.Name(), ErrDuplicateMaterial)
	}
	r.materials[m.ID()] = m
	return nil
}

func (r *registry) Lookup(id ID) (Material, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.materials[id]
	return m, ok
}

func (r *registry) Materials() []Material {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Material, 0, len(r.materials))
	for _, m := range r.materials {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (r *registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.materials)
}

func (r *registry) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, m := range r.materials {
		if p := m.BindGroupProvider(); p != nil {
			p.Release()
			m.SetBindGroupProvider(nil)
		}
		delete(r.materials, id)
	}
}
