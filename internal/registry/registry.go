// Package registry implements the C7 server facade: the mapper registry
// keyed by resource name, consulted by the backend to translate resources.
// Per the design notes' "singletons → injected context" guidance, a single
// Facade value is constructed at startup and passed by reference rather
// than reached through package-level global state.
package registry

import (
	"sync"

	"github.com/gandhrekunal/scim/internal/mapper"
	"github.com/gandhrekunal/scim/internal/scim"
)

// Facade is the C7 mapper registry: resourceName → ordered set of mappers.
// Registration order is the tie-break for creator selection and attribute
// overlay (§4.6).
type Facade struct {
	mu       sync.RWMutex
	mappers  map[string][]mapper.ResourceMapper
	creators map[string]bool
}

// NewFacade builds an empty facade.
func NewFacade() *Facade {
	return &Facade{
		mappers:  make(map[string][]mapper.ResourceMapper),
		creators: make(map[string]bool),
	}
}

// Register adds m under every resource name it declares. Intended for
// startup only, before any concurrent readers exist. A second mapper for a
// resource name declaring SupportsCreate raises MultipleCreatorsError: the
// design notes resolve the source's under-specified "first creator wins"
// behavior into a hard configuration-time error (§9).
func (f *Facade) Register(m mapper.ResourceMapper) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, name := range m.ResourceNames() {
		if m.SupportsCreate() {
			if f.creators[name] {
				return &scim.MultipleCreatorsError{ResourceName: name}
			}
			f.creators[name] = true
		}
		f.mappers[name] = append(f.mappers[name], m)
	}
	return nil
}

// GetResourceMappers returns the mappers registered for a resource name, in
// registration order. A name with no registered mappers returns nil.
func (f *Facade) GetResourceMappers(resourceName string) []mapper.ResourceMapper {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.mappers[resourceName]
}

// Creator returns the registered creator mapper for resourceName, if any.
func (f *Facade) Creator(resourceName string) (mapper.ResourceMapper, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, m := range f.mappers[resourceName] {
		if m.SupportsCreate() {
			return m, true
		}
	}
	return nil, false
}
