package scim

import (
	"fmt"
	"sync"
)

// DataType enumerates the primitive and structural types an attribute
// descriptor can declare, per §3.
type DataType int

const (
	DataTypeString DataType = iota
	DataTypeBoolean
	DataTypeDecimal
	DataTypeInteger
	DataTypeDateTime
	DataTypeBinary
	DataTypeComplex
	DataTypeMultiValued
)

// AttributeDescriptor describes one SCIM attribute: its identity, data
// type, cardinality, and (for complex types) its child descriptors.
// Descriptors are immutable after registration (§3).
type AttributeDescriptor struct {
	Name         string
	Namespace    string
	DataType     DataType
	MultiValued  bool
	SubAttribute map[string]*AttributeDescriptor
}

// NewSimpleAttribute builds a single-valued, non-complex descriptor.
func NewSimpleAttribute(name, namespace string, dataType DataType) *AttributeDescriptor {
	return &AttributeDescriptor{Name: name, Namespace: namespace, DataType: dataType}
}

// NewMultiValuedAttribute builds a multi-valued descriptor whose elements
// are complex structures carrying the given child descriptors plus the
// mandatory "type" and "value" discriminators (§3).
func NewMultiValuedAttribute(name, namespace string, children ...*AttributeDescriptor) *AttributeDescriptor {
	subs := make(map[string]*AttributeDescriptor, len(children)+2)
	subs["type"] = NewSimpleAttribute("type", namespace, DataTypeString)
	subs["value"] = NewSimpleAttribute("value", namespace, DataTypeString)
	for _, c := range children {
		subs[c.Name] = c
	}
	return &AttributeDescriptor{
		Name:         name,
		Namespace:    namespace,
		DataType:     DataTypeMultiValued,
		MultiValued:  true,
		SubAttribute: subs,
	}
}

// NewComplexAttribute builds a single-valued structure descriptor.
func NewComplexAttribute(name, namespace string, children ...*AttributeDescriptor) *AttributeDescriptor {
	subs := make(map[string]*AttributeDescriptor, len(children))
	for _, c := range children {
		subs[c.Name] = c
	}
	return &AttributeDescriptor{
		Name:         name,
		Namespace:    namespace,
		DataType:     DataTypeComplex,
		SubAttribute: subs,
	}
}

// ResourceDescriptor is a named collection of attribute descriptors keyed by
// attribute name, including the pseudo-attribute "id" whose value is the
// resource's canonical identifier (the directory entry's DN).
type ResourceDescriptor struct {
	Name       string
	Namespace  string
	Attributes map[string]*AttributeDescriptor
}

// NewResourceDescriptor builds a resource descriptor, automatically adding
// the "id" pseudo-attribute.
func NewResourceDescriptor(name, namespace string, attrs ...*AttributeDescriptor) *ResourceDescriptor {
	m := make(map[string]*AttributeDescriptor, len(attrs)+1)
	m["id"] = NewSimpleAttribute("id", namespace, DataTypeString)
	for _, a := range attrs {
		m[a.Name] = a
	}
	return &ResourceDescriptor{Name: name, Namespace: namespace, Attributes: m}
}

// Attribute looks up a child descriptor by name.
func (r *ResourceDescriptor) Attribute(name string) (*AttributeDescriptor, bool) {
	d, ok := r.Attributes[name]
	return d, ok
}

// Catalogue is a process-wide read-mostly mapping from resource name to
// ResourceDescriptor (§4.2). It is injected into components that need it
// rather than reached through package-level global state, per the design
// notes' "singletons → injected context" guidance; a single Catalogue value
// is constructed at startup and shared by reference thereafter.
type Catalogue struct {
	mu          sync.RWMutex
	descriptors map[string]*ResourceDescriptor
}

// NewCatalogue constructs an empty catalogue.
func NewCatalogue() *Catalogue {
	return &Catalogue{descriptors: make(map[string]*ResourceDescriptor)}
}

// Register adds a descriptor to the catalogue. Intended to be called only
// during startup, before any concurrent readers exist; after startup the
// catalogue is effectively frozen and concurrent readers need no further
// synchronization beyond the initial publication (§4.2, §5).
func (c *Catalogue) Register(desc *ResourceDescriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.descriptors[desc.Name] = desc
}

// GetResourceDescriptor looks up a descriptor by name. Lookup by unknown
// name fails with UnknownResourceError.
func (c *Catalogue) GetResourceDescriptor(name string) (*ResourceDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.descriptors[name]
	if !ok {
		return nil, &UnknownResourceError{ResourceName: name}
	}
	return d, nil
}

// MustRegister is a convenience for startup code that should fail fast on a
// duplicate or malformed descriptor.
func (c *Catalogue) MustRegister(desc *ResourceDescriptor) {
	if desc == nil || desc.Name == "" {
		panic(fmt.Sprintf("scim: invalid resource descriptor %+v", desc))
	}
	c.Register(desc)
}
