package httpapi

import (
	"github.com/gandhrekunal/scim/internal/scim"
)

// encodeResource flattens a SCIMResource into the plain map JSON encodes,
// adding a "schemas" array built from the resource name as the HTTP layer's own decision
// on the open question spec.md §9 leaves undetermined: the source never
// populates "schemas", which this reimplementation treats as an omission
// to fix rather than preserve (see DESIGN.md).
func encodeResource(r *scim.SCIMResource) map[string]any {
	out := map[string]any{
		"schemas": []string{"urn:ietf:params:scim:schemas:core:2.0:" + r.ResourceName},
	}
	for name, attr := range r.Attributes {
		out[name] = encodeValue(attr.Value)
	}
	return out
}

func encodeValue(value scim.SCIMValue) any {
	switch v := value.(type) {
	case []scim.MultiValuedElement:
		list := make([]map[string]any, len(v))
		for i, el := range v {
			m := make(map[string]any, len(el))
			for k, val := range el {
				m[k] = val
			}
			list[i] = m
		}
		return list
	default:
		return v
	}
}

// decodeResource builds a SCIMResource from a decoded JSON body, resolving
// each top-level key against the resource descriptor to decide whether it
// is a simple, complex, or multi-valued attribute. Unknown keys are
// ignored silently, matching §6's guarantee that the HTTP layer resolves
// request bodies into resources whose attributes are valid per their
// descriptors before the core ever sees them.
func decodeResource(resourceName string, desc *scim.ResourceDescriptor, body map[string]any) (*scim.SCIMResource, error) {
	resource := scim.NewSCIMResource(resourceName)

	for name, raw := range body {
		attrDesc, ok := desc.Attribute(name)
		if !ok {
			continue
		}

		switch attrDesc.DataType {
		case scim.DataTypeMultiValued:
			elements, err := decodeMultiValued(raw)
			if err != nil {
				return nil, &scim.MalformedValueError{Attribute: name, Cause: err}
			}
			resource.Set(&scim.SCIMAttribute{Descriptor: attrDesc, Value: elements})
		case scim.DataTypeComplex:
			m, ok := raw.(map[string]any)
			if !ok {
				return nil, &scim.MalformedValueError{Attribute: name}
			}
			resource.Set(&scim.SCIMAttribute{Descriptor: attrDesc, Value: m})
		default:
			resource.Set(&scim.SCIMAttribute{Descriptor: attrDesc, Value: raw})
		}
	}

	return resource, nil
}

func decodeMultiValued(raw any) ([]scim.MultiValuedElement, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, errMalformedMultiValued
	}
	elements := make([]scim.MultiValuedElement, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, errMalformedMultiValued
		}
		elements = append(elements, scim.MultiValuedElement(m))
	}
	return elements, nil
}

var errMalformedMultiValued = &scim.MalformedValueError{Attribute: "", Value: "expected a list of objects"}
