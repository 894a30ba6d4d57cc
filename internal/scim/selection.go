package scim

// AttributeSelection represents the client-supplied projection ("return
// only id, userName, emails"). It is either "all" or an explicit set of
// top-level attribute names (§4.7).
type AttributeSelection struct {
	all   bool
	names map[string]struct{}
}

// SelectAll returns a selection that requests every attribute.
func SelectAll() AttributeSelection {
	return AttributeSelection{all: true}
}

// SelectNames returns a selection restricted to the given top-level
// attribute names. An empty list is a valid, non-"all" selection distinct
// from a non-empty one that omits "id": per boundary B1, a request for
// exactly zero names still gets "id" back (the resource's only legible
// identifier, so an empty attribute list is never truly empty), whereas a
// non-empty list that does not name "id" gets no "id" (scenario S2). The
// backend's IsEmpty check implements this distinction (§4.5, §4.7).
func SelectNames(names ...string) AttributeSelection {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return AttributeSelection{names: set}
}

// ParseSelection parses a client-supplied comma-separated attribute list.
// An empty string selects "all" attributes, matching SCIM's convention that
// an absent "attributes" parameter returns the full resource.
func ParseSelection(raw string) AttributeSelection {
	if raw == "" {
		return SelectAll()
	}
	var names []string
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == ',' {
			if i > start {
				names = append(names, raw[start:i])
			}
			start = i + 1
		}
	}
	return SelectNames(names...)
}

// IsRequested answers "is attribute X requested?". It is idempotent: true
// when the selection is "all" or when name is explicitly listed. Unknown
// names are accepted silently and return false when not listed (§4.7).
func (s AttributeSelection) IsRequested(name string) bool {
	if s.all {
		return true
	}
	_, ok := s.names[name]
	return ok
}

// IsAll reports whether the selection requests every attribute.
func (s AttributeSelection) IsAll() bool {
	return s.all
}

// IsEmpty reports whether the selection is the explicit empty set: not
// "all", and no names listed. The backend treats this case specially for
// the "id" pseudo-attribute (§4.5, boundary B1).
func (s AttributeSelection) IsEmpty() bool {
	return !s.all && len(s.names) == 0
}
