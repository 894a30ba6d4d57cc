// Package mapper implements the C3 resource mappers: the bidirectional
// translation between SCIM resources and directory entries. Each mapper
// handles a slice of one resource kind's attributes; a resource kind may be
// served by several mappers jointly (§4.3).
package mapper

import (
	"sort"

	"github.com/gandhrekunal/scim/internal/directory"
	"github.com/gandhrekunal/scim/internal/scim"
)

// ResourceMapper is the C3 capability: translate a directory entry into
// SCIM attributes, optionally originate new entries, contribute attributes
// to a jointly-built entry, and compute the modifications that carry a
// current entry toward a desired resource's shape.
type ResourceMapper interface {
	// ResourceNames lists the resource kinds this mapper participates in.
	ResourceNames() []string

	// SupportsCreate reports whether this mapper can originate new entries
	// via ToLDAPEntry. At most one mapper per resource name may return true
	// (§4.6, §9); the registry enforces this at registration time.
	SupportsCreate() bool

	// ToSCIMAttributes produces attributes only for names present in
	// selection, silently omitting attributes it cannot source from entry.
	ToSCIMAttributes(resourceName string, entry *directory.Entry, selection scim.AttributeSelection) ([]*scim.SCIMAttribute, error)

	// ToLDAPEntry constructs a new entry's distinguished name and initial
	// attributes from resource. Only called on mappers with
	// SupportsCreate() == true; others may return (nil, nil).
	ToLDAPEntry(resource *scim.SCIMResource, baseDN string) (*directory.Entry, error)

	// ToLDAPAttributes contributes attributes for a jointly-built entry,
	// called on every non-creator mapper after a creator has produced the
	// skeleton (§4.3, §4.5 POST).
	ToLDAPAttributes(resource *scim.SCIMResource) ([]directory.Attribute, error)

	// ToLDAPModifications computes the minimal add/delete/replace set that
	// transforms currentEntry into the shape desiredResource implies, for
	// this mapper's attributes only (§4.3's diff policy).
	ToLDAPModifications(currentEntry *directory.Entry, desiredResource *scim.SCIMResource) ([]directory.Modification, error)
}

// diffValues implements §4.3's per-attribute diff policy: delete when
// desired drops an attribute the current entry holds, add when desired
// introduces one the current entry lacks, replace when both are non-empty
// but differ as sets (order-independent), and no modification when the
// value sets already match.
func diffValues(name string, current, desired [][]byte) *directory.Modification {
	switch {
	case len(desired) == 0 && len(current) > 0:
		return &directory.Modification{Op: directory.ModDelete, Name: name, Values: current}
	case len(desired) > 0 && len(current) == 0:
		return &directory.Modification{Op: directory.ModAdd, Name: name, Values: desired}
	case len(desired) > 0 && !sameValueSet(current, desired):
		return &directory.Modification{Op: directory.ModReplace, Name: name, Values: desired}
	default:
		return nil
	}
}

// sameValueSet compares two octet-string value lists as sets, ignoring
// order, per §4.3's "order-independent compare."
func sameValueSet(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	as, bs := sortedStrings(a), sortedStrings(b)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func sortedStrings(values [][]byte) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	sort.Strings(out)
	return out
}

func stringsToValues(values ...string) [][]byte {
	out := make([][]byte, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, []byte(v))
		}
	}
	return out
}
