// Package testdirectory implements the A5 embedded in-memory directory: a
// DirectoryServer/LDAPInterfaceProvider implementation backed by a plain
// map, used by the core's own tests to exercise the CRUD pipeline and diff
// policy without a live LDAP server. It mirrors the result-code vocabulary
// a real directory returns (noSuchObject, entryAlreadyExists) so the
// backend's error-translation paths are exercised identically to
// production.
package testdirectory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/gandhrekunal/scim/internal/directory"
)

// ErrEntryAlreadyExists is returned by Add when the target DN is already
// occupied, mirroring a real directory's entryAlreadyExists result code.
var ErrEntryAlreadyExists = errors.New("testdirectory: entry already exists")

// Directory is a minimal in-memory LDAP-interface capability: entries keyed
// by distinguished name, with a base/single-level/subtree filter evaluator
// limited to "objectclass=*" and simple equality filters — the shapes the
// backend actually issues (§4.4, §4.5).
type Directory struct {
	mu      sync.RWMutex
	entries map[string]*directory.Entry
}

// New builds an empty embedded directory.
func New() *Directory {
	return &Directory{entries: make(map[string]*directory.Entry)}
}

// GetLDAPInterface implements directory.LDAPInterfaceProvider: the embedded
// directory is its own capability, with no pool to construct lazily.
func (d *Directory) GetLDAPInterface(ctx context.Context) (directory.DirectoryServer, error) {
	return d, nil
}

// Close implements directory.LDAPInterfaceProvider; the embedded directory
// owns no external resources.
func (d *Directory) Close() error { return nil }

// Seed inserts an entry directly, bypassing Add's naming-conflict check.
// Intended for test setup, mirroring the scenario setup's "given a user
// ... already exists" preconditions (§8).
func (d *Directory) Seed(entry *directory.Entry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[normalizeDN(entry.DN)] = cloneEntry(entry)
}

// SearchSingleEntry implements directory.DirectoryServer.
func (d *Directory) SearchSingleEntry(ctx context.Context, req *directory.SearchRequest) (*directory.Entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var matches []*directory.Entry
	for dn, entry := range d.entries {
		if !inScope(dn, normalizeDN(req.BaseDN), req.Scope) {
			continue
		}
		if !matchesFilter(entry, req.Filter) {
			continue
		}
		matches = append(matches, entry)
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return cloneEntry(matches[0]), nil
	default:
		return nil, &directory.TooManyResultsError{BaseDN: req.BaseDN, Count: len(matches)}
	}
}

// Add implements directory.DirectoryServer.
func (d *Directory) Add(ctx context.Context, dn string, attrs []directory.Attribute) (*directory.Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := normalizeDN(dn)
	if _, exists := d.entries[key]; exists {
		return nil, ErrEntryAlreadyExists
	}

	entry := directory.NewEntry(dn)
	for _, a := range attrs {
		entry.AddValues(a.Name, a.Values...)
	}
	d.entries[key] = entry
	return cloneEntry(entry), nil
}

// Modify implements directory.DirectoryServer.
func (d *Directory) Modify(ctx context.Context, dn string, mods []directory.Modification) (*directory.Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := normalizeDN(dn)
	entry, ok := d.entries[key]
	if !ok {
		return nil, directory.ErrNoSuchObject
	}

	for _, mod := range mods {
		switch mod.Op {
		case directory.ModAdd:
			entry.AddValues(mod.Name, mod.Values...)
		case directory.ModDelete:
			if len(mod.Values) == 0 {
				delete(entry.Attributes, mod.Name)
			} else {
				entry.SetValues(mod.Name, subtractValues(entry.GetValues(mod.Name), mod.Values)...)
				if len(entry.GetValues(mod.Name)) == 0 {
					delete(entry.Attributes, mod.Name)
				}
			}
		case directory.ModReplace:
			if len(mod.Values) == 0 {
				delete(entry.Attributes, mod.Name)
			} else {
				entry.SetValues(mod.Name, mod.Values...)
			}
		}
	}

	return cloneEntry(entry), nil
}

// Delete implements directory.DirectoryServer.
func (d *Directory) Delete(ctx context.Context, dn string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := normalizeDN(dn)
	if _, ok := d.entries[key]; !ok {
		return directory.ErrNoSuchObject
	}
	delete(d.entries, key)
	return nil
}

func normalizeDN(dn string) string {
	return strings.ToLower(strings.TrimSpace(dn))
}

func cloneEntry(entry *directory.Entry) *directory.Entry {
	clone := directory.NewEntry(entry.DN)
	for name, values := range entry.Attributes {
		copied := make([][]byte, len(values))
		copy(copied, values)
		clone.Attributes[name] = copied
	}
	return clone
}

func subtractValues(current, remove [][]byte) [][]byte {
	removeSet := make(map[string]struct{}, len(remove))
	for _, v := range remove {
		removeSet[string(v)] = struct{}{}
	}
	var kept [][]byte
	for _, v := range current {
		if _, ok := removeSet[string(v)]; !ok {
			kept = append(kept, v)
		}
	}
	return kept
}

// inScope reports whether candidateDN falls within baseDN under scope.
func inScope(candidateDN, baseDN string, scope directory.SearchScope) bool {
	switch scope {
	case directory.ScopeBaseObject:
		return candidateDN == baseDN
	case directory.ScopeSingleLevel:
		return isImmediateChild(candidateDN, baseDN)
	case directory.ScopeWholeSubtree:
		return candidateDN == baseDN || strings.HasSuffix(candidateDN, ","+baseDN)
	default:
		return false
	}
}

func isImmediateChild(candidateDN, baseDN string) bool {
	if candidateDN == baseDN || !strings.HasSuffix(candidateDN, ","+baseDN) {
		return false
	}
	prefix := strings.TrimSuffix(candidateDN, ","+baseDN)
	return !strings.Contains(prefix, ",")
}

// matchesFilter evaluates the narrow filter grammar the backend actually
// issues: "(objectclass=*)" (always true) and simple single-attribute
// equality filters "(attr=value)".
func matchesFilter(entry *directory.Entry, filter string) bool {
	filter = strings.TrimSpace(filter)
	filter = strings.TrimPrefix(filter, "(")
	filter = strings.TrimSuffix(filter, ")")

	if filter == "" || filter == "objectclass=*" {
		return true
	}

	parts := strings.SplitN(filter, "=", 2)
	if len(parts) != 2 {
		return true
	}
	name, value := parts[0], parts[1]
	if value == "*" {
		return len(entry.GetValues(name)) > 0
	}

	for _, v := range entry.GetValues(name) {
		if strings.EqualFold(string(v), value) {
			return true
		}
	}
	return false
}
