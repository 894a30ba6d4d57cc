package directory

import (
	"fmt"

	goldap "github.com/go-ldap/ldap/v3"
)

// scopeOf maps our SearchScope to go-ldap's scope constant.
func scopeOf(s SearchScope) int {
	switch s {
	case ScopeSingleLevel:
		return goldap.ScopeSingleLevel
	case ScopeWholeSubtree:
		return goldap.ScopeWholeSubtree
	default:
		return goldap.ScopeBaseObject
	}
}

// singleEntrySearchRequest builds the go-ldap search request for a
// single-entry lookup. If the supplied request is configured for streamed
// results or a size limit other than 1, a duplicate with the correct shape
// is substituted — both the listener path and the limit, resolving the
// ambiguity the design notes flag in the source: the source only
// substituted the listener, leaving SizeLimit unchanged, which the design
// notes call a likely oversight (§9).
func singleEntrySearchRequest(req *SearchRequest) *goldap.SearchRequest {
	shaped := *req
	if shaped.Streamed || shaped.SizeLimit != 1 {
		shaped.Streamed = false
		shaped.SizeLimit = 1
	}

	attrs := shaped.Attributes
	if attrs == nil {
		attrs = []string{}
	}

	return goldap.NewSearchRequest(
		shaped.BaseDN,
		scopeOf(shaped.Scope),
		goldap.NeverDerefAliases,
		shaped.SizeLimit,
		0,
		false,
		shaped.Filter,
		attrs,
		nil,
	)
}

// TooManyResultsError is returned by SearchSingleEntry when a base-scope
// search unexpectedly matches more than one entry (§4.4).
type TooManyResultsError struct {
	BaseDN string
	Count  int
}

func (e *TooManyResultsError) Error() string {
	return fmt.Sprintf("directory: search under %q returned %d entries, expected at most 1", e.BaseDN, e.Count)
}

// decodeSingleEntryResult converts a go-ldap search result into at most one
// *Entry, failing with *TooManyResultsError if more than one entry matched
// (§4.4).
func decodeSingleEntryResult(baseDN string, result *goldap.SearchResult) (*Entry, error) {
	switch len(result.Entries) {
	case 0:
		return nil, nil
	case 1:
		return entryFromLDAP(result.Entries[0]), nil
	default:
		return nil, &TooManyResultsError{BaseDN: baseDN, Count: len(result.Entries)}
	}
}

func entryFromLDAP(e *goldap.Entry) *Entry {
	entry := NewEntry(e.DN)
	for _, attr := range e.Attributes {
		values := make([][]byte, len(attr.ByteValues))
		copy(values, attr.ByteValues)
		entry.Attributes[attr.Name] = values
	}
	return entry
}

func entryToAddAttributes(dn string, attrs []Attribute) *goldap.AddRequest {
	req := goldap.NewAddRequest(dn, nil)
	for _, a := range attrs {
		values := make([]string, len(a.Values))
		for i, v := range a.Values {
			values[i] = string(v)
		}
		req.Attribute(a.Name, values)
	}
	return req
}

func modificationsToModifyRequest(dn string, mods []Modification) *goldap.ModifyRequest {
	req := goldap.NewModifyRequest(dn, nil)
	for _, m := range mods {
		values := make([]string, len(m.Values))
		for i, v := range m.Values {
			values[i] = string(v)
		}
		switch m.Op {
		case ModAdd:
			req.Add(m.Name, values)
		case ModDelete:
			req.Delete(m.Name, values)
		case ModReplace:
			req.Replace(m.Name, values)
		}
	}
	return req
}
