// Package directory implements the LDAP external server / connection pool
// manager (§4.4) and the capability the LDAP backend consumes to reach a
// directory, whether a real external server or the embedded in-memory test
// directory (design notes §9: "abstract base class → interface").
package directory

import (
	"context"
	"crypto/tls"
	"time"
)

// ModOp is the kind of change a Modification applies.
type ModOp int

const (
	ModAdd ModOp = iota
	ModDelete
	ModReplace
)

func (op ModOp) String() string {
	switch op {
	case ModAdd:
		return "add"
	case ModDelete:
		return "delete"
	case ModReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Attribute is a single LDAP attribute contributed to an entry being built,
// carrying one or more octet-string values.
type Attribute struct {
	Name   string
	Values [][]byte
}

// Modification is one add/delete/replace change a mapper contributes to a
// PUT's diff (§4.3).
type Modification struct {
	Op     ModOp
	Name   string
	Values [][]byte
}

// Entry is an opaque handle produced and consumed by the LDAP interface,
// carrying a distinguished name and a multimap of attribute name to
// one-or-more octet-string values (§3). The core never constructs entries
// except via a mapper.
type Entry struct {
	DN         string
	Attributes map[string][][]byte
}

// NewEntry builds an empty entry for the given DN.
func NewEntry(dn string) *Entry {
	return &Entry{DN: dn, Attributes: make(map[string][][]byte)}
}

// AddValues appends values to an attribute, creating it if absent.
func (e *Entry) AddValues(name string, values ...[]byte) {
	e.Attributes[name] = append(e.Attributes[name], values...)
}

// SetValues overwrites an attribute's values.
func (e *Entry) SetValues(name string, values ...[]byte) {
	e.Attributes[name] = values
}

// GetValues returns the raw values for an attribute, or nil if absent.
func (e *Entry) GetValues(name string) [][]byte {
	return e.Attributes[name]
}

// GetValue returns the first value for an attribute, or nil if absent.
func (e *Entry) GetValue(name string) []byte {
	vs := e.Attributes[name]
	if len(vs) == 0 {
		return nil
	}
	return vs[0]
}

// SearchScope mirrors the three LDAP search scopes.
type SearchScope int

const (
	ScopeBaseObject SearchScope = iota
	ScopeSingleLevel
	ScopeWholeSubtree
)

// SearchRequest encapsulates LDAP search parameters. Streamed and SizeLimit
// describe whether the caller wants a paged/streamed result set; the
// single-entry search helper substitutes both fields when they are not
// already shaped for a single-entry lookup (§4.4).
type SearchRequest struct {
	BaseDN     string
	Scope      SearchScope
	Filter     string
	Attributes []string
	SizeLimit  int
	Streamed   bool
}

// DirectoryServer is the capability the LDAP backend (C5) depends on to
// reach a directory: a single-entry base-scope lookup, add, modify, and
// delete, each of which atomically returns the post-operation entry state
// where applicable. One implementation wraps a pooled external LDAP server
// (ExternalServer); another is the embedded in-memory test directory.
type DirectoryServer interface {
	// SearchSingleEntry returns the sole matching entry, nil if none
	// matched, or a *TooManyResultsError (this package's type) if more than
	// one entry matched.
	SearchSingleEntry(ctx context.Context, req *SearchRequest) (*Entry, error)

	// Add commits a new entry and returns the post-read entry state.
	Add(ctx context.Context, dn string, attrs []Attribute) (*Entry, error)

	// Modify applies a set of modifications to dn and returns the
	// post-read entry state.
	Modify(ctx context.Context, dn string, mods []Modification) (*Entry, error)

	// Delete removes dn. A not-found condition is reported as
	// ErrNoSuchObject, which the backend translates to a boolean false
	// rather than propagating an error (§4.5).
	Delete(ctx context.Context, dn string) error
}

// LDAPInterfaceProvider is the capability that lazily obtains a
// DirectoryServer, modeling the design notes' "abstract base class →
// interface" guidance: the backend is polymorphic in how it gets an LDAP
// interface, with one implementor per deployment style.
type LDAPInterfaceProvider interface {
	GetLDAPInterface(ctx context.Context) (DirectoryServer, error)
	Close() error
}

// AuthMethod selects how pooled connections authenticate to the directory.
type AuthMethod int

const (
	AuthMethodSimpleBind AuthMethod = iota
	AuthMethodKerberos
)

func (a AuthMethod) String() string {
	switch a {
	case AuthMethodSimpleBind:
		return "simple"
	case AuthMethodKerberos:
		return "kerberos"
	default:
		return "unknown"
	}
}

// ConnectionConfig holds the configuration for the connection pool (§6):
// directory host, port, bind DN, bind password, maximum pooled connections,
// and authentication method, plus the knobs needed to drive either a
// simple bind or a Kerberos/GSSAPI bind (§4.14).
type ConnectionConfig struct {
	Host string
	Port int

	BindDN       string
	BindPassword string

	AuthMethod     AuthMethod
	KerberosRealm  string
	KerberosKeytab string
	KerberosConfig string

	MaxConnections int
	MaxIdleTime    time.Duration
	Timeout        time.Duration

	UseTLS    bool
	TLSConfig *tls.Config
}

// HasAuthentication reports whether the configuration supplies credentials
// for either supported authentication method.
func (c *ConnectionConfig) HasAuthentication() bool {
	switch c.AuthMethod {
	case AuthMethodKerberos:
		return c.KerberosRealm != "" && c.KerberosKeytab != ""
	default:
		return c.BindDN != "" && c.BindPassword != ""
	}
}
