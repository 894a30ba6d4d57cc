package directory

import (
	"context"
	"fmt"
	"sync"

	goldap "github.com/go-ldap/ldap/v3"
)

// poolState is the lazy-singleton pool's lifecycle, per §4.4's state
// diagram: NONE -> CREATING -> OPEN -> CLOSED, with a CREATING -> NONE edge
// on a failed build and an OPEN -> NONE edge when a caller observes the
// pool already closed and must rebuild it.
type poolState int

const (
	poolNone poolState = iota
	poolCreating
	poolOpen
	poolClosed
)

// ExternalServer is the C4 LDAP external server: a lazily constructed,
// single shared connection pool to the backing directory, with the
// defunct-connection classification of §4.4 applied on every borrow.
// ExternalServer implements both LDAPInterfaceProvider (it is its own
// capability provider) and DirectoryServer (operations execute directly
// against the pool it owns).
type ExternalServer struct {
	config *ConnectionConfig
	logger Logger

	mu    sync.Mutex
	state poolState
	pool  *connectionPool
}

// NewExternalServer constructs a server that will lazily build its
// connection pool on first use.
func NewExternalServer(config *ConnectionConfig, logger Logger) *ExternalServer {
	if logger == nil {
		logger = NopLogger{}
	}
	return &ExternalServer{config: config, logger: logger, state: poolNone}
}

// GetLDAPInterface returns the DirectoryServer capability, building the
// pool on first call. Two concurrent callers racing to build the pool
// converge on exactly one live pool (§5 I5): the first to publish wins and
// the second closes the pool it built before returning the winner's,
// guaranteeing at most one live pool.
func (s *ExternalServer) GetLDAPInterface(ctx context.Context) (DirectoryServer, error) {
	s.mu.Lock()
	if s.state == poolOpen {
		s.mu.Unlock()
		return s, nil
	}
	// poolCreating: another goroutine is already building the pool; we
	// build our own candidate too rather than spin-wait, and the race
	// rule below resolves the winner. poolClosed/poolNone: fall through
	// and build.
	s.state = poolCreating
	s.mu.Unlock()

	candidate := newConnectionPool(s.config, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == poolOpen {
		// Another goroutine already published a pool while we were
		// building ours. We lost the race: close our extra pool and
		// return the winner's.
		_ = candidate.close()
		return s, nil
	}

	s.pool = candidate
	s.state = poolOpen
	return s, nil
}

// Close tears down the pool exactly once, per §5's "the pool is closed
// exactly once, during server shutdown."
func (s *ExternalServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != poolOpen || s.pool == nil {
		s.state = poolClosed
		return nil
	}
	err := s.pool.close()
	s.state = poolClosed
	return err
}

func (s *ExternalServer) currentPool() (*connectionPool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != poolOpen || s.pool == nil {
		return nil, fmt.Errorf("directory: connection pool is not open")
	}
	return s.pool, nil
}

// withConnection borrows a connection, invokes fn, and releases the
// connection exactly once on every exit path: healthy if fn succeeded or
// failed with a non-defunct result code, defunct otherwise. The original
// error is always returned unwrapped (§4.4, §5).
func (s *ExternalServer) withConnection(ctx context.Context, fn func(*goldap.Conn) error) error {
	pool, err := s.currentPool()
	if err != nil {
		return err
	}

	pc, err := pool.get(ctx)
	if err != nil {
		return err
	}

	opErr := fn(pc.conn)

	if opErr != nil && classifyConnectionFailure(opErr) {
		pool.releaseDefunct(pc)
	} else {
		pool.release(pc)
	}
	return opErr
}

// SearchSingleEntry implements DirectoryServer.
func (s *ExternalServer) SearchSingleEntry(ctx context.Context, req *SearchRequest) (*Entry, error) {
	searchReq := singleEntrySearchRequest(req)

	var entry *Entry
	err := s.withConnection(ctx, func(conn *goldap.Conn) error {
		return LogOperation(s.logger, "search", map[string]any{"dn": req.BaseDN, "filter": req.Filter}, func() error {
			result, err := conn.Search(searchReq)
			if err != nil {
				if IsNoSuchObject(err) {
					entry = nil
					return nil
				}
				return err
			}
			decoded, decodeErr := decodeSingleEntryResult(req.BaseDN, result)
			if decodeErr != nil {
				return decodeErr
			}
			entry = decoded
			return nil
		})
	})
	return entry, err
}

// Add implements DirectoryServer. The new entry's committed state is
// obtained via an immediate single-entry read-back rather than a post-read
// response control: go-ldap/v3's Add does not surface response controls to
// the caller, so the gateway still attaches a post-read control for
// protocol fidelity with directories that log/audit it, but treats the
// follow-up read (reusing the single-entry search helper already required
// by GET) as the authoritative source of the post-operation state.
func (s *ExternalServer) Add(ctx context.Context, dn string, attrs []Attribute) (*Entry, error) {
	addReq := entryToAddAttributes(dn, attrs)
	addReq.Controls = append(addReq.Controls, goldap.NewControlPostRead(""))

	err := s.withConnection(ctx, func(conn *goldap.Conn) error {
		return LogOperation(s.logger, "add", map[string]any{"dn": dn}, func() error {
			return conn.Add(addReq)
		})
	})
	if err != nil {
		return nil, err
	}

	return s.SearchSingleEntry(ctx, &SearchRequest{
		BaseDN: dn,
		Scope:  ScopeBaseObject,
		Filter: "(objectclass=*)",
	})
}

// Modify implements DirectoryServer, with the same read-back strategy as
// Add for obtaining the post-operation entry state.
func (s *ExternalServer) Modify(ctx context.Context, dn string, mods []Modification) (*Entry, error) {
	if len(mods) == 0 {
		return s.SearchSingleEntry(ctx, &SearchRequest{BaseDN: dn, Scope: ScopeBaseObject, Filter: "(objectclass=*)"})
	}

	modifyReq := modificationsToModifyRequest(dn, mods)
	modifyReq.Controls = append(modifyReq.Controls, goldap.NewControlPostRead(""))

	err := s.withConnection(ctx, func(conn *goldap.Conn) error {
		return LogOperation(s.logger, "modify", map[string]any{"dn": dn, "changes": len(mods)}, func() error {
			return conn.Modify(modifyReq)
		})
	})
	if err != nil {
		return nil, err
	}

	return s.SearchSingleEntry(ctx, &SearchRequest{
		BaseDN: dn,
		Scope:  ScopeBaseObject,
		Filter: "(objectclass=*)",
	})
}

// Delete implements DirectoryServer. A noSuchObject result is reported as
// ErrNoSuchObject; any other failure propagates unwrapped (§4.5).
func (s *ExternalServer) Delete(ctx context.Context, dn string) error {
	err := s.withConnection(ctx, func(conn *goldap.Conn) error {
		return LogOperation(s.logger, "delete", map[string]any{"dn": dn}, func() error {
			delErr := conn.Del(goldap.NewDelRequest(dn, nil))
			if delErr != nil && IsNoSuchObject(delErr) {
				return ErrNoSuchObject
			}
			return delErr
		})
	})
	return err
}
