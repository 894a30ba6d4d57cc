package directory

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	goldap "github.com/go-ldap/ldap/v3"
)

// connectionPool is a single shared pool of LDAP connections bound with the
// configured credentials (§3 "Connection Pool"). Its free-list shape is
// adapted from the teacher's channel-backed pool, trimmed of SRV discovery
// and periodic health checking (this gateway dials a single configured
// host:port, per §6's configuration options) but keeping the same
// borrow/return/defunct-release discipline.
type connectionPool struct {
	config *ConnectionConfig
	addr   string

	mu          sync.Mutex
	cond        *sync.Cond
	idle        []*pooledConnection
	outstanding int
	closed      bool

	logger Logger
}

type pooledConnection struct {
	conn     *goldap.Conn
	lastUsed time.Time
	healthy  bool
}

func newConnectionPool(config *ConnectionConfig, logger Logger) *connectionPool {
	if logger == nil {
		logger = NopLogger{}
	}
	p := &connectionPool{
		config: config,
		addr:   fmt.Sprintf("%s:%d", config.Host, config.Port),
		logger: logger,
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// get retrieves a connection from the idle list, or dials a new one if the
// idle list is empty and the pool has not reached MaxConnections
// outstanding connections. If the idle list is empty and the pool is
// already at MaxConnections outstanding, get blocks until a connection is
// released or ctx is done.
func (p *connectionPool) get(ctx context.Context) (*pooledConnection, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errors.New("directory: connection pool is closed")
	}

	for len(p.idle) > 0 {
		pc := p.idle[len(p.idle)-1]
		p.idle = p.idle[:len(p.idle)-1]
		if p.isHealthy(pc) {
			p.outstanding++
			p.mu.Unlock()
			return pc, nil
		}
		p.closeConn(pc)
	}

	if p.config.MaxConnections > 0 {
		for p.outstanding >= p.config.MaxConnections {
			if err := p.waitForCapacity(ctx); err != nil {
				p.mu.Unlock()
				return nil, err
			}
			if p.closed {
				p.mu.Unlock()
				return nil, errors.New("directory: connection pool is closed")
			}
			for len(p.idle) > 0 {
				pc := p.idle[len(p.idle)-1]
				p.idle = p.idle[:len(p.idle)-1]
				if p.isHealthy(pc) {
					p.outstanding++
					p.mu.Unlock()
					return pc, nil
				}
				p.closeConn(pc)
			}
		}
	}
	p.outstanding++
	p.mu.Unlock()

	pc, err := p.dial(ctx)
	if err != nil {
		p.mu.Lock()
		p.outstanding--
		p.cond.Broadcast()
		p.mu.Unlock()
		return nil, err
	}
	return pc, nil
}

// waitForCapacity blocks on p.cond, which release, releaseDefunct, and close
// all broadcast on, until either a slot frees up or ctx is done. The caller
// must hold p.mu and re-check its wait condition after this returns nil,
// since the wakeup is not necessarily the one that satisfied it.
func (p *connectionPool) waitForCapacity(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, p.cond.Broadcast)
	defer stop()
	p.cond.Wait()
	return ctx.Err()
}

func (p *connectionPool) isHealthy(pc *pooledConnection) bool {
	if pc == nil || pc.conn == nil || !pc.healthy {
		return false
	}
	if p.config.MaxIdleTime > 0 && time.Since(pc.lastUsed) > p.config.MaxIdleTime {
		return false
	}
	return true
}

func (p *connectionPool) dial(ctx context.Context) (*pooledConnection, error) {
	var conn *goldap.Conn
	err := LogOperation(p.logger, "dial", map[string]any{"addr": p.addr}, func() error {
		dialer := &net.Dialer{Timeout: p.config.Timeout}
		var dialErr error
		if p.config.UseTLS {
			conn, dialErr = goldap.DialURL(fmt.Sprintf("ldaps://%s", p.addr),
				goldap.DialWithDialer(*dialer), goldap.DialWithTLSConfig(p.config.TLSConfig))
		} else {
			conn, dialErr = goldap.DialURL(fmt.Sprintf("ldap://%s", p.addr), goldap.DialWithDialer(*dialer))
		}
		return dialErr
	})
	if err != nil {
		return nil, fmt.Errorf("directory: failed to connect to %s: %w", p.addr, err)
	}
	if p.config.Timeout > 0 {
		conn.SetTimeout(p.config.Timeout)
	}

	pc := &pooledConnection{conn: conn, lastUsed: time.Now(), healthy: true}

	if p.config.HasAuthentication() {
		if err := p.authenticate(ctx, pc); err != nil {
			conn.Close()
			return nil, fmt.Errorf("directory: authentication failed: %w", err)
		}
	}

	return pc, nil
}

func (p *connectionPool) authenticate(ctx context.Context, pc *pooledConnection) error {
	switch p.config.AuthMethod {
	case AuthMethodKerberos:
		return performKerberosBind(ctx, pc.conn, p.config)
	default:
		return pc.conn.Bind(p.config.BindDN, p.config.BindPassword)
	}
}

// release returns a connection to the idle list (if healthy) or closes it
// (if not), decrementing the outstanding count either way. Exactly one of
// release or releaseDefunct must be called for every connection obtained
// from get, per §5's resource discipline.
func (p *connectionPool) release(pc *pooledConnection) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.outstanding--
	defer p.cond.Broadcast()
	if p.closed || !p.isHealthy(pc) {
		p.closeConn(pc)
		return
	}
	pc.lastUsed = time.Now()
	p.idle = append(p.idle, pc)
}

// releaseDefunct discards a connection the caller has classified as
// fatally broken rather than returning it to the idle list, per §4.4's
// failure classification: the pool will discard and replenish.
func (p *connectionPool) releaseDefunct(pc *pooledConnection) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.outstanding--
	p.closeConn(pc)
	p.cond.Broadcast()
}

func (p *connectionPool) closeConn(pc *pooledConnection) {
	if pc == nil {
		return
	}
	pc.healthy = false
	if pc.conn != nil {
		pc.conn.Close()
	}
}

// close tears down the pool, closing every idle connection. It is safe to
// call more than once; only the first call has an effect.
func (p *connectionPool) close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	for _, pc := range p.idle {
		p.closeConn(pc)
	}
	p.idle = nil
	p.cond.Broadcast()
	return nil
}
