// Package client dials and caches gRPC connections to peer nodes. A single
// Pool is shared by a node's stabilize/fix_fingers/successor-health workers
// and its find_successor routing path, so connections are reference-counted
// rather than closed the moment one caller is done with them: a finger and
// the successor list often point at the same peer, and tearing the
// connection down between ticks would just force a redial on the next one.
package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"ChordDHT/internal/logger"
	"ChordDHT/internal/rpcpb"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var (
	ErrClientNotInPool  = errors.New("client: connection not in pool")
	ErrNoPredecessor    = errors.New("client: node has no predecessor")
	ErrUnavailable      = errors.New("client: peer unavailable")
	ErrNotFound         = errors.New("client: key not found")
	ErrExpired          = errors.New("client: key expired")
	ErrDeadlineExceeded = errors.New("client: deadline exceeded")
	ErrInternal         = errors.New("client: internal error")
)

type entry struct {
	conn     *grpc.ClientConn
	dht      rpcpb.DHTClient
	capi     rpcpb.ClientAPIClient
	refCount int
	lastUsed time.Time
}

// Pool dials and caches gRPC client connections to peer addresses, keyed by
// address, with reference counting so a connection only becomes eligible
// for idle eviction once every caller has released it.
type Pool struct {
	lgr            logger.Logger
	dialTimeout    time.Duration
	idleTTL        time.Duration
	failureTimeout time.Duration

	mu      sync.Mutex
	entries map[string]*entry

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New builds a Pool. failureTimeout is the default per-call deadline
// applied by the verb wrappers below unless a caller passes its own
// context deadline.
func New(opts ...Option) *Pool {
	p := &Pool{
		lgr:            &logger.NopLogger{},
		dialTimeout:    3 * time.Second,
		idleTTL:        2 * time.Minute,
		failureTimeout: 2 * time.Second,
		entries:        make(map[string]*entry),
		stopCh:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.evictLoop()
	return p
}

func (p *Pool) FailureTimeout() time.Duration { return p.failureTimeout }

// AddRef dials addr if not already connected and increments its reference
// count, returning typed stubs for both services exposed on the connection.
func (p *Pool) AddRef(addr string) (rpcpb.DHTClient, rpcpb.ClientAPIClient, error) {
	p.mu.Lock()
	if e, ok := p.entries[addr]; ok {
		e.refCount++
		e.lastUsed = time.Now()
		p.mu.Unlock()
		return e.dht, e.capi, nil
	}
	p.mu.Unlock()

	conn, err := p.dial(addr)
	if err != nil {
		return nil, nil, err
	}

	e := &entry{
		conn:     conn,
		dht:      rpcpb.NewDHTClient(conn),
		capi:     rpcpb.NewClientAPIClient(conn),
		refCount: 1,
		lastUsed: time.Now(),
	}

	p.mu.Lock()
	if existing, ok := p.entries[addr]; ok {
		// Lost the race against a concurrent AddRef: keep the winner,
		// drop the connection we just dialed.
		existing.refCount++
		existing.lastUsed = time.Now()
		p.mu.Unlock()
		_ = conn.Close()
		return existing.dht, existing.capi, nil
	}
	p.entries[addr] = e
	p.mu.Unlock()

	return e.dht, e.capi, nil
}

// Release decrements addr's reference count. It does not close the
// connection immediately: the eviction loop reclaims entries that have sat
// at zero references for longer than idleTTL.
func (p *Pool) Release(addr string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[addr]
	if !ok {
		return
	}
	if e.refCount > 0 {
		e.refCount--
	}
	e.lastUsed = time.Now()
}

// GetFromPool returns the stubs for addr without dialing: it is an error to
// call it for an address nobody has AddRef'd.
func (p *Pool) GetFromPool(addr string) (rpcpb.DHTClient, rpcpb.ClientAPIClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[addr]
	if !ok {
		return nil, nil, ErrClientNotInPool
	}
	return e.dht, e.capi, nil
}

// DialEphemeral opens a connection outside the pool for a single call site
// that does not want to hold a long-lived reference (e.g. probing a
// candidate node seen only once during bootstrap). The caller must close
// the returned connection itself.
func (p *Pool) DialEphemeral(ctx context.Context, addr string) (rpcpb.DHTClient, *grpc.ClientConn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, p.dialTimeout)
	defer cancel()
	conn, err := grpc.DialContext(dialCtx, addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(rpcpb.CodecName)),
	)
	if err != nil {
		return nil, nil, err
	}
	return rpcpb.NewDHTClient(conn), conn, nil
}

func (p *Pool) dial(addr string) (*grpc.ClientConn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.dialTimeout)
	defer cancel()
	return grpc.DialContext(ctx, addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(rpcpb.CodecName)),
	)
}

func (p *Pool) evictLoop() {
	ticker := time.NewTicker(p.idleTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.evictIdle()
		}
	}
}

func (p *Pool) evictIdle() {
	now := time.Now()
	p.mu.Lock()
	defer p.mu.Unlock()
	for addr, e := range p.entries {
		if e.refCount == 0 && now.Sub(e.lastUsed) > p.idleTTL {
			_ = e.conn.Close()
			delete(p.entries, addr)
			p.lgr.Debug("client: evicted idle connection", logger.F("addr", addr))
		}
	}
}

// DebugLog dumps the pool's current connection table at debug level.
func (p *Pool) DebugLog() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for addr, e := range p.entries {
		p.lgr.Debug("client: pool entry",
			logger.F("addr", addr),
			logger.F("ref_count", e.refCount),
			logger.F("last_used", e.lastUsed))
	}
}

// Close shuts down the eviction loop and closes every tracked connection,
// regardless of reference count.
func (p *Pool) Close() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.mu.Lock()
	defer p.mu.Unlock()
	for addr, e := range p.entries {
		_ = e.conn.Close()
		delete(p.entries, addr)
	}
}
