package client

import (
	"time"

	"ChordDHT/internal/logger"
)

type Option func(pool *Pool)

// WithLogger sets the logger used by the pool.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		p.lgr = l
	}
}

// WithDialTimeout bounds how long a single dial is allowed to take.
func WithDialTimeout(d time.Duration) Option {
	return func(p *Pool) {
		p.dialTimeout = d
	}
}

// WithIdleTTL sets how long an unreferenced connection is kept warm before
// the eviction loop closes it.
func WithIdleTTL(d time.Duration) Option {
	return func(p *Pool) {
		p.idleTTL = d
	}
}

// WithFailureTimeout sets the per-call deadline FailureTimeout reports to
// callers (stabilize/fix_fingers/the successor health check all race a remote call
// against this to decide whether a peer is unreachable).
func WithFailureTimeout(d time.Duration) Option {
	return func(p *Pool) {
		p.failureTimeout = d
	}
}
