package node

import (
	"time"

	"ChordDHT/internal/logger"
)

type Option func(*Node)

// WithLogger sets the logger used by the node.
func WithLogger(l logger.Logger) Option {
	return func(n *Node) {
		if l != nil {
			n.lgr = l
		}
	}
}

// WithPowDifficulty sets the proof-of-work difficulty this node requires
// of callers, and mines itself when calling notify on a peer (spec.md
// §4.6).
func WithPowDifficulty(d int) Option {
	return func(n *Node) {
		n.powDifficulty = d
	}
}

// WithPowLifetime sets the maximum age a proof-of-work token may have and
// still be accepted by this node's notify handler (spec.md §4.6).
func WithPowLifetime(d time.Duration) Option {
	return func(n *Node) {
		if d > 0 {
			n.powLifetime = d
		}
	}
}
