// Package node implements the Chord protocol procedures — find_successor,
// fix_fingers, stabilize, notify — on top of a routing table, a connection
// pool, and a local key/value store.
package node

import (
	"time"

	"ChordDHT/internal/client"
	"ChordDHT/internal/logger"
	"ChordDHT/internal/routingtable"
	"ChordDHT/internal/storage"
)

// Node ties together the three pieces of per-node state the protocol
// operations in operation.go and worker.go act on: routing table, peer
// connection pool, and local storage.
type Node struct {
	rt  *routingtable.RoutingTable
	cp  *client.Pool
	s   *storage.Storage
	lgr logger.Logger

	powDifficulty int
	powLifetime   time.Duration
}

// New builds a Node from its three collaborators.
func New(rt *routingtable.RoutingTable, cp *client.Pool, s *storage.Storage, opts ...Option) *Node {
	n := &Node{
		rt:            rt,
		cp:            cp,
		s:             s,
		lgr:           &logger.NopLogger{},
		powDifficulty: 2,
		powLifetime:   5 * time.Second,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}
