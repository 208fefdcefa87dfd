package routingtable

import (
	"fmt"
	"sync"

	"ChordDHT/internal/domain"
	"ChordDHT/internal/logger"
)

// routingEntry represents a single routing pointer (a successor, the
// predecessor, or a finger) guarded by its own mutex.
//
// Each entry holds a reference to a domain.Node and provides thread-safe
// access through a read/write mutex. The type is defined as a struct to
// allow future extensions (e.g., storing metadata, timestamps, or health
// information about the node).
type routingEntry struct {
	// node is the domain-level node stored in this entry.
	// It can be read and updated concurrently using mu.
	node *domain.Node

	// mu synchronizes access to node, ensuring safe
	// concurrent reads and writes.
	mu sync.RWMutex
}

// fingerEntry is a routingEntry that additionally remembers the ring
// position it targets (own_pos + 2^i), since that target never changes
// once the table is built but the node currently answering for it does.
type fingerEntry struct {
	target ID
	routingEntry
}

// ID is a local alias kept for readability inside this package.
type ID = domain.ID

// RoutingTable represents the routing state of a node in the Chord DHT.
//
// A routing table combines the ring successor/predecessor pointers with a
// finger table of power-of-two shortcuts, enabling O(log n) lookups while
// the successor list provides fault tolerance against node failures. It is
// owned by a single node (self) and maintained through stabilization and
// fix_fingers.
//
// Fields:
//   - logger: used for structured logging of routing operations.
//   - space: identifier space configuration (bit-length and successor
//     list size).
//   - self: the local node that owns this routing table.
//   - successorList: a list of R successors, providing redundancy and
//     fault tolerance against node failures.
//   - predecessor: the immediate predecessor of this node on the ring.
//   - fingers: the finger table, one entry per bit of the identifier
//     space, entry i targeting self.ID + 2^i.
type RoutingTable struct {
	logger        logger.Logger  // logger for routing table operations
	space         domain.Space   // identifier space and successor list size
	self          *domain.Node   // the local node owning this routing table
	successorList []*routingEntry // R successors for fault tolerance
	succListSize  int             // configured size of the successor list
	predecessor   *routingEntry   // immediate predecessor in the ring
	fingers       []*fingerEntry  // finger table, length space.Bits

	fixMu    sync.Mutex // guards fixFingerIndex
	fixIndex int        // next finger index fix_fingers will refresh
}

// New creates and initializes a new RoutingTable for the given node.
//
// The routing table is initialized with empty successor entries, an empty
// predecessor entry, and a finger table of size space.Bits (with each
// entry's target precomputed and its node left nil until stabilization
// fills it in). By default, logging is disabled (NopLogger) unless
// overridden with options. succListSize is read from space.SuccListSize.
func New(self *domain.Node, space domain.Space, opts ...Option) *RoutingTable {
	succListSize := space.SuccListSize
	rt := &RoutingTable{
		self:          self,
		space:         space,
		successorList: make([]*routingEntry, succListSize),
		succListSize:  succListSize,
		predecessor:   &routingEntry{},
		fingers:       make([]*fingerEntry, space.Bits),
		logger:        &logger.NopLogger{},
		fixIndex:      0,
	}
	for i := range rt.successorList {
		rt.successorList[i] = &routingEntry{}
	}
	for i := range rt.fingers {
		target, err := space.FingerStart(self.ID, i)
		if err != nil {
			target = space.Zero()
		}
		rt.fingers[i] = &fingerEntry{target: target}
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.logger.Debug("routing table initialized")
	return rt
}

// InitSingleNode configures the routing table to represent a single-node
// network.
//
// In this configuration, the first successor, the predecessor, and every
// finger entry point back to the local node itself; the remaining
// successor-list entries are left as they are.
// This state is typically used when bootstrapping a fresh ring with only
// one participating node.
func (rt *RoutingTable) InitSingleNode() {
	rt.successorList[0] = &routingEntry{node: rt.self}
	rt.predecessor = &routingEntry{node: rt.self}
	for _, f := range rt.fingers {
		f.node = rt.self
	}
	rt.logger.Debug("routing table set to single-node ring configuration")
}

// Space returns the identifier-space configuration of the ring.
func (rt *RoutingTable) Space() domain.Space {
	return rt.space
}

// Self returns the local node owning this routing table.
func (rt *RoutingTable) Self() *domain.Node {
	return rt.self
}

// SuccListSize returns the configured size of the successor list.
func (rt *RoutingTable) SuccListSize() int {
	return rt.succListSize
}

// GetSuccessor returns the i-th successor from the successor list.
//
// If the index is out of range or the entry does not contain a node,
// the method returns nil. Access is synchronized using a read lock
// to ensure thread-safe concurrent access.
func (rt *RoutingTable) GetSuccessor(i int) *domain.Node {
	if i < 0 || i >= len(rt.successorList) {
		rt.logger.Warn(
			"GetSuccessor: index out of range",
			logger.F("requested", i),
			logger.F("valid_range", fmt.Sprintf("[0..%d]", len(rt.successorList)-1)),
		)
		return nil
	}
	entry := rt.successorList[i]
	entry.mu.RLock()
	node := entry.node
	entry.mu.RUnlock()
	rt.logger.Debug("GetSuccessor: returning successor", logger.F("index", i), logger.FNode("successor", node))
	return node
}

// FirstSuccessor returns the first successor in the successor list.
// It is a convenience method equivalent to GetSuccessor(0).
func (rt *RoutingTable) FirstSuccessor() *domain.Node {
	return rt.GetSuccessor(0)
}

// SetSuccessor updates the i-th successor entry with the specified node.
//
// If the index is out of range, the method logs a warning and does
// nothing. The update is synchronized with a write lock.
func (rt *RoutingTable) SetSuccessor(i int, node *domain.Node) {
	if i < 0 || i >= len(rt.successorList) {
		rt.logger.Warn(
			"SetSuccessor: index out of range",
			logger.F("requested", i),
			logger.F("valid_range", fmt.Sprintf("[0..%d]", len(rt.successorList)-1)),
		)
		return
	}
	entry := rt.successorList[i]
	entry.mu.Lock()
	entry.node = node
	entry.mu.Unlock()
	rt.logger.Debug("SetSuccessor: updated successor", logger.F("index", i), logger.FNode("successor", node))
}

// SuccessorList returns a slice of all non-nil successors currently known
// in the routing table. Callers receive a shallow copy and may safely
// modify it without affecting internal state.
func (rt *RoutingTable) SuccessorList() []*domain.Node {
	out := make([]*domain.Node, 0, len(rt.successorList))
	snapshot := make([]*domain.Node, 0, len(rt.successorList))
	for _, entry := range rt.successorList {
		entry.mu.RLock()
		node := entry.node
		entry.mu.RUnlock()

		snapshot = append(snapshot, node)
		if node != nil {
			out = append(out, node)
		}
	}
	nodesInfo := make([]map[string]any, 0, len(snapshot))
	for i, n := range snapshot {
		if n == nil {
			nodesInfo = append(nodesInfo, map[string]any{"index": i, "node": nil})
		} else {
			nodesInfo = append(nodesInfo, map[string]any{"index": i, "id": n.ID.String(), "addr": n.Addr})
		}
	}
	rt.logger.Debug("SuccessorList snapshot", logger.F("entries", nodesInfo))
	return out
}

// SetSuccessorList replaces the entire successor list with the given
// slice, which must have the same length as the internal list.
func (rt *RoutingTable) SetSuccessorList(nodes []*domain.Node) {
	if len(nodes) != len(rt.successorList) {
		rt.logger.Warn(
			"SetSuccessorList: length mismatch",
			logger.F("expected", len(rt.successorList)),
			logger.F("got", len(nodes)),
		)
		return
	}
	entriesInfo := make([]map[string]any, 0, len(nodes))
	for i, node := range nodes {
		rt.SetSuccessor(i, node)
		if node == nil {
			entriesInfo = append(entriesInfo, map[string]any{"index": i, "node": nil})
		} else {
			entriesInfo = append(entriesInfo, map[string]any{"index": i, "id": node.ID.String(), "addr": node.Addr})
		}
	}
	rt.logger.Debug("SetSuccessorList: successor list updated", logger.F("entries", entriesInfo))
}

// PromoteCandidate restructures the successor list by promoting the
// successor at position i to the head of the list.
//
// Behavior:
//   - The node at index i becomes the new successor at position 0.
//   - All successors after position i are shifted forward, preserving
//     their relative order.
//   - All successors before position i are discarded.
//   - The list is padded with nil entries until it reaches the configured
//     successor list size.
func (rt *RoutingTable) PromoteCandidate(i int) {
	if i <= 0 || i >= rt.succListSize {
		rt.logger.Warn(
			"PromoteCandidate: invalid index",
			logger.F("requested", i),
			logger.F("valid_range", fmt.Sprintf("[1..%d]", rt.succListSize-1)),
		)
		return
	}
	candidate := rt.GetSuccessor(i)
	if candidate == nil {
		rt.logger.Warn("PromoteCandidate: candidate is nil", logger.F("index", i))
		return
	}
	newList := make([]*domain.Node, 0, rt.succListSize)
	newList = append(newList, candidate)
	for j := i + 1; j < rt.succListSize; j++ {
		if succ := rt.GetSuccessor(j); succ != nil {
			newList = append(newList, succ)
		}
	}
	for len(newList) < rt.succListSize {
		newList = append(newList, nil)
	}
	rt.SetSuccessorList(newList)
	rt.logger.Debug("PromoteCandidate: successor promoted", logger.F("from_index", i), logger.FNode("candidate", candidate))
}

// GetPredecessor returns the current predecessor node, or nil if not set.
func (rt *RoutingTable) GetPredecessor() *domain.Node {
	rt.predecessor.mu.RLock()
	node := rt.predecessor.node
	rt.predecessor.mu.RUnlock()
	rt.logger.Debug("GetPredecessor: predecessor retrieved", logger.FNode("predecessor", node))
	return node
}

// SetPredecessor updates the predecessor pointer to the specified node.
func (rt *RoutingTable) SetPredecessor(node *domain.Node) {
	rt.predecessor.mu.Lock()
	rt.predecessor.node = node
	rt.predecessor.mu.Unlock()
	rt.logger.Debug("SetPredecessor: predecessor updated", logger.FNode("predecessor", node))
}

// FingerTarget returns the ring position targeted by finger entry i
// (self.ID + 2^i mod 2^Bits), fixed at table-creation time.
func (rt *RoutingTable) FingerTarget(i int) ID {
	if i < 0 || i >= len(rt.fingers) {
		return nil
	}
	return rt.fingers[i].target
}

// GetFinger returns the node pointer currently stored in finger entry i.
//
// If i is out of range, the method returns nil. Access is synchronized
// with a read lock.
func (rt *RoutingTable) GetFinger(i int) *domain.Node {
	if i < 0 || i >= len(rt.fingers) {
		rt.logger.Warn(
			"GetFinger: index out of range",
			logger.F("requested", i),
			logger.F("valid_range", fmt.Sprintf("[0..%d]", len(rt.fingers)-1)),
		)
		return nil
	}
	entry := rt.fingers[i]
	entry.mu.RLock()
	node := entry.node
	entry.mu.RUnlock()
	rt.logger.Debug("GetFinger: node retrieved", logger.F("index", i), logger.FNode("node", node))
	return node
}

// SetFinger updates finger entry i with the specified node.
//
// If i is out of range, the method logs a warning and does nothing.
func (rt *RoutingTable) SetFinger(i int, node *domain.Node) {
	if i < 0 || i >= len(rt.fingers) {
		rt.logger.Warn(
			"SetFinger: index out of range",
			logger.F("requested", i),
			logger.F("valid_range", fmt.Sprintf("[0..%d]", len(rt.fingers)-1)),
		)
		return
	}
	entry := rt.fingers[i]
	entry.mu.Lock()
	entry.node = node
	entry.mu.Unlock()
	rt.logger.Debug("SetFinger: entry updated", logger.F("index", i), logger.FNode("node", node))
}

// Fingers returns a snapshot of the full finger table (index, target,
// node), for debug/introspection purposes. Entries with a nil node are
// included with node == nil.
type FingerSnapshot struct {
	Index int
	Target ID
	Node   *domain.Node
}

// Fingers returns a read-locked snapshot of every finger entry.
func (rt *RoutingTable) Fingers() []FingerSnapshot {
	out := make([]FingerSnapshot, len(rt.fingers))
	for i, entry := range rt.fingers {
		entry.mu.RLock()
		node := entry.node
		entry.mu.RUnlock()
		out[i] = FingerSnapshot{Index: i, Target: entry.target, Node: node}
	}
	return out
}

// NextFixIndex returns the finger index fix_fingers should refresh next,
// and advances the round-robin cursor to (index+1) mod len(fingers). The
// whole read-then-advance is atomic under fixMu, matching the single-
// index-per-tick cadence spec.md §4.5.2 describes.
func (rt *RoutingTable) NextFixIndex() int {
	rt.fixMu.Lock()
	i := rt.fixIndex
	rt.fixIndex = (rt.fixIndex + 1) % len(rt.fingers)
	rt.fixMu.Unlock()
	return i
}

// DebugLog emits a structured DEBUG-level log entry containing a snapshot
// of the entire routing table.
//
// Unlike calling the public getters (GetSuccessor, GetPredecessor,
// GetFinger), this method accesses the internal entries directly under
// read locks, in order to avoid triggering additional per-entry debug
// logs. As a result, DebugLog produces a single compact log entry that
// reflects the current state without side effects.
func (rt *RoutingTable) DebugLog() {
	self := rt.self

	rt.predecessor.mu.RLock()
	pred := rt.predecessor.node
	rt.predecessor.mu.RUnlock()

	successors := make([]map[string]any, 0, len(rt.successorList))
	for i, entry := range rt.successorList {
		entry.mu.RLock()
		node := entry.node
		entry.mu.RUnlock()
		if node == nil {
			successors = append(successors, map[string]any{"index": i, "node": nil})
		} else {
			successors = append(successors, map[string]any{"index": i, "id": node.ID.String(), "addr": node.Addr})
		}
	}

	fingers := make([]map[string]any, 0, len(rt.fingers))
	for i, entry := range rt.fingers {
		entry.mu.RLock()
		node := entry.node
		entry.mu.RUnlock()
		if node == nil {
			fingers = append(fingers, map[string]any{"index": i, "target": entry.target.String(), "node": nil})
		} else {
			fingers = append(fingers, map[string]any{"index": i, "target": entry.target.String(), "id": node.ID.String(), "addr": node.Addr})
		}
	}

	rt.logger.Debug("RoutingTable snapshot",
		logger.FNode("self", self),
		logger.FNode("predecessor", pred),
		logger.F("successors", successors),
		logger.F("fingers", fingers),
	)
}
