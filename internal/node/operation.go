package node

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ChordDHT/internal/client"
	"ChordDHT/internal/ctxutil"
	"ChordDHT/internal/domain"
	"ChordDHT/internal/logger"
	"ChordDHT/internal/pow"
	"ChordDHT/internal/routingtable"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// maxPredecessorFallbackAttempts bounds the find_successor fallback path
// (spec.md §4.5.1): a dead finger must never wedge routing, so failing over
// to the predecessor retries a bounded number of times rather than forever.
const maxPredecessorFallbackAttempts = 20

// predecessorFallbackDelay spaces out fallback attempts against the
// predecessor, giving a peer that is mid-reconnect a chance to recover.
const predecessorFallbackDelay = 50 * time.Millisecond

// IsValidID reports whether id is well-formed for this node's identifier
// space.
func (n *Node) IsValidID(id []byte) error {
	return n.rt.Space().IsValidID(id)
}

// Space returns the identifier space this node's ring operates in.
func (n *Node) Space() domain.Space {
	return n.rt.Space()
}

// Self returns this node's own ring position and address.
func (n *Node) Self() *domain.Node {
	return n.rt.Self()
}

// Predecessor returns the current predecessor, or nil if none is set.
func (n *Node) Predecessor() *domain.Node {
	return n.rt.GetPredecessor()
}

// SuccessorList returns the current successor list, first entry first.
func (n *Node) SuccessorList() []*domain.Node {
	return n.rt.SuccessorList()
}

// Fingers returns a snapshot of the finger table, for introspection and for
// fix_fingers's own round-robin repair.
func (n *Node) Fingers() []routingtable.FingerSnapshot {
	return n.rt.Fingers()
}

// closestPrecedingFinger is the local routing primitive of spec.md §4.3:
// scan fingers from highest index to lowest, skip uninitialized entries,
// and return the first one whose position lies on the open arc
// (own_pos, target). If none qualifies, return the node's own entry.
func (n *Node) closestPrecedingFinger(target domain.ID) *domain.Node {
	self := n.rt.Self()
	fingers := n.rt.Fingers()
	for i := len(fingers) - 1; i >= 0; i-- {
		f := fingers[i].Node
		if f == nil {
			continue
		}
		if domain.IsBetween(f.ID, self.ID, target, false, false) {
			return f
		}
	}
	return self
}

// ClosestPrecedingFinger is the RPC-facing form of closestPrecedingFinger
// (spec.md §4.5, "never fails").
func (n *Node) ClosestPrecedingFinger(ctx context.Context, target domain.ID) (*domain.Node, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	return n.closestPrecedingFinger(target), nil
}

// FindSuccessor resolves the node whose arc contains target (spec.md
// §4.5.1).
//
//  1. If target ∈ (own_pos, successor_pos], the local successor is the
//     answer.
//  2. Otherwise compute the closest preceding finger locally and recurse
//     via RPC on its address.
//  3. If that hop is unavailable, fall back to recursing on the
//     predecessor, retrying up to maxPredecessorFallbackAttempts times —
//     a dead finger must never wedge routing.
//  4. If no fallback succeeds, surface unavailable.
func (n *Node) FindSuccessor(ctx context.Context, target domain.ID) (*domain.Node, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}

	self := n.rt.Self()
	succ := n.rt.FirstSuccessor()
	if succ == nil {
		n.lgr.Error("FindSuccessor: routing table not initialized (successor is nil)")
		return nil, status.Error(codes.Internal, "routing table not initialized")
	}
	if target.Between(self.ID, succ.ID) {
		n.lgr.Debug("FindSuccessor: target in (self, successor], returning successor",
			logger.F("target", target.ToHexString(true)), logger.FNode("successor", *succ))
		return succ, nil
	}

	f := n.closestPrecedingFinger(target)
	if f.ID.Equal(self.ID) {
		// No finger strictly improves on self: the successor is the best
		// routing hop we have.
		n.lgr.Debug("FindSuccessor: no finger improves on self, forwarding to successor",
			logger.F("target", target.ToHexString(true)), logger.FNode("successor", *succ))
		return succ, nil
	}

	result, err := n.cp.FindSuccessor(ctx, f.Addr, target)
	if err == nil && result != nil {
		return result, nil
	}
	n.lgr.Warn("FindSuccessor: closest preceding finger unreachable, falling back to predecessor",
		logger.FNode("finger", *f), logger.F("err", err))

	pred := n.rt.GetPredecessor()
	if pred == nil {
		n.lgr.Error("FindSuccessor: no predecessor to fall back to",
			logger.F("target", target.ToHexString(true)))
		return nil, status.Error(codes.Unavailable, "successor lookup failed and no predecessor to fall back to")
	}

	var lastErr error
	for attempt := 0; attempt < maxPredecessorFallbackAttempts; attempt++ {
		if err := ctxutil.CheckContext(ctx); err != nil {
			return nil, err
		}
		result, err := n.cp.FindSuccessor(ctx, pred.Addr, target)
		if err == nil && result != nil {
			return result, nil
		}
		lastErr = err
		n.lgr.Warn("FindSuccessor: predecessor fallback attempt failed",
			logger.F("attempt", attempt), logger.FNode("predecessor", *pred), logger.F("err", err))
		time.Sleep(predecessorFallbackDelay)
	}
	n.lgr.Error("FindSuccessor: exhausted predecessor fallback attempts",
		logger.F("target", target.ToHexString(true)), logger.F("err", lastErr))
	return nil, status.Error(codes.Unavailable, "successor lookup failed: finger and predecessor both unreachable")
}

// Notify processes an incoming notify(candidate, pow) call (spec.md
// §4.5.4). It validates the proof-of-work token, then decides whether to
// adopt candidate as predecessor:
//
//   - If no predecessor is set, or candidate ∈ (predecessor, self], adopt.
//   - On adoption, every resource whose key falls in
//     (old_predecessor, candidate] now belongs to candidate: emit is
//     called once per such resource (in arbitrary order), and the
//     resource is removed from local storage once emit reports success.
//     A failed emit is logged and the resource is left in place, to be
//     retried on the caller's next notify.
//   - The stream only starts emitting after adoption; an unadopted notify
//     calls emit zero times.
//
// tok is verified before anything else: an invalid or expired token aborts
// the call with codes.Canceled, per spec.md §4.6.
func (n *Node) Notify(ctx context.Context, candidate *domain.Node, tok pow.Token, emit func(domain.Resource) error) (adopted bool, err error) {
	if !pow.Verify(tok, n.powDifficulty, n.powLifetime, time.Now()) {
		n.lgr.Warn("Notify: rejected candidate with invalid or expired proof-of-work token",
			logger.FNode("candidate", safeNode(candidate)))
		return false, status.Error(codes.Canceled, "invalid or expired proof-of-work token")
	}

	self := n.rt.Self()
	if candidate == nil || candidate.ID.Equal(self.ID) {
		return false, nil
	}

	pred := n.rt.GetPredecessor()
	if pred != nil && !candidate.ID.Between(pred.ID, self.ID) {
		n.lgr.Debug("Notify: candidate not a better predecessor, ignoring",
			logger.FNode("candidate", *candidate), logger.FNode("predecessor", *pred))
		return false, nil
	}

	lower := self.ID
	if pred != nil {
		lower = pred.ID
	}
	n.rt.SetPredecessor(candidate)
	n.lgr.Info("Notify: predecessor updated",
		logger.FNode("newPredecessor", *candidate), logger.F("hadPredecessor", pred != nil))

	toMove, berr := n.s.Between(lower, candidate.ID)
	if berr != nil {
		n.lgr.Error("Notify: failed to scan resources for handoff", logger.F("err", berr))
		return true, nil
	}

	moved := 0
	for _, res := range toMove {
		if ctx.Err() != nil {
			n.lgr.Warn("Notify: caller disconnected mid-handoff, remaining resources retried on next notify",
				logger.F("remaining", len(toMove)-moved))
			break
		}
		if sendErr := emit(res); sendErr != nil {
			n.lgr.Warn("Notify: failed to stream resource to new predecessor, will retry later",
				logger.F("key", res.RawKey), logger.F("err", sendErr))
			continue
		}
		if delErr := n.s.Delete(res.Key); delErr != nil && !errors.Is(delErr, domain.ErrResourceNotFound) {
			n.lgr.Warn("Notify: failed to evict handed-off resource locally",
				logger.F("key", res.RawKey), logger.F("err", delErr))
		}
		moved++
	}
	n.lgr.Info("Notify: handoff to new predecessor complete",
		logger.FNode("predecessor", *candidate), logger.F("moved", moved), logger.F("total", len(toMove)))
	return true, nil
}

func safeNode(nd *domain.Node) domain.Node {
	if nd == nil {
		return domain.Node{}
	}
	return *nd
}

// Put stores a resource in the DHT on behalf of an external client,
// routing to the responsible node via find_successor (spec.md §4.5.6).
func (n *Node) Put(ctx context.Context, res domain.Resource) error {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return err
	}
	succ, err := n.FindSuccessor(ctx, res.Key)
	if err != nil {
		return fmt.Errorf("put: failed to find successor for key %s: %w", res.RawKey, err)
	}
	if succ.ID.Equal(n.rt.Self().ID) {
		if err := n.StoreLocal(ctx, res); err != nil {
			return fmt.Errorf("put: failed to store resource locally: %w", err)
		}
		n.lgr.Info("Put: resource stored locally", logger.F("key", res.RawKey))
		return nil
	}

	if err := n.cp.StoreRemote(ctx, succ.Addr, res); err != nil {
		n.lgr.Error("Put: failed to store resource at successor",
			logger.F("key", res.RawKey), logger.FNode("successor", *succ), logger.F("err", err))
		return fmt.Errorf("put: failed to store resource at successor %s: %w", succ.Addr, err)
	}
	n.lgr.Info("Put: resource stored at successor", logger.F("key", res.RawKey), logger.FNode("successor", *succ))
	return nil
}

// Get retrieves a resource from the DHT on behalf of an external client.
// A miss surfaces as domain.ErrResourceNotFound or domain.ErrResourceExpired
// (spec.md §4.2/§7), not a wrapped transport error, so callers can match on
// them with errors.Is regardless of whether the key turned out to be local
// or remote; the expired case still carries the evicted value in the
// returned Resource.
func (n *Node) Get(ctx context.Context, id domain.ID) (domain.Resource, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return domain.Resource{}, err
	}
	succ, err := n.FindSuccessor(ctx, id)
	if err != nil {
		return domain.Resource{}, fmt.Errorf("get: failed to find successor for key %s: %w", id.ToHexString(true), err)
	}
	if succ.ID.Equal(n.rt.Self().ID) {
		return n.RetrieveLocal(id)
	}

	value, ttl, err := n.cp.RetrieveRemote(ctx, succ.Addr, id)
	switch {
	case err == nil:
		return domain.Resource{Key: id, Value: value, ExpiresAtUnix: ttl}, nil
	case errors.Is(err, client.ErrNotFound):
		return domain.Resource{}, domain.ErrResourceNotFound
	case errors.Is(err, client.ErrExpired):
		return domain.Resource{Key: id, Value: value, ExpiresAtUnix: ttl}, domain.ErrResourceExpired
	default:
		n.lgr.Error("Get: failed to retrieve resource from successor",
			logger.F("key", id.ToHexString(true)), logger.FNode("successor", *succ), logger.F("err", err))
		return domain.Resource{}, fmt.Errorf("get: failed to retrieve resource from successor %s: %w", succ.Addr, err)
	}
}

// Delete removes a resource from the DHT on behalf of an external client.
func (n *Node) Delete(ctx context.Context, id domain.ID) error {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return err
	}
	succ, err := n.FindSuccessor(ctx, id)
	if err != nil {
		return fmt.Errorf("delete: failed to find successor for key %s: %w", id.ToHexString(true), err)
	}
	if succ.ID.Equal(n.rt.Self().ID) {
		return n.RemoveLocal(id)
	}
	if err := n.cp.RemoveRemote(ctx, succ.Addr, id); err != nil {
		n.lgr.Error("Delete: failed to delete resource at successor",
			logger.F("key", id.ToHexString(true)), logger.FNode("successor", *succ), logger.F("err", err))
		return fmt.Errorf("delete: failed to delete resource at successor %s: %w", succ.Addr, err)
	}
	return nil
}

// checkOwnership verifies H(key) ∈ (predecessor, self] before a local
// store/retrieve/remove, per spec.md §4.5.6. A node with no predecessor
// yet considers itself responsible for the whole ring, matching the
// single-node bootstrap convention (routingtable.InitSingleNode sets
// predecessor to self).
func (n *Node) checkOwnership(key domain.ID) error {
	self := n.rt.Self()
	pred := n.rt.GetPredecessor()
	lower := self.ID
	if pred != nil {
		lower = pred.ID
	}
	if !key.Between(lower, self.ID) {
		return status.Error(codes.Internal, "key outside local ownership arc (routing bug)")
	}
	return nil
}

// StoreLocal stores resource in this node's own storage, after verifying
// this node is actually responsible for its key. Invoked both by the
// unary Store RPC handler and by Put when the lookup resolves to self.
func (n *Node) StoreLocal(ctx context.Context, resource domain.Resource) error {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return err
	}
	if err := n.checkOwnership(resource.Key); err != nil {
		return err
	}
	n.s.Put(resource)
	return nil
}

// RetrieveLocal fetches a resource from this node's own storage, after
// verifying ownership. TTL expiry is handled inline by storage.Get, which
// distinguishes ErrResourceExpired from ErrResourceNotFound per spec.md
// §4.2.
func (n *Node) RetrieveLocal(id domain.ID) (domain.Resource, error) {
	if err := n.checkOwnership(id); err != nil {
		return domain.Resource{}, err
	}
	return n.s.Get(id)
}

// RemoveLocal deletes a resource from this node's own storage, after
// verifying ownership.
func (n *Node) RemoveLocal(id domain.ID) error {
	if err := n.checkOwnership(id); err != nil {
		return err
	}
	return n.s.Delete(id)
}

// GetAllResourceStored returns a snapshot of every resource currently held
// locally, used by graceful-shutdown handoff and the dev_mode
// introspection RPCs.
func (n *Node) GetAllResourceStored() []domain.Resource {
	return n.s.All()
}

// InsertFromHandoff inserts a resource streamed in via the handoff RPC
// (spec.md §4.5.5), bypassing the ownership check performed by StoreLocal:
// a handoff sender has already decided the receiver is responsible.
func (n *Node) InsertFromHandoff(resource domain.Resource) {
	n.s.Put(resource)
}

// LookUp resolves the node responsible for id, without touching storage.
func (n *Node) LookUp(ctx context.Context, id domain.ID) (*domain.Node, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	succ, err := n.FindSuccessor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup: failed to find successor for key %s: %w", id.ToHexString(true), err)
	}
	return succ, nil
}

// HandleLeave processes a graceful leave notification (spec.md §4.8): if
// the departing node is our current predecessor, clear the pointer so
// stabilize re-establishes it rather than keep pointing at a node that is
// about to disappear.
func (n *Node) HandleLeave(leaving *domain.Node) {
	pred := n.rt.GetPredecessor()
	if leaving == nil || pred == nil || !leaving.ID.Equal(pred.ID) {
		n.lgr.Debug("HandleLeave: ignoring leave for nil or non-predecessor node",
			logger.FNode("leaving", safeNode(leaving)))
		return
	}
	n.rt.SetPredecessor(nil)
	n.lgr.Info("HandleLeave: predecessor departed gracefully", logger.FNode("leaving", *leaving))
}
