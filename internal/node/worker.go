package node

import (
	"context"
	"errors"
	"time"

	"ChordDHT/internal/client"
	"ChordDHT/internal/domain"
	"ChordDHT/internal/logger"
)

// StartStabilizers launches the three periodic maintenance loops spec.md §5
// names: fix_fingers, stabilize, and a health ping on the current successor.
// Each loop is single-flighted by construction — a tick's body runs to
// completion in its own goroutine before the next ticker fire is handled —
// and all three stop when ctx is canceled.
func (n *Node) StartStabilizers(ctx context.Context, stabilizeInterval, fixFingersInterval, healthInterval time.Duration) {
	go func() {
		ticker := time.NewTicker(fixFingersInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				n.lgr.Info("fix_fingers stopped")
				return
			case <-ticker.C:
				n.fixFingers(ctx)
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(stabilizeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				n.lgr.Info("stabilize stopped")
				return
			case <-ticker.C:
				n.stabilize(ctx)
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(healthInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				n.lgr.Info("health check stopped")
				return
			case <-ticker.C:
				n.checkSuccessorHealth(ctx)
			}
		}
	}()
}

// fixFingers implements spec.md §4.5.2: round-robin repair of one finger
// entry per tick. If the refreshed index is 1, successor_list[0] is
// refreshed too, since fingers[1] and the immediate successor target
// adjacent ring positions.
func (n *Node) fixFingers(ctx context.Context) {
	i := n.rt.NextFixIndex()
	target := n.rt.FingerTarget(i)

	succ, err := n.FindSuccessor(ctx, target)
	if err != nil {
		n.lgr.Warn("fixFingers: find_successor failed, retrying next tick",
			logger.F("index", i), logger.F("err", err))
		return
	}
	n.rt.SetFinger(i, succ)
	if i == 1 {
		n.rt.SetSuccessor(0, succ)
	}
	n.lgr.Debug("fixFingers: finger refreshed", logger.F("index", i), logger.FNode("node", *succ))
}

// firstReachableSuccessor walks the successor list in slot order, returning
// the first entry that answers a health check (a self-pointing entry is
// always considered reachable, since it requires no network round trip).
// ok is false only when every successor has failed, meaning the routing
// table is degraded enough that find_successor calls will start surfacing
// unavailable.
func (n *Node) firstReachableSuccessor(ctx context.Context) (node *domain.Node, index int, ok bool) {
	self := n.rt.Self()
	for i := 0; i < n.rt.SuccListSize(); i++ {
		s := n.rt.GetSuccessor(i)
		if s == nil {
			continue
		}
		if s.ID.Equal(self.ID) || n.cp.Health(ctx, s.Addr) == nil {
			return s, i, true
		}
	}
	return nil, -1, false
}

// stabilize implements spec.md §4.5.3. It promotes the first reachable
// successor to slot 0 if earlier slots have failed, asks it for its own
// predecessor to discover a closer successor, refreshes the rest of the
// successor list by pulling the chosen successor's own list, and finally
// notifies that successor of this node's existence, inserting every
// resource the response stream hands back.
func (n *Node) stabilize(ctx context.Context) {
	self := n.rt.Self()

	succ, idx, ok := n.firstReachableSuccessor(ctx)
	if !ok {
		n.lgr.Error("stabilize: no reachable successor, routing table degraded")
		return
	}
	if idx > 0 {
		n.rt.PromoteCandidate(idx)
		n.rt.SetFinger(0, succ)
		n.lgr.Warn("stabilize: promoted reachable successor after earlier failures",
			logger.F("fromIndex", idx), logger.FNode("successor", *succ))
	}

	if succ.ID.Equal(self.ID) {
		// Single-node ring: nothing to stabilize against.
		return
	}

	x, err := n.cp.GetPredecessor(ctx, succ.Addr)
	switch {
	case err != nil && !errors.Is(err, client.ErrNoPredecessor):
		n.lgr.Warn("stabilize: get_predecessor failed", logger.FNode("successor", *succ), logger.F("err", err))
	case err == nil && x != nil && domain.IsBetween(x.ID, self.ID, succ.ID, false, false):
		n.rt.SetSuccessor(0, x)
		n.rt.SetFinger(0, x)
		n.lgr.Info("stabilize: adopted closer successor", logger.FNode("successor", *x))
		succ = x
	}

	if remote, err := n.cp.GetSuccessorList(ctx, succ.Addr); err != nil {
		n.lgr.Warn("stabilize: get_successor_list failed", logger.FNode("successor", *succ), logger.F("err", err))
	} else {
		newList := make([]*domain.Node, n.rt.SuccListSize())
		newList[0] = succ
		for i := 1; i < len(newList) && i-1 < len(remote); i++ {
			newList[i] = remote[i-1]
		}
		n.rt.SetSuccessorList(newList)
	}

	adopted, err := n.cp.Notify(ctx, succ.Addr, self, n.powDifficulty, func(res domain.Resource) error {
		n.InsertFromHandoff(res)
		return nil
	})
	if err != nil {
		n.lgr.Warn("stabilize: notify failed", logger.FNode("successor", *succ), logger.F("err", err))
		return
	}
	n.lgr.Debug("stabilize: notified successor", logger.FNode("successor", *succ), logger.F("adopted", adopted))
}

// checkSuccessorHealth pings the current successor and, on failure, fails
// over to the next reachable entry in the successor list (spec.md §4.8,
// "ungraceful exit is handled by the rest of the cluster via successor-list
// failover").
func (n *Node) checkSuccessorHealth(ctx context.Context) {
	self := n.rt.Self()
	succ := n.rt.FirstSuccessor()
	if succ == nil || succ.ID.Equal(self.ID) {
		return
	}
	if err := n.cp.Health(ctx, succ.Addr); err == nil {
		return
	}

	n.lgr.Warn("checkSuccessorHealth: successor unreachable, failing over", logger.FNode("successor", *succ))
	next, idx, ok := n.firstReachableSuccessor(ctx)
	if !ok {
		n.lgr.Error("checkSuccessorHealth: no reachable successor left, routing table degraded")
		return
	}
	if idx > 0 {
		n.rt.PromoteCandidate(idx)
	}
	n.rt.SetFinger(0, next)
	n.lgr.Info("checkSuccessorHealth: promoted new successor", logger.FNode("successor", *next))
}
