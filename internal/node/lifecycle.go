package node

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ChordDHT/internal/ctxutil"
	"ChordDHT/internal/domain"
	"ChordDHT/internal/logger"
)

// peerConnectAttempts and peerConnectDelay bound how long Join waits for a
// bootstrap peer to become reachable before giving up on it (spec.md §5,
// "connection establishment has bounded retry").
const (
	peerConnectAttempts = 15
	peerConnectDelay    = 100 * time.Millisecond
)

// CreateNewDHT bootstraps a brand-new, single-node ring: the first
// successor, the predecessor, and every finger are set to point back at
// this node (spec.md §4.7, "without peer").
func (n *Node) CreateNewDHT() {
	n.rt.InitSingleNode()
	n.lgr.Info("CreateNewDHT: bootstrapped a new single-node ring", logger.FNode("self", *n.rt.Self()))
}

// Join attaches this node to an existing ring through one of the given
// bootstrap peers (spec.md §4.7, "with peer"): connect with retry, resolve
// the immediate successor via find_successor(own_pos), seed the successor
// list from it, and point fingers[0] at it. The predecessor is left unset;
// it is established once the successor's stabilize loop calls back via
// notify.
func (n *Node) Join(ctx context.Context, peers []string) error {
	if len(peers) == 0 {
		return errors.New("join: no bootstrap peers provided")
	}

	var lastErr error
	for _, peerAddr := range peers {
		if err := n.joinVia(ctx, peerAddr); err != nil {
			lastErr = err
			n.lgr.Warn("Join: failed via peer, trying next candidate",
				logger.F("peer", peerAddr), logger.F("err", err))
			continue
		}
		n.lgr.Info("Join: joined ring", logger.F("via", peerAddr))
		return nil
	}
	return fmt.Errorf("join: failed to join via any of %d bootstrap peers: %w", len(peers), lastErr)
}

func (n *Node) joinVia(ctx context.Context, peerAddr string) error {
	self := n.rt.Self()
	if err := n.connectWithRetry(ctx, peerAddr); err != nil {
		return fmt.Errorf("peer %s unreachable: %w", peerAddr, err)
	}

	succ, err := n.cp.FindSuccessor(ctx, peerAddr, self.ID)
	if err != nil {
		return fmt.Errorf("find_successor via %s failed: %w", peerAddr, err)
	}

	remoteList, err := n.cp.GetSuccessorList(ctx, succ.Addr)
	if err != nil {
		return fmt.Errorf("get_successor_list from %s failed: %w", succ.Addr, err)
	}

	seeded := make([]*domain.Node, n.rt.SuccListSize())
	seeded[0] = succ
	for i := 1; i < len(seeded) && i-1 < len(remoteList); i++ {
		seeded[i] = remoteList[i-1]
	}
	n.rt.SetSuccessorList(seeded)
	n.rt.SetFinger(0, succ)

	n.lgr.Info("Join: seeded successor list and first finger from discovered successor",
		logger.FNode("successor", *succ))
	return nil
}

// connectWithRetry polls addr's health RPC until it answers or the retry
// budget is exhausted.
func (n *Node) connectWithRetry(ctx context.Context, addr string) error {
	var lastErr error
	for attempt := 0; attempt < peerConnectAttempts; attempt++ {
		if err := ctxutil.CheckContext(ctx); err != nil {
			return err
		}
		if err := n.cp.Health(ctx, addr); err == nil {
			return nil
		} else {
			lastErr = err
		}
		time.Sleep(peerConnectDelay)
	}
	return fmt.Errorf("unreachable after %d attempts: %w", peerConnectAttempts, lastErr)
}

// Shutdown performs the graceful-termination handoff of spec.md §4.8:
// stream every locally stored resource to the current successor, then
// notify it so it can clear this node as its predecessor immediately rather
// than wait for a failed health check. An ungraceful
// exit skips all of this; the rest of the ring recovers via successor-list
// failover instead.
func (n *Node) Shutdown(ctx context.Context) error {
	self := n.rt.Self()
	succ := n.rt.FirstSuccessor()
	if succ == nil || succ.ID.Equal(self.ID) {
		n.lgr.Info("Shutdown: no external successor to hand off to")
		return nil
	}

	items := n.s.All()
	if len(items) > 0 {
		accepted, rejected, err := n.cp.Handoff(ctx, succ.Addr, items)
		if err != nil {
			n.lgr.Warn("Shutdown: handoff stream failed, resources will be recovered via successor-list failover",
				logger.FNode("successor", *succ), logger.F("err", err))
		} else {
			n.lgr.Info("Shutdown: handed off resources to successor",
				logger.FNode("successor", *succ), logger.F("accepted", accepted), logger.F("rejected", rejected))
		}
	}

	if err := n.cp.Leave(ctx, succ.Addr, self); err != nil {
		n.lgr.Warn("Shutdown: failed to notify successor of graceful leave",
			logger.FNode("successor", *succ), logger.F("err", err))
	}
	return nil
}
