package client

import (
	"context"
	"io"

	"ChordDHT/internal/domain"
	"ChordDHT/internal/pow"
	"ChordDHT/internal/rpcpb"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// normalizeErr collapses a gRPC transport error into the small sentinel set
// the node package reasons about, so callers never need to inspect grpc
// status codes directly (SPEC_FULL.md §A.3).
func normalizeErr(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return ErrInternal
	}
	switch st.Code() {
	case codes.OK:
		return nil
	case codes.NotFound:
		return ErrNotFound
	case codes.DeadlineExceeded:
		return ErrDeadlineExceeded
	case codes.Unavailable, codes.Canceled:
		return ErrUnavailable
	default:
		return ErrInternal
	}
}

func (p *Pool) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.failureTimeout)
}

// FindSuccessor asks the peer at addr which node it believes succeeds target.
func (p *Pool) FindSuccessor(ctx context.Context, addr string, target domain.ID) (*domain.Node, error) {
	dht, _, err := p.AddRef(addr)
	if err != nil {
		return nil, err
	}
	defer p.Release(addr)

	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	resp, err := dht.FindSuccessor(ctx, &rpcpb.FindSuccessorRequest{TargetId: []byte(target)})
	if err != nil {
		return nil, normalizeErr(err)
	}
	return rpcpb.NodeFromProto(resp.Node), nil
}

// ClosestPrecedingFinger asks the peer at addr for its own best routing hop
// toward target.
func (p *Pool) ClosestPrecedingFinger(ctx context.Context, addr string, target domain.ID) (*domain.Node, error) {
	dht, _, err := p.AddRef(addr)
	if err != nil {
		return nil, err
	}
	defer p.Release(addr)

	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	resp, err := dht.ClosestPrecedingFinger(ctx, &rpcpb.ClosestPrecedingFingerRequest{TargetId: []byte(target)})
	if err != nil {
		return nil, normalizeErr(err)
	}
	return rpcpb.NodeFromProto(resp.Node), nil
}

// GetPredecessor returns ErrNoPredecessor, not a transport error, when the
// peer legitimately has none yet.
func (p *Pool) GetPredecessor(ctx context.Context, addr string) (*domain.Node, error) {
	dht, _, err := p.AddRef(addr)
	if err != nil {
		return nil, err
	}
	defer p.Release(addr)

	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	resp, err := dht.GetPredecessor(ctx, &rpcpb.Empty{})
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
			return nil, ErrNoPredecessor
		}
		return nil, normalizeErr(err)
	}
	return rpcpb.NodeFromProto(resp), nil
}

// GetSuccessorList returns the peer's successor list, nearest successor
// first; the peer itself is not prepended.
func (p *Pool) GetSuccessorList(ctx context.Context, addr string) ([]*domain.Node, error) {
	dht, _, err := p.AddRef(addr)
	if err != nil {
		return nil, err
	}
	defer p.Release(addr)

	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	resp, err := dht.GetSuccessorList(ctx, &rpcpb.Empty{})
	if err != nil {
		return nil, normalizeErr(err)
	}
	out := make([]*domain.Node, 0, len(resp.Successors))
	for _, n := range resp.Successors {
		out = append(out, rpcpb.NodeFromProto(n))
	}
	return out, nil
}

// Notify announces self as a candidate predecessor to the peer at addr,
// attaching a freshly mined proof-of-work token (spec.md §4.6), and drains
// the response stream. onItem is invoked once per handed-off resource the
// callee streams back after adopting self as its new predecessor; it is
// never called if the callee does not adopt.
func (p *Pool) Notify(ctx context.Context, addr string, self *domain.Node, powDifficulty int, onItem func(domain.Resource) error) (adopted bool, err error) {
	dht, _, err := p.AddRef(addr)
	if err != nil {
		return false, err
	}
	defer p.Release(addr)

	tok := pow.Generate(powDifficulty)
	stream, err := dht.Notify(ctx, &rpcpb.NotifyRequest{
		Candidate:   rpcpb.NodeToProto(self),
		PowNonce:    tok.Nonce,
		PowIssuedAt: tok.IssuedAtUnix,
	})
	if err != nil {
		return false, normalizeErr(err)
	}
	for {
		ev, recvErr := stream.Recv()
		if recvErr == io.EOF {
			return adopted, nil
		}
		if recvErr != nil {
			return adopted, normalizeErr(recvErr)
		}
		adopted = ev.Adopted
		if ev.Item != nil && onItem != nil {
			if cbErr := onItem(resourceFromHandoffItem(ev.Item)); cbErr != nil {
				return adopted, cbErr
			}
		}
		if ev.Done {
			return adopted, nil
		}
	}
}

func resourceFromHandoffItem(item *rpcpb.HandoffItem) domain.Resource {
	return domain.Resource{
		Key:           domain.ID(item.Key),
		RawKey:        item.RawKey,
		Value:         item.Value,
		ExpiresAtUnix: item.ExpiresAtUnix,
	}
}

// Health checks liveness of the peer at addr.
func (p *Pool) Health(ctx context.Context, addr string) error {
	dht, _, err := p.AddRef(addr)
	if err != nil {
		return err
	}
	defer p.Release(addr)

	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	_, err = dht.Health(ctx, &rpcpb.Empty{})
	return normalizeErr(err)
}

// StoreRemote stores a single key-value pair on the peer at addr via the
// unary DHT-to-DHT Store RPC (used by Put to place a single resource on the
// node responsible for its key, as opposed to the bulk Handoff stream below).
func (p *Pool) StoreRemote(ctx context.Context, addr string, res domain.Resource) error {
	dht, _, err := p.AddRef(addr)
	if err != nil {
		return err
	}
	defer p.Release(addr)

	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	_, err = dht.Store(ctx, &rpcpb.StoreRequest{
		Key:     []byte(res.Key),
		RawKey:  res.RawKey,
		Value:   res.Value,
		TtlUnix: res.ExpiresAtUnix,
	})
	return normalizeErr(err)
}

// statusErr maps a Retrieve/Get in-band Status (spec.md §7) to the sentinel
// a node/cmd caller matches on with errors.Is; OK maps to nil.
func statusErr(st rpcpb.Status) error {
	switch st {
	case rpcpb.StatusNotFound:
		return ErrNotFound
	case rpcpb.StatusExpired:
		return ErrExpired
	default:
		return nil
	}
}

// RetrieveRemote fetches a single key from the peer at addr. NotFound and
// Expired are reported via ErrNotFound/ErrExpired, not a transport error —
// the peer answers both in-band on RetrieveResponse.Status.
func (p *Pool) RetrieveRemote(ctx context.Context, addr string, key domain.ID) ([]byte, int64, error) {
	dht, _, err := p.AddRef(addr)
	if err != nil {
		return nil, 0, err
	}
	defer p.Release(addr)

	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	resp, err := dht.Retrieve(ctx, &rpcpb.RetrieveRequest{Key: []byte(key)})
	if err != nil {
		return nil, 0, normalizeErr(err)
	}
	return resp.Value, resp.TtlUnix, statusErr(resp.Status)
}

// RemoveRemote deletes a single key on the peer at addr.
func (p *Pool) RemoveRemote(ctx context.Context, addr string, key domain.ID) error {
	dht, _, err := p.AddRef(addr)
	if err != nil {
		return err
	}
	defer p.Release(addr)

	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	_, err = dht.Remove(ctx, &rpcpb.RemoveRequest{Key: []byte(key)})
	return normalizeErr(err)
}

// Handoff bulk-transfers resources to the peer at addr, the client side of
// the §4.8 graceful-shutdown transfer. It reports how many of the sent
// items the callee accepted and rejected; the DHT service inserts every
// item it receives without an ownership check, so its rejected count is
// always 0.
func (p *Pool) Handoff(ctx context.Context, addr string, items []domain.Resource) (accepted, rejected int32, err error) {
	dht, _, err := p.AddRef(addr)
	if err != nil {
		return 0, 0, err
	}
	defer p.Release(addr)

	stream, err := dht.Handoff(ctx)
	if err != nil {
		return 0, 0, normalizeErr(err)
	}
	for _, res := range items {
		item := &rpcpb.HandoffItem{
			Key:           []byte(res.Key),
			RawKey:        res.RawKey,
			Value:         res.Value,
			ExpiresAtUnix: res.ExpiresAtUnix,
		}
		if sendErr := stream.Send(item); sendErr != nil {
			return 0, 0, normalizeErr(sendErr)
		}
	}
	summary, err := stream.CloseAndRecv()
	if err != nil {
		return 0, 0, normalizeErr(err)
	}
	return summary.Accepted, summary.Rejected, nil
}

// Leave notifies the peer at addr that self is departing the ring
// gracefully, so the peer can clear it as its predecessor immediately instead
// of waiting for a failed ping. Fingers and successor lists that point at
// the departing node are not touched by this call.
func (p *Pool) Leave(ctx context.Context, addr string, self *domain.Node) error {
	dht, _, err := p.AddRef(addr)
	if err != nil {
		return err
	}
	defer p.Release(addr)

	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	_, err = dht.Leave(ctx, &rpcpb.NotifyRequest{Candidate: rpcpb.NodeToProto(self)})
	return normalizeErr(err)
}

// Put/Get/Delete talk to the external ClientAPI surface on addr (which may
// not be the node ultimately responsible for the key — the node serving the
// call is expected to route internally via find_successor first).

func (p *Pool) Put(ctx context.Context, addr string, res domain.Resource) error {
	_, capi, err := p.AddRef(addr)
	if err != nil {
		return err
	}
	defer p.Release(addr)

	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	_, err = capi.Put(ctx, &rpcpb.StoreRequest{
		Key:     []byte(res.Key),
		RawKey:  res.RawKey,
		Value:   res.Value,
		TtlUnix: res.ExpiresAtUnix,
	})
	return normalizeErr(err)
}

// Get reports NotFound/Expired via ErrNotFound/ErrExpired, mirroring
// RetrieveRemote — the ClientAPI surface answers both in-band, never as a
// transport error (spec.md §4.5/§7).
func (p *Pool) Get(ctx context.Context, addr string, key domain.ID) ([]byte, int64, error) {
	_, capi, err := p.AddRef(addr)
	if err != nil {
		return nil, 0, err
	}
	defer p.Release(addr)

	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	resp, err := capi.Get(ctx, &rpcpb.RetrieveRequest{Key: []byte(key)})
	if err != nil {
		return nil, 0, normalizeErr(err)
	}
	return resp.Value, resp.TtlUnix, statusErr(resp.Status)
}

func (p *Pool) Delete(ctx context.Context, addr string, key domain.ID) error {
	_, capi, err := p.AddRef(addr)
	if err != nil {
		return err
	}
	defer p.Release(addr)

	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	_, err = capi.Delete(ctx, &rpcpb.RemoveRequest{Key: []byte(key)})
	return normalizeErr(err)
}

// GetNodeSummary/GetKVStoreSize/GetKVStoreData talk to the dev-mode
// introspection RPCs (SPEC_FULL.md §C.4) a cluster validator or an
// interactive shell uses to inspect a node's routing state; the peer
// returns codes.Unimplemented when it was not started with dev_mode set.

func (p *Pool) GetNodeSummary(ctx context.Context, addr string) (*rpcpb.NodeSummaryResponse, error) {
	dht, _, err := p.AddRef(addr)
	if err != nil {
		return nil, err
	}
	defer p.Release(addr)

	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	resp, err := dht.GetNodeSummary(ctx, &rpcpb.Empty{})
	if err != nil {
		return nil, normalizeErr(err)
	}
	return resp, nil
}

func (p *Pool) GetKVStoreSize(ctx context.Context, addr string) (int32, error) {
	dht, _, err := p.AddRef(addr)
	if err != nil {
		return 0, err
	}
	defer p.Release(addr)

	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	resp, err := dht.GetKVStoreSize(ctx, &rpcpb.Empty{})
	if err != nil {
		return 0, normalizeErr(err)
	}
	return resp.Size, nil
}

func (p *Pool) GetKVStoreData(ctx context.Context, addr string) ([]*rpcpb.KVEntry, error) {
	dht, _, err := p.AddRef(addr)
	if err != nil {
		return nil, err
	}
	defer p.Release(addr)

	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	resp, err := dht.GetKVStoreData(ctx, &rpcpb.Empty{})
	if err != nil {
		return nil, normalizeErr(err)
	}
	return resp.Entries, nil
}
