package server

import (
	"context"
	"errors"
	"io"

	"ChordDHT/internal/ctxutil"
	"ChordDHT/internal/domain"
	"ChordDHT/internal/node"
	"ChordDHT/internal/pow"
	"ChordDHT/internal/rpcpb"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// dhtService implements rpcpb.DHTServer, the node-to-node surface: routing,
// stabilization support, and local storage access for a single remote hop.
type dhtService struct {
	rpcpb.UnimplementedDHTServer
	node    *node.Node
	devMode bool
}

// NewDHTService creates a new DHT service bound to the given node.
func NewDHTService(n *node.Node, devMode bool) rpcpb.DHTServer {
	return &dhtService{node: n, devMode: devMode}
}

func (s *dhtService) FindSuccessor(ctx context.Context, req *rpcpb.FindSuccessorRequest) (*rpcpb.FindSuccessorResponse, error) {
	if req == nil || len(req.TargetId) == 0 {
		return nil, status.Error(codes.InvalidArgument, "missing target_id")
	}
	if err := s.node.IsValidID(req.TargetId); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid target_id")
	}
	succ, err := s.node.FindSuccessor(ctx, domain.ID(req.TargetId))
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpcpb.FindSuccessorResponse{Node: rpcpb.NodeToProto(succ)}, nil
}

func (s *dhtService) GetPredecessor(ctx context.Context, _ *rpcpb.Empty) (*rpcpb.Node, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	pred := s.node.Predecessor()
	if pred == nil {
		return nil, status.Error(codes.NotFound, "no predecessor set")
	}
	return rpcpb.NodeToProto(pred), nil
}

func (s *dhtService) GetSuccessorList(ctx context.Context, _ *rpcpb.Empty) (*rpcpb.SuccessorList, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	succList := s.node.SuccessorList()
	protoList := make([]*rpcpb.Node, 0, len(succList))
	for _, n := range succList {
		if n != nil {
			protoList = append(protoList, rpcpb.NodeToProto(n))
		}
	}
	return &rpcpb.SuccessorList{Successors: protoList}, nil
}

func (s *dhtService) ClosestPrecedingFinger(ctx context.Context, req *rpcpb.ClosestPrecedingFingerRequest) (*rpcpb.ClosestPrecedingFingerResponse, error) {
	if req == nil || len(req.TargetId) == 0 {
		return nil, status.Error(codes.InvalidArgument, "missing target_id")
	}
	f, err := s.node.ClosestPrecedingFinger(ctx, domain.ID(req.TargetId))
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpcpb.ClosestPrecedingFingerResponse{Node: rpcpb.NodeToProto(f)}, nil
}

// Notify is server-streaming: the handler decides whether to adopt the
// candidate, then streams whatever resources the candidate now owns
// (spec.md §4.5.4) before closing the stream.
func (s *dhtService) Notify(req *rpcpb.NotifyRequest, stream rpcpb.DHT_NotifyServer) error {
	if req == nil || req.Candidate == nil {
		return status.Error(codes.InvalidArgument, "missing candidate")
	}
	candidate := rpcpb.NodeFromProto(req.Candidate)
	tok := pow.Token{Nonce: req.PowNonce, IssuedAtUnix: req.PowIssuedAt}

	adopted, err := s.node.Notify(stream.Context(), candidate, tok, func(res domain.Resource) error {
		return stream.Send(&rpcpb.NotifyEvent{
			Adopted: true,
			Item: &rpcpb.HandoffItem{
				Key:           []byte(res.Key),
				RawKey:        res.RawKey,
				Value:         res.Value,
				ExpiresAtUnix: res.ExpiresAtUnix,
			},
		})
	})
	if err != nil {
		return toStatus(err)
	}
	return stream.Send(&rpcpb.NotifyEvent{Adopted: adopted, Done: true})
}

func (s *dhtService) Health(ctx context.Context, _ *rpcpb.Empty) (*rpcpb.Empty, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	return &rpcpb.Empty{}, nil
}

func (s *dhtService) Store(ctx context.Context, req *rpcpb.StoreRequest) (*rpcpb.StoreResponse, error) {
	if req == nil || len(req.Key) == 0 {
		return nil, status.Error(codes.InvalidArgument, "missing key")
	}
	res := domain.Resource{Key: domain.ID(req.Key), RawKey: req.RawKey, Value: req.Value, ExpiresAtUnix: req.TtlUnix}
	if err := s.node.StoreLocal(ctx, res); err != nil {
		return nil, toStatus(err)
	}
	return &rpcpb.StoreResponse{}, nil
}

// Retrieve reports NotFound/Expired in-band via RetrieveResponse.Status
// (spec.md §7), never as a gRPC transport error — only an actual routing or
// ownership fault surfaces as one.
func (s *dhtService) Retrieve(ctx context.Context, req *rpcpb.RetrieveRequest) (*rpcpb.RetrieveResponse, error) {
	if req == nil || len(req.Key) == 0 {
		return nil, status.Error(codes.InvalidArgument, "missing key")
	}
	res, err := s.node.RetrieveLocal(domain.ID(req.Key))
	switch {
	case err == nil:
		return &rpcpb.RetrieveResponse{Value: res.Value, TtlUnix: res.ExpiresAtUnix, Status: rpcpb.StatusOK}, nil
	case errors.Is(err, domain.ErrResourceNotFound):
		return &rpcpb.RetrieveResponse{Status: rpcpb.StatusNotFound}, nil
	case errors.Is(err, domain.ErrResourceExpired):
		return &rpcpb.RetrieveResponse{Value: res.Value, TtlUnix: res.ExpiresAtUnix, Status: rpcpb.StatusExpired}, nil
	default:
		return nil, toStatus(err)
	}
}

func (s *dhtService) Remove(ctx context.Context, req *rpcpb.RemoveRequest) (*rpcpb.RemoveResponse, error) {
	if req == nil || len(req.Key) == 0 {
		return nil, status.Error(codes.InvalidArgument, "missing key")
	}
	if err := s.node.RemoveLocal(domain.ID(req.Key)); err != nil {
		return nil, toStatus(err)
	}
	return &rpcpb.RemoveResponse{}, nil
}

// Handoff is client-streaming: the departing owner streams every pair it is
// shedding (graceful shutdown, spec.md §4.8), and this node inserts
// each one directly into local storage without the ownership check Store
// performs, since a handoff sender is trusted to have already routed
// correctly.
func (s *dhtService) Handoff(stream rpcpb.DHT_HandoffServer) error {
	var accepted, rejected int32
	for {
		item, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		s.node.InsertFromHandoff(domain.Resource{
			Key:           domain.ID(item.Key),
			RawKey:        item.RawKey,
			Value:         item.Value,
			ExpiresAtUnix: item.ExpiresAtUnix,
		})
		accepted++
	}
	return stream.SendAndClose(&rpcpb.HandoffSummary{Accepted: accepted, Rejected: rejected})
}

func (s *dhtService) Leave(ctx context.Context, req *rpcpb.NotifyRequest) (*rpcpb.Empty, error) {
	if req == nil || req.Candidate == nil {
		return nil, status.Error(codes.InvalidArgument, "missing node")
	}
	s.node.HandleLeave(rpcpb.NodeFromProto(req.Candidate))
	return &rpcpb.Empty{}, nil
}

func (s *dhtService) GetNodeSummary(ctx context.Context, _ *rpcpb.Empty) (*rpcpb.NodeSummaryResponse, error) {
	if !s.devMode {
		return nil, status.Error(codes.Unimplemented, "dev_mode is disabled")
	}
	fingers := s.node.Fingers()
	protoFingers := make([]*rpcpb.FingerSummary, len(fingers))
	for i, f := range fingers {
		protoFingers[i] = &rpcpb.FingerSummary{
			Index:  int32(f.Index),
			Target: []byte(f.Target),
			Node:   rpcpb.NodeToProto(f.Node),
		}
	}
	succList := s.node.SuccessorList()
	protoSucc := make([]*rpcpb.Node, 0, len(succList))
	for _, n := range succList {
		if n != nil {
			protoSucc = append(protoSucc, rpcpb.NodeToProto(n))
		}
	}
	return &rpcpb.NodeSummaryResponse{
		Self:          rpcpb.NodeToProto(s.node.Self()),
		Predecessor:   rpcpb.NodeToProto(s.node.Predecessor()),
		SuccessorList: protoSucc,
		Fingers:       protoFingers,
	}, nil
}

func (s *dhtService) GetKVStoreSize(ctx context.Context, _ *rpcpb.Empty) (*rpcpb.KVStoreSizeResponse, error) {
	if !s.devMode {
		return nil, status.Error(codes.Unimplemented, "dev_mode is disabled")
	}
	return &rpcpb.KVStoreSizeResponse{Size: int32(len(s.node.GetAllResourceStored()))}, nil
}

func (s *dhtService) GetKVStoreData(ctx context.Context, _ *rpcpb.Empty) (*rpcpb.KVStoreDataResponse, error) {
	if !s.devMode {
		return nil, status.Error(codes.Unimplemented, "dev_mode is disabled")
	}
	resources := s.node.GetAllResourceStored()
	entries := make([]*rpcpb.KVEntry, len(resources))
	for i, res := range resources {
		entries[i] = &rpcpb.KVEntry{
			Key:           []byte(res.Key),
			RawKey:        res.RawKey,
			Value:         res.Value,
			ExpiresAtUnix: res.ExpiresAtUnix,
		}
	}
	return &rpcpb.KVStoreDataResponse{Entries: entries}, nil
}

// toStatus normalizes node/domain/storage sentinel errors to the gRPC
// status codes the RPC-facing surface promises callers.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, domain.ErrResourceNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrResourceExpired):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrNotResponsible):
		return status.Error(codes.Internal, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
