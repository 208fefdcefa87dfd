package server

import (
	"context"
	"errors"

	"ChordDHT/internal/domain"
	"ChordDHT/internal/node"
	"ChordDHT/internal/rpcpb"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// clientService implements rpcpb.ClientAPIServer, the external, application-
// facing KV surface (spec.md §4.5.6): any node in the ring accepts a
// put/get/delete and routes it internally via find_successor to whichever
// node currently owns the key.
type clientService struct {
	rpcpb.UnimplementedClientAPIServer
	node *node.Node
}

func NewClientService(n *node.Node) rpcpb.ClientAPIServer {
	return &clientService{node: n}
}

func (s *clientService) Put(ctx context.Context, req *rpcpb.StoreRequest) (*rpcpb.StoreResponse, error) {
	if req == nil || req.RawKey == "" {
		return nil, status.Error(codes.InvalidArgument, "missing key")
	}
	key := s.node.Space().NewIdFromString(req.RawKey)
	res := domain.Resource{Key: key, RawKey: req.RawKey, Value: req.Value, ExpiresAtUnix: req.TtlUnix}
	if err := s.node.Put(ctx, res); err != nil {
		return nil, toStatus(err)
	}
	return &rpcpb.StoreResponse{}, nil
}

// Get reports NotFound/Expired in-band via RetrieveResponse.Status (spec.md
// §4.5/§7): both are ordinary outcomes of a lookup, not transport errors.
func (s *clientService) Get(ctx context.Context, req *rpcpb.RetrieveRequest) (*rpcpb.RetrieveResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "missing request")
	}
	res, err := s.node.Get(ctx, domain.ID(req.Key))
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

func (s *clientService) Delete(ctx context.Context, req *rpcpb.RemoveRequest) (*rpcpb.RemoveResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "missing request")
	}
	if err := s.node.Delete(ctx, domain.ID(req.Key)); err != nil {
		return nil, toStatus(err)
	}
	return &rpcpb.RemoveResponse{}, nil
}
