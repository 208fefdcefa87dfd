package rpcpb

import (
	"context"

	"google.golang.org/grpc"
)

// ClientAPIClient is the typed client stub for ClientAPIServer.
type ClientAPIClient interface {
	Put(ctx context.Context, in *StoreRequest, opts ...grpc.CallOption) (*StoreResponse, error)
	Get(ctx context.Context, in *RetrieveRequest, opts ...grpc.CallOption) (*RetrieveResponse, error)
	Delete(ctx context.Context, in *RemoveRequest, opts ...grpc.CallOption) (*RemoveResponse, error)
}

type clientAPIClient struct {
	cc grpc.ClientConnInterface
}

func NewClientAPIClient(cc grpc.ClientConnInterface) ClientAPIClient {
	return &clientAPIClient{cc: cc}
}

func (c *clientAPIClient) Put(ctx context.Context, in *StoreRequest, opts ...grpc.CallOption) (*StoreResponse, error) {
	out := new(StoreResponse)
	if err := c.cc.Invoke(ctx, "/chorddht.ClientAPI/Put", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clientAPIClient) Get(ctx context.Context, in *RetrieveRequest, opts ...grpc.CallOption) (*RetrieveResponse, error) {
	out := new(RetrieveResponse)
	if err := c.cc.Invoke(ctx, "/chorddht.ClientAPI/Get", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clientAPIClient) Delete(ctx context.Context, in *RemoveRequest, opts ...grpc.CallOption) (*RemoveResponse, error) {
	out := new(RemoveResponse)
	if err := c.cc.Invoke(ctx, "/chorddht.ClientAPI/Delete", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
