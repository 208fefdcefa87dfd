package rpcpb

import (
	"context"

	"google.golang.org/grpc"
)

// DHTClient is the typed client stub for DHTServer, the hand-written
// equivalent of protoc-gen-go-grpc's generated client interface.
type DHTClient interface {
	FindSuccessor(ctx context.Context, in *FindSuccessorRequest, opts ...grpc.CallOption) (*FindSuccessorResponse, error)
	GetPredecessor(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Node, error)
	GetSuccessorList(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*SuccessorList, error)
	ClosestPrecedingFinger(ctx context.Context, in *ClosestPrecedingFingerRequest, opts ...grpc.CallOption) (*ClosestPrecedingFingerResponse, error)
	Notify(ctx context.Context, in *NotifyRequest, opts ...grpc.CallOption) (DHT_NotifyClient, error)
	Health(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error)
	Store(ctx context.Context, in *StoreRequest, opts ...grpc.CallOption) (*StoreResponse, error)
	Retrieve(ctx context.Context, in *RetrieveRequest, opts ...grpc.CallOption) (*RetrieveResponse, error)
	Remove(ctx context.Context, in *RemoveRequest, opts ...grpc.CallOption) (*RemoveResponse, error)
	Handoff(ctx context.Context, opts ...grpc.CallOption) (DHT_HandoffClient, error)
	Leave(ctx context.Context, in *NotifyRequest, opts ...grpc.CallOption) (*Empty, error)
	GetNodeSummary(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*NodeSummaryResponse, error)
	GetKVStoreSize(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*KVStoreSizeResponse, error)
	GetKVStoreData(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*KVStoreDataResponse, error)
}

type dhtClient struct {
	cc grpc.ClientConnInterface
}

// NewDHTClient wraps a ClientConn with the DHTClient stub.
func NewDHTClient(cc grpc.ClientConnInterface) DHTClient {
	return &dhtClient{cc: cc}
}

func (c *dhtClient) FindSuccessor(ctx context.Context, in *FindSuccessorRequest, opts ...grpc.CallOption) (*FindSuccessorResponse, error) {
	out := new(FindSuccessorResponse)
	if err := c.cc.Invoke(ctx, "/chorddht.DHT/FindSuccessor", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) GetPredecessor(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Node, error) {
	out := new(Node)
	if err := c.cc.Invoke(ctx, "/chorddht.DHT/GetPredecessor", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) GetSuccessorList(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*SuccessorList, error) {
	out := new(SuccessorList)
	if err := c.cc.Invoke(ctx, "/chorddht.DHT/GetSuccessorList", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) ClosestPrecedingFinger(ctx context.Context, in *ClosestPrecedingFingerRequest, opts ...grpc.CallOption) (*ClosestPrecedingFingerResponse, error) {
	out := new(ClosestPrecedingFingerResponse)
	if err := c.cc.Invoke(ctx, "/chorddht.DHT/ClosestPrecedingFinger", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) Notify(ctx context.Context, in *NotifyRequest, opts ...grpc.CallOption) (DHT_NotifyClient, error) {
	stream, err := c.cc.NewStream(ctx, &DHT_ServiceDesc.Streams[0], "/chorddht.DHT/Notify", opts...)
	if err != nil {
		return nil, err
	}
	x := &dhtNotifyClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *dhtClient) Health(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, "/chorddht.DHT/Health", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) Store(ctx context.Context, in *StoreRequest, opts ...grpc.CallOption) (*StoreResponse, error) {
	out := new(StoreResponse)
	if err := c.cc.Invoke(ctx, "/chorddht.DHT/Store", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) Retrieve(ctx context.Context, in *RetrieveRequest, opts ...grpc.CallOption) (*RetrieveResponse, error) {
	out := new(RetrieveResponse)
	if err := c.cc.Invoke(ctx, "/chorddht.DHT/Retrieve", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) Remove(ctx context.Context, in *RemoveRequest, opts ...grpc.CallOption) (*RemoveResponse, error) {
	out := new(RemoveResponse)
	if err := c.cc.Invoke(ctx, "/chorddht.DHT/Remove", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) Handoff(ctx context.Context, opts ...grpc.CallOption) (DHT_HandoffClient, error) {
	stream, err := c.cc.NewStream(ctx, &DHT_ServiceDesc.Streams[1], "/chorddht.DHT/Handoff", opts...)
	if err != nil {
		return nil, err
	}
	return &dhtHandoffClient{stream}, nil
}

func (c *dhtClient) Leave(ctx context.Context, in *NotifyRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, "/chorddht.DHT/Leave", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) GetNodeSummary(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*NodeSummaryResponse, error) {
	out := new(NodeSummaryResponse)
	if err := c.cc.Invoke(ctx, "/chorddht.DHT/GetNodeSummary", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) GetKVStoreSize(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*KVStoreSizeResponse, error) {
	out := new(KVStoreSizeResponse)
	if err := c.cc.Invoke(ctx, "/chorddht.DHT/GetKVStoreSize", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) GetKVStoreData(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*KVStoreDataResponse, error) {
	out := new(KVStoreDataResponse)
	if err := c.cc.Invoke(ctx, "/chorddht.DHT/GetKVStoreData", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
