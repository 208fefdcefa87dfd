package rpcpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// Empty is google.golang.org/protobuf's well-known empty message, reused
// here for every argument-less RPC instead of a local stand-in: it gob-encodes
// fine since it carries no exported fields, and it keeps the protobuf runtime
// a genuine dependency of this package rather than a vestigial one.
type Empty = emptypb.Empty

// DHTServer is the node-to-node service: routing, stabilization support,
// and local storage access for a single remote hop. UnimplementedDHTServer
// can be embedded by implementations for forward compatibility.
type DHTServer interface {
	FindSuccessor(context.Context, *FindSuccessorRequest) (*FindSuccessorResponse, error)
	GetPredecessor(context.Context, *Empty) (*Node, error)
	GetSuccessorList(context.Context, *Empty) (*SuccessorList, error)
	ClosestPrecedingFinger(context.Context, *ClosestPrecedingFingerRequest) (*ClosestPrecedingFingerResponse, error)
	Notify(*NotifyRequest, DHT_NotifyServer) error
	Health(context.Context, *Empty) (*Empty, error)
	Store(context.Context, *StoreRequest) (*StoreResponse, error)
	Retrieve(context.Context, *RetrieveRequest) (*RetrieveResponse, error)
	Remove(context.Context, *RemoveRequest) (*RemoveResponse, error)
	Handoff(DHT_HandoffServer) error
	Leave(context.Context, *NotifyRequest) (*Empty, error)
	GetNodeSummary(context.Context, *Empty) (*NodeSummaryResponse, error)
	GetKVStoreSize(context.Context, *Empty) (*KVStoreSizeResponse, error)
	GetKVStoreData(context.Context, *Empty) (*KVStoreDataResponse, error)
}

// UnimplementedDHTServer can be embedded to satisfy DHTServer while only
// overriding the methods actually needed, exactly like protoc-gen-go-grpc's
// generated "Unimplemented*Server" helpers.
type UnimplementedDHTServer struct{}

func (UnimplementedDHTServer) FindSuccessor(context.Context, *FindSuccessorRequest) (*FindSuccessorResponse, error) {
	return nil, errUnimplemented("FindSuccessor")
}
func (UnimplementedDHTServer) GetPredecessor(context.Context, *Empty) (*Node, error) {
	return nil, errUnimplemented("GetPredecessor")
}
func (UnimplementedDHTServer) GetSuccessorList(context.Context, *Empty) (*SuccessorList, error) {
	return nil, errUnimplemented("GetSuccessorList")
}
func (UnimplementedDHTServer) ClosestPrecedingFinger(context.Context, *ClosestPrecedingFingerRequest) (*ClosestPrecedingFingerResponse, error) {
	return nil, errUnimplemented("ClosestPrecedingFinger")
}
func (UnimplementedDHTServer) Notify(*NotifyRequest, DHT_NotifyServer) error {
	return errUnimplemented("Notify")
}
func (UnimplementedDHTServer) Health(context.Context, *Empty) (*Empty, error) {
	return nil, errUnimplemented("Health")
}
func (UnimplementedDHTServer) Store(context.Context, *StoreRequest) (*StoreResponse, error) {
	return nil, errUnimplemented("Store")
}
func (UnimplementedDHTServer) Retrieve(context.Context, *RetrieveRequest) (*RetrieveResponse, error) {
	return nil, errUnimplemented("Retrieve")
}
func (UnimplementedDHTServer) Remove(context.Context, *RemoveRequest) (*RemoveResponse, error) {
	return nil, errUnimplemented("Remove")
}
func (UnimplementedDHTServer) Handoff(DHT_HandoffServer) error {
	return errUnimplemented("Handoff")
}
func (UnimplementedDHTServer) Leave(context.Context, *NotifyRequest) (*Empty, error) {
	return nil, errUnimplemented("Leave")
}
func (UnimplementedDHTServer) GetNodeSummary(context.Context, *Empty) (*NodeSummaryResponse, error) {
	return nil, errUnimplemented("GetNodeSummary")
}
func (UnimplementedDHTServer) GetKVStoreSize(context.Context, *Empty) (*KVStoreSizeResponse, error) {
	return nil, errUnimplemented("GetKVStoreSize")
}
func (UnimplementedDHTServer) GetKVStoreData(context.Context, *Empty) (*KVStoreDataResponse, error) {
	return nil, errUnimplemented("GetKVStoreData")
}

// --- server-streaming Notify ---

// DHT_NotifyServer is the server-side handle for the Notify response
// stream.
type DHT_NotifyServer interface {
	Send(*NotifyEvent) error
	grpc.ServerStream
}

type dhtNotifyServer struct{ grpc.ServerStream }

func (s *dhtNotifyServer) Send(m *NotifyEvent) error { return s.ServerStream.SendMsg(m) }

// DHT_NotifyClient is the client-side handle for the Notify response
// stream.
type DHT_NotifyClient interface {
	Recv() (*NotifyEvent, error)
	grpc.ClientStream
}

type dhtNotifyClient struct{ grpc.ClientStream }

func (c *dhtNotifyClient) Recv() (*NotifyEvent, error) {
	m := new(NotifyEvent)
	if err := c.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// --- client-streaming Handoff ---

// DHT_HandoffServer is the server-side handle for the Handoff request
// stream: the receiving node reads one HandoffItem at a time, then sends
// a single HandoffSummary and closes.
type DHT_HandoffServer interface {
	SendAndClose(*HandoffSummary) error
	Recv() (*HandoffItem, error)
	grpc.ServerStream
}

type dhtHandoffServer struct{ grpc.ServerStream }

func (s *dhtHandoffServer) SendAndClose(m *HandoffSummary) error { return s.ServerStream.SendMsg(m) }
func (s *dhtHandoffServer) Recv() (*HandoffItem, error) {
	m := new(HandoffItem)
	if err := s.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// DHT_HandoffClient is the client-side handle for the Handoff request
// stream.
type DHT_HandoffClient interface {
	Send(*HandoffItem) error
	CloseAndRecv() (*HandoffSummary, error)
	grpc.ClientStream
}

type dhtHandoffClient struct{ grpc.ClientStream }

func (c *dhtHandoffClient) Send(m *HandoffItem) error { return c.ClientStream.SendMsg(m) }
func (c *dhtHandoffClient) CloseAndRecv() (*HandoffSummary, error) {
	if err := c.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	m := new(HandoffSummary)
	if err := c.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// RegisterDHTServer registers srv on s under this service's ServiceDesc,
// mirroring protoc-gen-go-grpc's generated registration function.
func RegisterDHTServer(s grpc.ServiceRegistrar, srv DHTServer) {
	s.RegisterService(&DHT_ServiceDesc, srv)
}

func _DHT_FindSuccessor_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(FindSuccessorRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).FindSuccessor(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chorddht.DHT/FindSuccessor"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).FindSuccessor(ctx, req.(*FindSuccessorRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _DHT_GetPredecessor_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).GetPredecessor(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chorddht.DHT/GetPredecessor"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).GetPredecessor(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _DHT_GetSuccessorList_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).GetSuccessorList(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chorddht.DHT/GetSuccessorList"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).GetSuccessorList(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _DHT_ClosestPrecedingFinger_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ClosestPrecedingFingerRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).ClosestPrecedingFinger(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chorddht.DHT/ClosestPrecedingFinger"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).ClosestPrecedingFinger(ctx, req.(*ClosestPrecedingFingerRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _DHT_Notify_Handler(srv any, stream grpc.ServerStream) error {
	in := new(NotifyRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(DHTServer).Notify(in, &dhtNotifyServer{stream})
}

func _DHT_Health_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).Health(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chorddht.DHT/Health"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).Health(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _DHT_Store_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StoreRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).Store(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chorddht.DHT/Store"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).Store(ctx, req.(*StoreRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _DHT_Retrieve_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RetrieveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).Retrieve(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chorddht.DHT/Retrieve"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).Retrieve(ctx, req.(*RetrieveRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _DHT_Remove_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RemoveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).Remove(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chorddht.DHT/Remove"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).Remove(ctx, req.(*RemoveRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _DHT_Handoff_Handler(srv any, stream grpc.ServerStream) error {
	return srv.(DHTServer).Handoff(&dhtHandoffServer{stream})
}

func _DHT_Leave_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(NotifyRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).Leave(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chorddht.DHT/Leave"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).Leave(ctx, req.(*NotifyRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _DHT_GetNodeSummary_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).GetNodeSummary(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chorddht.DHT/GetNodeSummary"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).GetNodeSummary(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _DHT_GetKVStoreSize_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).GetKVStoreSize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chorddht.DHT/GetKVStoreSize"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).GetKVStoreSize(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _DHT_GetKVStoreData_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).GetKVStoreData(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chorddht.DHT/GetKVStoreData"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).GetKVStoreData(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// DHT_ServiceDesc is the grpc.ServiceDesc for the node-to-node service,
// the hand-written equivalent of what protoc-gen-go-grpc emits.
var DHT_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "chorddht.DHT",
	HandlerType: (*DHTServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "FindSuccessor", Handler: _DHT_FindSuccessor_Handler},
		{MethodName: "GetPredecessor", Handler: _DHT_GetPredecessor_Handler},
		{MethodName: "GetSuccessorList", Handler: _DHT_GetSuccessorList_Handler},
		{MethodName: "ClosestPrecedingFinger", Handler: _DHT_ClosestPrecedingFinger_Handler},
		{MethodName: "Health", Handler: _DHT_Health_Handler},
		{MethodName: "Store", Handler: _DHT_Store_Handler},
		{MethodName: "Retrieve", Handler: _DHT_Retrieve_Handler},
		{MethodName: "Remove", Handler: _DHT_Remove_Handler},
		{MethodName: "Leave", Handler: _DHT_Leave_Handler},
		{MethodName: "GetNodeSummary", Handler: _DHT_GetNodeSummary_Handler},
		{MethodName: "GetKVStoreSize", Handler: _DHT_GetKVStoreSize_Handler},
		{MethodName: "GetKVStoreData", Handler: _DHT_GetKVStoreData_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Notify", Handler: _DHT_Notify_Handler, ServerStreams: true},
		{StreamName: "Handoff", Handler: _DHT_Handoff_Handler, ClientStreams: true},
	},
	Metadata: "internal/rpcpb/dht.proto",
}

func errUnimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}
