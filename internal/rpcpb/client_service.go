package rpcpb

import (
	"context"

	"google.golang.org/grpc"
)

// ClientAPIServer is the external, application-facing KV surface (spec.md
// §4.5.6): put/get/delete against whichever node in the ring currently
// owns the key, routed internally via find_successor.
type ClientAPIServer interface {
	Put(context.Context, *StoreRequest) (*StoreResponse, error)
	Get(context.Context, *RetrieveRequest) (*RetrieveResponse, error)
	Delete(context.Context, *RemoveRequest) (*RemoveResponse, error)
}

// UnimplementedClientAPIServer can be embedded for forward compatibility.
type UnimplementedClientAPIServer struct{}

func (UnimplementedClientAPIServer) Put(context.Context, *StoreRequest) (*StoreResponse, error) {
	return nil, errUnimplemented("Put")
}
func (UnimplementedClientAPIServer) Get(context.Context, *RetrieveRequest) (*RetrieveResponse, error) {
	return nil, errUnimplemented("Get")
}
func (UnimplementedClientAPIServer) Delete(context.Context, *RemoveRequest) (*RemoveResponse, error) {
	return nil, errUnimplemented("Delete")
}

func RegisterClientAPIServer(s grpc.ServiceRegistrar, srv ClientAPIServer) {
	s.RegisterService(&ClientAPI_ServiceDesc, srv)
}

func _ClientAPI_Put_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StoreRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClientAPIServer).Put(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chorddht.ClientAPI/Put"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ClientAPIServer).Put(ctx, req.(*StoreRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ClientAPI_Get_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RetrieveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClientAPIServer).Get(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chorddht.ClientAPI/Get"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ClientAPIServer).Get(ctx, req.(*RetrieveRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ClientAPI_Delete_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RemoveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClientAPIServer).Delete(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chorddht.ClientAPI/Delete"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ClientAPIServer).Delete(ctx, req.(*RemoveRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var ClientAPI_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "chorddht.ClientAPI",
	HandlerType: (*ClientAPIServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Put", Handler: _ClientAPI_Put_Handler},
		{MethodName: "Get", Handler: _ClientAPI_Get_Handler},
		{MethodName: "Delete", Handler: _ClientAPI_Delete_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "internal/rpcpb/client.proto",
}
