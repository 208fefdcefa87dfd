package server

import (
	"fmt"
	"net"

	"ChordDHT/internal/logger"
	"ChordDHT/internal/node"
	"ChordDHT/internal/rpcpb"

	"google.golang.org/grpc"
)

// Server wraps a gRPC server hosting both the client and DHT services.
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	lgr        logger.Logger
}

// New creates a new gRPC server bound to the given address and registers
// both the external ClientAPI and internal DHT services. devMode gates the
// DHT service's introspection RPCs (SPEC_FULL.md §C.4).
func New(lis net.Listener, n *node.Node, devMode bool, grpcOpts []grpc.ServerOption, srvOpts ...Option) (*Server, error) {
	s := &Server{
		grpcServer: grpc.NewServer(grpcOpts...),
		listener:   lis,
		lgr:        &logger.NopLogger{}, // default: no logging
	}
	for _, opt := range srvOpts {
		opt(s)
	}
	rpcpb.RegisterClientAPIServer(s.grpcServer, NewClientService(n))
	rpcpb.RegisterDHTServer(s.grpcServer, NewDHTService(n, devMode))
	return s, nil
}

// Start runs the gRPC server and blocks until it stops.
// It returns any error from grpc.Server.Serve.
func (s *Server) Start() error {
	if err := s.grpcServer.Serve(s.listener); err != nil {
		return fmt.Errorf("gRPC server stopped: %w", err)
	}
	return nil
}

// Stop immediately stops the server and closes all active connections.
func (s *Server) Stop() {
	s.grpcServer.Stop()
}

// GracefulStop gracefully shuts down the server,
// waiting for in-flight RPCs to complete.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}
