package main

import (
	"ChordDHT/internal/bootstrap"
	"ChordDHT/internal/client"
	"ChordDHT/internal/config"
	"ChordDHT/internal/domain"
	"ChordDHT/internal/logger"
	zapfactory "ChordDHT/internal/logger/zap"
	"ChordDHT/internal/node"
	"ChordDHT/internal/routingtable"
	"ChordDHT/internal/server"
	"ChordDHT/internal/storage"
	"ChordDHT/internal/telemetry"
	"ChordDHT/internal/telemetry/lookuptrace"
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
)

var defaultConfigPath = "config/node/config.yaml"

func main() {
	// Parse command-line flags
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %q: %v", *configPath, err)
	}
	cfg.ApplyEnvOverrides()
	// Validate configuration
	if err := cfg.ValidateConfig(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Initialize logger
	var lgr logger.Logger
	if cfg.Logger.Active {
		zapLog, err := zapfactory.New(cfg.Logger)
		if err != nil {
			log.Fatalf("failed to initialize logger: %v", err)
		}
		defer func() { _ = zapLog.Sync() }()   // flush logger buffers before exit
		lgr = zapfactory.NewZapAdapter(zapLog) // adapt zap.Logger to logger.Logger
	} else {
		lgr = &logger.NopLogger{} // no-op logger
	}
	// Log loaded configuration at DEBUG level
	cfg.LogConfig(lgr)

	// Initialize listener (to determine server address and port)
	lis, advertised, err := server.Listen(cfg.DHT.Mode, cfg.Node.Bind, cfg.Node.Host, cfg.Node.Port)
	if err != nil {
		lgr.Error("Fatal: failed to initialize listener", logger.F("err", err))
		os.Exit(1)
	}
	defer func() { _ = lis.Close() }() // close listener on shutdown
	addr := lis.Addr().String()
	lgr.Debug("create listener", logger.F("addr", addr))

	// Initialize the identifier space
	space, err := domain.NewSpace(cfg.DHT.IDBits, cfg.DHT.FaultTolerance.SuccessorListSize)
	if err != nil {
		lgr.Error("failed to initialize identifier space", logger.F("err", err))
		os.Exit(1)
	}
	lgr.Debug("identifier space initialized", logger.F("id_bits", space.Bits), logger.F("sizeByte", space.ByteLen), logger.F("SuccessorListSize", space.SuccListSize))

	// Initialize the local node identity
	var id domain.ID
	if cfg.Node.Id == "" {
		id = space.NewIdFromString(addr) // derive ID from address
	} else {
		id, err = space.FromHexString(cfg.Node.Id) // use configured ID
		if err != nil {
			lgr.Error("invalid node ID in configuration", logger.F("err", err))
			os.Exit(1)
		}
	}
	domainNode := domain.Node{
		ID:   id,
		Addr: advertised,
	}
	lgr.Debug("generated node ID", logger.F("id", id.ToHexString(true)))
	lgr = lgr.Named("node").WithNode(domainNode)
	lgr.Info("New Node initializing")

	// Initialize telemetry (if enabled)
	shutdownTracer := telemetry.InitTracer(cfg.Telemetry, "ChordDHT-Node", id)
	defer shutdownTracer(context.Background())

	// Initialize the routing table
	rt := routingtable.New(
		&domainNode,
		space,
		routingtable.WithLogger(lgr.Named("routingtable")),
	)
	lgr.Debug("initialized routing table")

	// Initialize the client pool
	cp := client.New(
		client.WithFailureTimeout(cfg.DHT.FaultTolerance.FailureTimeout),
		client.WithLogger(lgr.Named("clientpool")),
	)
	lgr.Debug("initialized client pool")

	// Initialize the storage
	store := storage.NewMemoryStorage(lgr.Named("storage"))
	lgr.Debug("initialized in-memory storage")

	// Initialize the node
	n := node.New(
		rt,
		cp,
		store,
		node.WithLogger(lgr),
		node.WithPowDifficulty(cfg.DHT.Pow.Difficulty),
		node.WithPowLifetime(cfg.DHT.Pow.TokenLifetime),
	)
	lgr.Debug("initialized new struct node")

	// Initialize the gRPC server
	var grpcOpts []grpc.ServerOption
	if cfg.Telemetry.Tracing.Enabled {
		grpcOpts = append(grpcOpts,
			grpc.ChainUnaryInterceptor(
				lookuptrace.ServerInterceptor(),
			),
		)
		lgr.Debug("gRPC tracing enabled (lookup-only)")
	}

	s, err := server.New(
		lis,
		n,
		cfg.Node.DevMode,
		grpcOpts,
		server.WithLogger(lgr.Named("server")),
	)
	if err != nil {
		lgr.Error("failed to initialize gRPC server", logger.F("err", err))
		os.Exit(1)
	}
	lgr.Debug("initialized gRPC server")

	// Run gRPC server in background
	serveErr := make(chan error, 1)
	go func() { serveErr <- s.Start() }()
	lgr.Debug("server started")

	// Optionally start the legacy TCP line protocol (SPEC_FULL.md §C.5)
	var tcpServer *server.TCPServer
	if cfg.Node.TCPAddress != "" {
		tcpServer, err = server.NewTCPServer(cfg.Node.TCPAddress, n, lgr.Named("tcp"))
		if err != nil {
			lgr.Error("failed to initialize TCP server", logger.F("err", err))
			s.Stop()
			os.Exit(1)
		}
		go func() {
			if err := tcpServer.Serve(); err != nil {
				lgr.Warn("tcp server stopped", logger.F("err", err))
			}
		}()
		lgr.Debug("tcp server started", logger.F("addr", cfg.Node.TCPAddress))
	}

	// Resolve bootstrap peers
	var boot bootstrap.Bootstrap
	switch cfg.DHT.Bootstrap.Mode {
	case "dns":
		peers, err := bootstrap.ResolveBootstrap(cfg.DHT.Bootstrap, lgr)
		if err != nil {
			lgr.Error("failed to resolve DNS bootstrap", logger.F("err", err))
			s.Stop()
			os.Exit(1)
		}
		boot = bootstrap.NewStaticBootstrap(peers)
	case "static":
		boot = bootstrap.NewStaticBootstrap(cfg.DHT.Bootstrap.Peers)
	case "init":
		boot = bootstrap.NewStaticBootstrap(nil) // first node: no peers, create a new ring
	default:
		lgr.Error("unsupported bootstrap mode", logger.F("mode", cfg.DHT.Bootstrap.Mode))
		s.Stop()
		os.Exit(1)
	}

	var register bootstrap.Bootstrap
	if cfg.DHT.Bootstrap.Route53.Enabled {
		r53, err := bootstrap.NewRoute53Bootstrap(cfg.DHT.Bootstrap.Route53)
		if err != nil {
			lgr.Error("failed to initialize Route53 bootstrap", logger.F("err", err))
			s.Stop()
			os.Exit(1)
		}
		register = r53
	}

	// Join an existing DHT or create a new one
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	peers, err := boot.Discover(ctx)
	cancel()
	if err != nil {
		lgr.Error("failed to resolve bootstrap peers", logger.F("err", err))
		s.Stop()
		os.Exit(1)
	}
	lgr.Info("resolved bootstrap peers", logger.F("peers", peers))
	if len(peers) != 0 {
		joinCtx, joinCancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := n.Join(joinCtx, peers)
		joinCancel()
		if err != nil {
			lgr.Error("failed to join DHT", logger.F("err", err))
			s.Stop()
			os.Exit(1)
		}
		lgr.Debug("joined DHT")
	} else {
		n.CreateNewDHT()
		lgr.Debug("new DHT created")
	}

	// Register node with the dynamic-DNS backend, if configured
	if register != nil {
		regCtx, regCancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = register.Register(regCtx, &domainNode)
		regCancel()
		if err != nil {
			lgr.Error("failed to register node", logger.F("err", err))
		} else {
			lgr.Info("node registered successfully")
			defer func() {
				deregCtx, deregCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer deregCancel()
				if err := register.Deregister(deregCtx, &domainNode); err != nil {
					lgr.Warn("failed to deregister node", logger.F("err", err))
				}
			}()
		}
	}

	// Setup signal handler for graceful shutdown
	ctx, stabilizerStop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// Start periodic stabilization workers (run until ctx is canceled)
	n.StartStabilizers(ctx,
		cfg.DHT.FaultTolerance.StabilizationInterval,
		cfg.DHT.Fingers.FixInterval,
		cfg.DHT.FaultTolerance.HealthCheckInterval,
	)
	lgr.Debug("stabilization workers started")

	select {
	case <-ctx.Done():
		lgr.Info("shutdown signal received, stopping server gracefully...")

		stabilizerStop() // stop stabilization workers

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := n.Shutdown(shutdownCtx); err != nil {
			lgr.Warn("node shutdown handoff failed", logger.F("err", err))
		}
		shutdownCancel()

		if tcpServer != nil {
			_ = tcpServer.Close()
		}

		// Allow some time for graceful stop
		gracefulCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		done := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(done)
		}()

		select {
		case <-done:
			lgr.Info("server stopped gracefully")
		case <-gracefulCtx.Done():
			lgr.Warn("graceful stop timed out, forcing shutdown")
			s.Stop()
		}

	case err := <-serveErr:
		lgr.Error("gRPC server terminated unexpectedly", logger.F("err", err))
		stabilizerStop()
		os.Exit(1)
	}
}
