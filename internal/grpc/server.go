package grpc

import (
	"context"
	"errors"
	"net"
	"sync"

	"google.golang.org/grpc"

	"github.com/hbkwon/voucherd/internal/core/fees"
	"github.com/hbkwon/voucherd/internal/core/market"
	"github.com/hbkwon/voucherd/internal/core/types"
)

// EngineInterface defines the engine operations needed by the gRPC
// handlers. Implemented by *engine.Engine.
type EngineInterface interface {
	MintBySignature(ctx context.Context, to types.AccountID, amount uint64, tokenID types.TokenID, nonce uint64, metadata string, signature []byte, referencePrice uint64) error
	TransferBySignature(ctx context.Context, from, to types.AccountID, tokenID types.TokenID, amount, nonce uint64, signature []byte) error

	BalanceOf(ctx context.Context, account types.AccountID, tokenID types.TokenID) (uint64, error)
	TotalSupply(ctx context.Context, tokenID types.TokenID) (uint64, error)
	FeeConfig(ctx context.Context) (fees.Config, error)
	NonceConsumed(ctx context.Context, signer types.AccountID, nonce uint64) (bool, error)
	GetListing(ctx context.Context, listingID uint64) (market.Listing, error)
	PaymentBalanceOf(ctx context.Context, account types.AccountID) (uint64, error)
}

// Server represents the gRPC server.
type Server struct {
	mu sync.RWMutex

	grpcServer *grpc.Server
	engine     EngineInterface
	config     *ServerConfig
	listener   net.Listener
	running    bool
}

// NewServer creates a new gRPC server with the given configuration.
func NewServer(cfg *ServerConfig, engine EngineInterface) (*Server, error) {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize),
		grpc.MaxSendMsgSize(cfg.MaxSendMsgSize),
	}

	return &Server{
		grpcServer: grpc.NewServer(opts...),
		engine:     engine,
		config:     cfg,
	}, nil
}

// Start starts the server and blocks until it is stopped.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server is already running")
	}
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.listener = listener
	s.running = true
	s.mu.Unlock()

	return s.grpcServer.Serve(listener)
}

// StartAsync starts the server in a goroutine and returns immediately.
func (s *Server) StartAsync() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server is already running")
	}
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.listener = listener
	s.running = true
	s.mu.Unlock()

	go func() {
		_ = s.grpcServer.Serve(listener)
	}()
	return nil
}

// Stop gracefully stops the server, waiting for in-flight requests.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.grpcServer.GracefulStop()
	s.running = false
}

// StopNow immediately stops the server.
func (s *Server) StopNow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.grpcServer.Stop()
	s.running = false
}

// IsRunning returns true while the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Address returns the listen address, or empty when not running.
func (s *Server) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// GetGRPCServer returns the underlying grpc.Server so additional services
// can be registered before Start.
func (s *Server) GetGRPCServer() *grpc.Server {
	return s.grpcServer
}
