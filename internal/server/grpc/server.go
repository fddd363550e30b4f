// Package grpc serves the custodian.v1.Custodian service to authenticated
// callers: case handlers retrieving filing credentials and owners managing
// their share codes.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/custodian/internal/logging"
	"github.com/dmitrijs2005/custodian/internal/server/auth"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address  string
	vault    VaultService
	codes    ShareCodeService
	access   AccessService
	verifier auth.Verifier
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, v auth.Verifier, vault VaultService, codes ShareCodeService, access AccessService) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		verifier: v,
		vault:    vault,
		codes:    codes,
		access:   access,
	}
}

// Register attaches the service to srv.
func (s *GRPCServer) Register(srv *grpc.Server) {
	srv.RegisterService(&serviceDesc, s)
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	s.Register(srv)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
