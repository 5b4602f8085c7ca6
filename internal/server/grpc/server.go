package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/truthchain/internal/logging"
	"github.com/dmitrijs2005/truthchain/internal/server/models"
	"github.com/dmitrijs2005/truthchain/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// RecordService is the part of services.RecordService exposed over gRPC.
type RecordService interface {
	List(ctx context.Context) ([]*models.Record, error)
	Status() services.Status
	Finalize(ctx context.Context, sub models.Submission) (*models.Record, error)
}

type GRPCServer struct {
	address string
	records RecordService
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, rs RecordService) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		records: rs,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.ticketInterceptor))

	RegisterRecordServiceServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
