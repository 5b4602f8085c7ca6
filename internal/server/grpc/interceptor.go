package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const ticketKey ctxKey = "ticket"

// TicketMetadataKey carries an intake ticket for SaveRecord when the
// request body does not.
const TicketMetadataKey = "x-intake-ticket"

func (s *GRPCServer) ticketInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if info.FullMethod == SaveRecordMethod {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(TicketMetadataKey); len(values) > 0 {
				ctx = context.WithValue(ctx, ticketKey, values[0])
			}
		}
	}

	return handler(ctx, req)
}

func ticketFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ticketKey).(string)
	return v
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	code := status.Code(err)
	if err != nil {
		s.logger.Warn(ctx, "gRPC request failed", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start))
	} else {
		s.logger.Debug(ctx, "gRPC request", "method", info.FullMethod, "duration", time.Since(start))
	}

	return resp, err
}
