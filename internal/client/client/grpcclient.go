package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/truthchain/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	gs "github.com/dmitrijs2005/truthchain/internal/server/grpc"
)

type GRPCClient struct {
	conn   *grpc.ClientConn
	client *gs.RecordServiceClient
}

func NewGRPCClient(endpoint string, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{conn: conn, client: gs.NewRecordServiceClient(conn)}, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) ListRecords(ctx context.Context) ([]*models.Record, error) {
	resp, err := s.client.ListRecords(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}

	var out struct {
		Records []*models.Record `json:"records"`
	}
	if err := fromStruct(resp, &out); err != nil {
		return nil, err
	}
	if out.Records == nil {
		out.Records = []*models.Record{}
	}
	return out.Records, nil
}

func (s *GRPCClient) Status(ctx context.Context) (*ServerStatus, error) {
	resp, err := s.client.GetStatus(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}

	var out ServerStatus
	if err := fromStruct(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func fromStruct(in *structpb.Struct, v any) error {
	b, err := json.Marshal(in.AsMap())
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
