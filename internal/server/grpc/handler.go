package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/dmitrijs2005/truthchain/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) ListRecords(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {

	recs, err := s.records.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	return toStruct(map[string]any{"records": recs})
}

func (s *GRPCServer) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(s.records.Status())
}

func (s *GRPCServer) SaveRecord(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	var sub models.Submission
	if err := fromStruct(req, &sub); err != nil {
		return nil, toStatus(fmt.Errorf("%w: malformed submission", common.ErrValidation))
	}
	if sub.Ticket == "" {
		sub.Ticket = ticketFromContext(ctx)
	}

	rec, err := s.records.Finalize(ctx, sub)
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Record saved", "id", rec.ID)
	return toStruct(map[string]any{"success": true, "record": rec})
}

// toStruct converts v to a Struct through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func fromStruct(in *structpb.Struct, v any) error {
	b, err := json.Marshal(in.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// toStatus maps a service error to a gRPC status whose message starts with
// the error kind. Context errors keep their own codes.
func toStatus(err error) error {
	kind := common.KindOf(err)

	var code codes.Code
	switch {
	case kind == common.KindValidation:
		code = codes.InvalidArgument
	case kind == common.KindLedgerTxNotFound:
		code = codes.NotFound
	case common.IsCrossCheckFailure(err), kind == common.KindHashVerificationFailed:
		code = codes.FailedPrecondition
	case kind == common.KindDuplicateRecord:
		code = codes.AlreadyExists
	case kind == common.KindUpstreamUnavailable:
		code = codes.Unavailable
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request deadline exceeded")
	default:
		return status.Error(codes.Internal, string(common.KindInternal)+": internal error")
	}

	return status.Error(code, string(kind)+": "+err.Error())
}
