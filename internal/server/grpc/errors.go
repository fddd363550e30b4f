package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/custodian/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors to the generic messages callers are allowed
// to see. Missing and unauthorized resources are indistinguishable.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, common.GenericAccessDenied)
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, "invalid request")
	case errors.Is(err, common.ErrorDecryption):
		return status.Error(codes.Internal, common.CredentialsUnavailable)
	case errors.Is(err, common.ErrorCodeExpired), errors.Is(err, common.ErrorCodeRevoked):
		return status.Error(codes.FailedPrecondition, "share code is no longer active")
	case errors.Is(err, common.ErrorInvalidState):
		return status.Error(codes.FailedPrecondition, "operation not allowed in current state")
	}
	s.logger.Error(ctx, "request failed", "method", method, "error", err)
	return status.Error(codes.Internal, "internal error")
}
