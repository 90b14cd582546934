package handler

import (
	"context"
	"errors"

	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, workforce.ErrInvalidID),
		errors.Is(err, workforce.ErrMissingAsOf),
		errors.Is(err, workforce.ErrNilEntity),
		errors.Is(err, workforce.ErrConstraintViolation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, workforce.ErrEmployeeNotFound),
		errors.Is(err, workforce.ErrAccountNotFound),
		errors.Is(err, workforce.ErrStoreNotFound),
		errors.Is(err, workforce.ErrJobNotFound),
		errors.Is(err, workforce.ErrFlavorNotFound),
		errors.Is(err, workforce.ErrAssignmentNotFound),
		errors.Is(err, workforce.ErrShiftNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, workforce.ErrSSNAlreadyExists),
		errors.Is(err, workforce.ErrStoreNameAlreadyExists),
		errors.Is(err, workforce.ErrEmailAlreadyExists),
		errors.Is(err, workforce.ErrAccountAlreadyExists),
		errors.Is(err, workforce.ErrShiftJobAlreadyExists),
		errors.Is(err, workforce.ErrStoreFlavorAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, workforce.ErrReferenced):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
