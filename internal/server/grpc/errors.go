package grpcserver

import (
	"context"
	"errors"
	"strconv"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/and161185/storekeeper/internal/errs"
	"github.com/and161185/storekeeper/internal/wire"
)

type errMapping struct {
	target error
	code   codes.Code
	reason string
}

// Specific sentinels come before the generic ones they could be confused with.
var errMappings = []errMapping{
	{errs.ErrUserNotFound, codes.NotFound, wire.ReasonUserNotFound},
	{errs.ErrWrongPassword, codes.Unauthenticated, wire.ReasonWrongPassword},
	{errs.ErrVerificationRequired, codes.FailedPrecondition, wire.ReasonVerificationRequired},
	{errs.ErrVerificationNotRequired, codes.FailedPrecondition, wire.ReasonVerificationNotRequired},
	{errs.ErrInvalidCode, codes.InvalidArgument, wire.ReasonInvalidCode},
	{errs.ErrProductNotFound, codes.NotFound, wire.ReasonProductNotFound},
	{errs.ErrInvalidQuantity, codes.InvalidArgument, wire.ReasonInvalidQuantity},
	{errs.ErrInsufficientStock, codes.FailedPrecondition, wire.ReasonInsufficientStock},
	{errs.ErrSelfDelete, codes.FailedPrecondition, wire.ReasonSelfDelete},
	{errs.ErrValidation, codes.InvalidArgument, wire.ReasonValidation},
	{errs.ErrAlreadyExists, codes.AlreadyExists, wire.ReasonAlreadyExists},
	{errs.ErrNotFound, codes.NotFound, wire.ReasonNotFound},
	{errs.ErrUnauthorized, codes.Unauthenticated, wire.ReasonUnauthenticated},
	{errs.ErrForbidden, codes.PermissionDenied, wire.ReasonForbidden},
	{errs.ErrIO, codes.Unavailable, wire.ReasonStoreUnavailable},
}

// toStatus converts a service error into a gRPC status error with an ErrorInfo detail.
// Unknown errors become a bare Internal without the underlying message.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var locked *errs.LockedError
	if errors.As(err, &locked) {
		return withInfo(codes.ResourceExhausted, err.Error(), wire.ReasonAccountLocked, map[string]string{
			wire.MetaRemainingSeconds: strconv.FormatInt(locked.RemainingSeconds(), 10),
		})
	}

	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	for _, m := range errMappings {
		if errors.Is(err, m.target) {
			msg := err.Error()
			if m.target == errs.ErrIO {
				msg = "store unavailable"
			}
			return withInfo(m.code, msg, m.reason, nil)
		}
	}
	return status.Error(codes.Internal, "internal")
}

func withInfo(code codes.Code, msg, reason string, md map[string]string) error {
	st := status.New(code, msg)
	withDetails, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   reason,
		Domain:   wire.ErrorDomain,
		Metadata: md,
	})
	if err != nil {
		return st.Err()
	}
	return withDetails.Err()
}

// ErrorInfo extracts the ErrorInfo detail of a status error, if any.
func ErrorInfo(err error) (*errdetails.ErrorInfo, bool) {
	st, ok := status.FromError(err)
	if !ok {
		return nil, false
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info, true
		}
	}
	return nil, false
}
