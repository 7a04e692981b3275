package grpcserver

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/and161185/storekeeper/internal/errs"
	"github.com/and161185/storekeeper/internal/wire"
)

func TestToStatus_Mapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		code   codes.Code
		reason string
	}{
		{errs.ErrUserNotFound, codes.NotFound, wire.ReasonUserNotFound},
		{errs.ErrWrongPassword, codes.Unauthenticated, wire.ReasonWrongPassword},
		{errs.ErrVerificationRequired, codes.FailedPrecondition, wire.ReasonVerificationRequired},
		{errs.ErrVerificationNotRequired, codes.FailedPrecondition, wire.ReasonVerificationNotRequired},
		{fmt.Errorf("%w: code expired", errs.ErrInvalidCode), codes.InvalidArgument, wire.ReasonInvalidCode},
		{errs.ErrProductNotFound, codes.NotFound, wire.ReasonProductNotFound},
		{errs.ErrInvalidQuantity, codes.InvalidArgument, wire.ReasonInvalidQuantity},
		{errs.ErrInsufficientStock, codes.FailedPrecondition, wire.ReasonInsufficientStock},
		{errs.ErrSelfDelete, codes.FailedPrecondition, wire.ReasonSelfDelete},
		{errs.Validationf("bad theme"), codes.InvalidArgument, wire.ReasonValidation},
		{errs.ErrAlreadyExists, codes.AlreadyExists, wire.ReasonAlreadyExists},
		{errs.ErrForbidden, codes.PermissionDenied, wire.ReasonForbidden},
		{fmt.Errorf("%w: invalid token", errs.ErrUnauthorized), codes.Unauthenticated, wire.ReasonUnauthenticated},
		{fmt.Errorf("load: %w: disk", errs.ErrIO), codes.Unavailable, wire.ReasonStoreUnavailable},
	}
	for _, tc := range cases {
		err := toStatus(tc.err)
		require.Equal(t, tc.code, status.Code(err), tc.err.Error())
		info, ok := ErrorInfo(err)
		require.True(t, ok, tc.err.Error())
		require.Equal(t, tc.reason, info.GetReason())
		require.Equal(t, wire.ErrorDomain, info.GetDomain())
	}
}

func TestToStatus_LockedCarriesRemainingSeconds(t *testing.T) {
	t.Parallel()

	err := toStatus(fmt.Errorf("login: %w", &errs.LockedError{Remaining: 90*time.Second + time.Millisecond}))
	require.Equal(t, codes.ResourceExhausted, status.Code(err))
	info, ok := ErrorInfo(err)
	require.True(t, ok)
	require.Equal(t, wire.ReasonAccountLocked, info.GetReason())
	require.Equal(t, "91", info.GetMetadata()[wire.MetaRemainingSeconds])
}

func TestToStatus_PassThroughAndUnknown(t *testing.T) {
	t.Parallel()

	require.NoError(t, toStatus(nil))

	already := status.Error(codes.InvalidArgument, "x")
	require.Equal(t, already, toStatus(already))

	require.Equal(t, codes.Canceled, status.Code(toStatus(context.Canceled)))
	require.Equal(t, codes.DeadlineExceeded, status.Code(toStatus(fmt.Errorf("save: %w", context.DeadlineExceeded))))

	err := toStatus(errors.New("secret detail"))
	require.Equal(t, codes.Internal, status.Code(err))
	require.NotContains(t, err.Error(), "secret detail")
	_, ok := ErrorInfo(err)
	require.False(t, ok)
}
