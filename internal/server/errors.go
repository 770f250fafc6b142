package server

import (
	"errors"

	"commander-league/internal/domain"

	"connectrpc.com/connect"
)

// toConnectError maps domain errors onto connect codes. Anything unexpected
// becomes Internal.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}

	var (
		validation *domain.ValidationError
		integrity  *domain.ReferentialIntegrityError
	)
	switch {
	case errors.As(err, &validation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.As(err, &integrity):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, domain.ErrDeckNotFound), errors.Is(err, domain.ErrMatchNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
