package cmd

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/felixgeelhaar/leasehold/internal/api"
	"github.com/felixgeelhaar/leasehold/internal/errors"
	"github.com/felixgeelhaar/leasehold/internal/session"
)

// resultError turns a failed login or registration into the coded error
// the CLI reports. op is "login" or "registration".
func resultError(op string, result session.Result, baseURL string) error {
	switch result.Kind {
	case api.KindNetwork:
		return errors.NewNetworkError(baseURL, stderrors.New(result.Error))
	case api.KindServer:
		return errors.New(errors.ErrCodeNetServer, fmt.Sprintf("%s failed: server error: %s", op, result.Error)).
			WithSuggestion("Try again later").
			WithSuggestion("Run with --log-level debug to see the request id")
	case api.KindCanceled:
		return fmt.Errorf("%s canceled: %w", op, context.Canceled)
	case api.KindSuperseded:
		return fmt.Errorf("%s %s", op, result.Error)
	case api.KindValidation:
		if op == "login" {
			return errors.New(errors.ErrCodeUsageInvalidArgument, result.Error).
				WithSuggestion("Pass --email and --password or run in an interactive terminal")
		}
		return errors.NewRegistrationFailedError(result.Error)
	}

	if op == "login" {
		return errors.NewLoginFailedError(result.Error)
	}
	return errors.NewRegistrationFailedError(result.Error)
}
