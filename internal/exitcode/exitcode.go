package exitcode

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/felixgeelhaar/leasehold/internal/api"
	"github.com/felixgeelhaar/leasehold/internal/errors"
	"github.com/felixgeelhaar/leasehold/internal/log"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// AuthError indicates an authentication or authorization failure
	AuthError = 5

	// NetworkError indicates a network connectivity issue
	NetworkError = 6

	// Interrupted indicates the user canceled with Ctrl+C (128 + SIGINT)
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	code := DetermineExitCode(err)
	log.DefaultLogger().Debug("exiting", "code", code, "reason", GetExitCodeDescription(code))
	Exit(code)
}

// DetermineExitCode analyzes an error and returns the appropriate exit code.
// Typed errors are checked first; the message is only inspected for errors
// that carry no type, such as cobra's flag parsing errors.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var apiErr *api.Error
	if stderrors.As(err, &apiErr) {
		switch apiErr.Kind {
		case api.KindInvalidCredentials:
			return AuthError
		case api.KindNetwork:
			return NetworkError
		case api.KindValidation:
			return UsageError
		}
		return GeneralError
	}

	var lerr *errors.LeaseholdError
	if stderrors.As(err, &lerr) {
		switch {
		case strings.HasPrefix(string(lerr.Code), "AUTH-"):
			if lerr.Code == errors.ErrCodeAuthMissingField || lerr.Code == errors.ErrCodeAuthUnknownRole {
				return UsageError
			}
			return AuthError
		case strings.HasPrefix(string(lerr.Code), "NET-"):
			if lerr.Code == errors.ErrCodeNetServer {
				return GeneralError
			}
			return NetworkError
		case strings.HasPrefix(string(lerr.Code), "USAGE-"):
			return UsageError
		}
		return GeneralError
	}

	errMsg := strings.ToLower(err.Error())

	// Authentication errors
	if strings.Contains(errMsg, "authentication") || strings.Contains(errMsg, "unauthorized") {
		return AuthError
	}

	// Network errors
	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host") {
		return NetworkError
	}

	// Usage errors
	if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown shorthand flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "accepts") || strings.Contains(errMsg, "invalid argument") {
		return UsageError
	}

	// Default to general error
	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case AuthError:
		return "Authentication error"
	case NetworkError:
		return "Network error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
