package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeAuthRequired           ErrorCode = "AUTH-001"
	ErrCodeAuthInvalidCredentials ErrorCode = "AUTH-002"
	ErrCodeAuthRegistrationFailed ErrorCode = "AUTH-003"
	ErrCodeAuthSessionExpired     ErrorCode = "AUTH-004"
	ErrCodeAuthMissingField       ErrorCode = "AUTH-005"
	ErrCodeAuthUnknownRole        ErrorCode = "AUTH-006"

	// Network errors (NET-001 to NET-099)
	ErrCodeNetUnreachable ErrorCode = "NET-001"
	ErrCodeNetServer      ErrorCode = "NET-002"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid  ErrorCode = "CONFIG-001"
	ErrCodeConfigNotFound ErrorCode = "CONFIG-002"

	// Token store errors (STORE-001 to STORE-099)
	ErrCodeStoreReadFailed  ErrorCode = "STORE-001"
	ErrCodeStoreWriteFailed ErrorCode = "STORE-002"
	ErrCodeStoreCorrupt     ErrorCode = "STORE-003"

	// Usage errors (USAGE-001 to USAGE-099)
	ErrCodeUsageInvalidArgument ErrorCode = "USAGE-001"
)

// LeaseholdError represents an enhanced error with code, suggestions, and documentation
type LeaseholdError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *LeaseholdError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)

	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			fmt.Fprintf(&b, "\n  • %s", suggestion)
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *LeaseholdError) Unwrap() error {
	return e.Cause
}

// New creates a new LeaseholdError
func New(code ErrorCode, message string) *LeaseholdError {
	return &LeaseholdError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new LeaseholdError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *LeaseholdError {
	return &LeaseholdError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *LeaseholdError) WithSuggestion(suggestion string) *LeaseholdError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *LeaseholdError) WithSuggestions(suggestions ...string) *LeaseholdError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// Common error constructors for frequently used errors

// NewNotLoggedInError reports a command that needs a session but found none.
func NewNotLoggedInError() *LeaseholdError {
	return New(ErrCodeAuthRequired, "not logged in").
		WithSuggestion("Run 'leasehold auth login' to authenticate")
}

// NewSessionExpiredError reports a stored token the server no longer accepts.
// The token has already been removed when this is reported.
func NewSessionExpiredError() *LeaseholdError {
	return New(ErrCodeAuthSessionExpired, "session expired, the stored token was removed").
		WithSuggestion("Run 'leasehold auth login' to sign in again")
}

// NewLoginFailedError reports a rejected login with the server's message.
func NewLoginFailedError(message string) *LeaseholdError {
	return New(ErrCodeAuthInvalidCredentials, fmt.Sprintf("login failed: %s", message)).
		WithSuggestions("Check your email and password", "Run 'leasehold auth register' if you do not have an account yet")
}

// NewRegistrationFailedError reports a rejected registration.
func NewRegistrationFailedError(message string) *LeaseholdError {
	return New(ErrCodeAuthRegistrationFailed, fmt.Sprintf("registration failed: %s", message)).
		WithSuggestions("Check that every field is filled in", "Use 'leasehold auth login' if the email is already registered")
}

// NewMissingFieldError reports a required flag that was neither passed nor prompted.
func NewMissingFieldError(flag string) *LeaseholdError {
	return New(ErrCodeAuthMissingField, fmt.Sprintf("--%s is required", flag)).
		WithSuggestion(fmt.Sprintf("Pass --%s or run the command in an interactive terminal", flag))
}

// NewUnknownRoleError reports a registration role outside the supported set.
func NewUnknownRoleError(role string) *LeaseholdError {
	return New(ErrCodeAuthUnknownRole, fmt.Sprintf("unknown role: %s", role)).
		WithSuggestion("Use one of: tenant, owner, admin")
}

// NewNetworkError reports a backend that could not be reached.
func NewNetworkError(baseURL string, cause error) *LeaseholdError {
	return Wrap(ErrCodeNetUnreachable, fmt.Sprintf("network error talking to %s", baseURL), cause).
		WithSuggestions("Check that the API is running and reachable", "Set LEASEHOLD_API_BASE_URL or pass --api-url to point at another server")
}

// NewStoreWriteError reports a token file that could not be written.
func NewStoreWriteError(path string, cause error) *LeaseholdError {
	return Wrap(ErrCodeStoreWriteFailed, fmt.Sprintf("failed to write token file: %s", path), cause).
		WithSuggestions("Check permissions on the token directory", "Set auth.token_file in the config to another location")
}

// NewStoreCorruptError reports a token file that exists but cannot be parsed.
func NewStoreCorruptError(path string, cause error) *LeaseholdError {
	return Wrap(ErrCodeStoreCorrupt, fmt.Sprintf("token file is not valid JSON: %s", path), cause).
		WithSuggestions("Run 'leasehold auth logout' to remove it", "Delete the file by hand and log in again")
}

// NewConfigInvalidError reports a configuration file that failed to load.
func NewConfigInvalidError(path string, cause error) *LeaseholdError {
	return Wrap(ErrCodeConfigInvalid, fmt.Sprintf("failed to load configuration: %s", path), cause).
		WithSuggestions("Check the YAML syntax of the config file", "Remove the file to fall back to defaults")
}

// NewConfigNotFoundError reports an explicitly requested config file that does not exist.
func NewConfigNotFoundError(path string) *LeaseholdError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("config file not found: %s", path)).
		WithSuggestions("Check the --config path", "Omit --config to use ~/.leasehold/config.yaml and defaults")
}
