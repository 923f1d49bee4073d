package provider

import (
	"errors"
	"fmt"
)

// NotAuthenticatedError indicates that authentication has failed or
// expired for an account.
type NotAuthenticatedError struct {
	Account string
	Message string
}

func (e *NotAuthenticatedError) Error() string {
	return fmt.Sprintf("not authenticated (%s): %s", e.Account, e.Message)
}

// IsNotAuthenticated reports whether err (or any error in its chain) is a
// NotAuthenticatedError.
func IsNotAuthenticated(err error) bool {
	var authErr *NotAuthenticatedError
	return errors.As(err, &authErr)
}

// NetworkError indicates the provider could not be reached.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err wraps a NetworkError.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// DecodingError indicates a provider payload could not be decoded.
type DecodingError struct {
	What string
	Err  error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.What, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

// RateLimitedError indicates the provider rejected the request because
// of quota exhaustion.
type RateLimitedError struct {
	Message string
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: %s", e.Message)
}

// IsRateLimited reports whether err wraps a RateLimitedError.
func IsRateLimited(err error) bool {
	var rlErr *RateLimitedError
	return errors.As(err, &rlErr)
}

// InvalidResponseError indicates the provider returned a response that
// does not match its contract.
type InvalidResponseError struct {
	Message string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid provider response: %s", e.Message)
}
