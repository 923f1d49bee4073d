package ai

import (
	"errors"
	"fmt"
)

// InvalidRequestError indicates the language-model provider rejected
// the request itself.
type InvalidRequestError struct {
	Message string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid model request: %s", e.Message)
}

// ModelUnavailableError indicates a requested model identifier does not
// exist. The gateway advances to the next model in its list on this
// error and on no other.
type ModelUnavailableError struct {
	Model string
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("model not available: %s", e.Model)
}

// IsModelUnavailable reports whether err wraps a ModelUnavailableError.
func IsModelUnavailable(err error) bool {
	var muErr *ModelUnavailableError
	return errors.As(err, &muErr)
}

// errNoCredentials is returned internally when no API key is
// configured; classification callers never see it because it triggers
// the heuristic fallback.
var errNoCredentials = errors.New("no language-model credentials configured")
