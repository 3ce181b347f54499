package lookup

import (
	"errors"
	"fmt"
)

// AuthMessage is shown to users when the upstream rejects their headers.
const AuthMessage = "Authentication failed — your Authorization/Cookie headers are expired or invalid. Please update and retry."

// ErrEmptyInput is returned before any upstream call when no identifiers
// remain after normalization.
var ErrEmptyInput = errors.New("no identifiers provided")

// errStreamIncomplete is returned by synchronous lookups when the stream
// closed without a terminal event and the context is still live.
var errStreamIncomplete = errors.New("lookup stream ended without a result")

// AuthError aborts a whole run. Status is the upstream 401 or 403.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("upstream rejected credentials (status %d): %s", e.Status, e.Message)
}
