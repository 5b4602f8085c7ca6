package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/truthchain/internal/common"
)

var ErrUnavailable = errors.New("server unavailable")

// APIError is an error reported by the server.
type APIError struct {
	StatusCode int
	Kind       common.Kind
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
}

// Unwrap returns the sentinel for the error kind.
func (e *APIError) Unwrap() error {
	return common.FromKind(e.Kind)
}
