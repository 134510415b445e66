package hdx

import (
	"errors"
	"fmt"
)

const notFoundType = "Not Found Error"

// APIError is a failed catalog action.
type APIError struct {
	Action  string
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("hdx %s: status %d: %s", e.Action, e.Status, e.Message)
	}
	return fmt.Sprintf("hdx %s: status %d: %s: %s", e.Action, e.Status, e.Type, e.Message)
}

// IsNotFound reports whether err is a catalog "not found" response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Type == notFoundType || apiErr.Status == 404
}
