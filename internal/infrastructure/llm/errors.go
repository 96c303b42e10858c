package llm

import (
	"fmt"
	"net/http"
)

// StatusError carries a non-2xx response from a text provider.
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error %d: %s", e.Provider, e.Code, e.Message)
}

// Temporary reports whether the call is worth retrying (throttling or a
// server-side failure).
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}
