package vision

import (
	"errors"
	"fmt"
)

// Failure taxonomy for a pipeline run. The first three classify upstream
// calls; ErrNoFile covers activation without a selected file.
var (
	ErrNoFile    = errors.New("no file selected")
	ErrTransport = errors.New("transport failure")
	ErrProtocol  = errors.New("invalid response body")
)

// ServerError means the upstream was reachable but answered outside the
// success range. The status code is surfaced to the user verbatim.
type ServerError struct {
	Status int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned status %d", e.Status)
}
