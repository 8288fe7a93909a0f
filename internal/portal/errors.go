package portal

import (
	"errors"
	"fmt"
	"strings"
)

// UpstreamError is returned when the backend answers with a non-success status.
// Message holds the backend's own explanation, if it sent one.
type UpstreamError struct {
	Op      string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: bad status: %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: bad status: %d: %s", e.Op, e.Status, e.Message)
}

// TransportError wraps network and decoding failures.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UserMessage converts an error returned by the client into text that can be
// shown to the user. Backend messages are passed through verbatim, transport
// details never are.
func UserMessage(err error, upstreamFallback, transportFallback string) string {
	if err == nil {
		return ""
	}

	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		if msg := strings.TrimSpace(upstream.Message); msg != "" {
			return msg
		}
		return upstreamFallback
	}

	return transportFallback
}
