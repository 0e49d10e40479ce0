package itad

import "fmt"

// TransientError is a retryable upstream failure: a 5xx response, a
// connection error, or a timeout. The client retries these with backoff
// before surfacing the final one.
type TransientError struct {
	Status  int // 0 for connection-level failures
	Message string
	cause   error
}

func (e *TransientError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *TransientError) Unwrap() error { return e.cause }

// ClientError is a 4xx response. Retrying would not help, so the client
// surfaces it immediately.
type ClientError struct {
	Status int
	Body   string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client error %d: %s", e.Status, e.Body)
}

// MalformedResponseError marks a response the server delivered successfully
// but that cannot be used: wrong content type, empty or null body, or a
// payload missing an expected key. These are deterministic parse failures
// and are never retried.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed response: " + e.Reason
}

// transientMessage gives well-known gateway codes a human-readable phrasing.
func transientMessage(status int) string {
	switch status {
	case 502:
		return "API service temporarily unavailable (Bad Gateway)"
	case 503:
		return "API service temporarily unavailable (Service Unavailable)"
	case 504:
		return "API request timed out (Gateway Timeout)"
	default:
		return fmt.Sprintf("server error %d", status)
	}
}
