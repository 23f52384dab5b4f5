package llm

import "fmt"

// UpstreamError reports a backend that was unreachable or answered with a
// non-success status. Status is 0 when the call never completed.
type UpstreamError struct {
	Backend string
	Status  int
	Body    string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: upstream returned status %d: %s", e.Backend, e.Status, e.Body)
	}
	return fmt.Sprintf("%s: upstream call failed: %v", e.Backend, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ProtocolError reports a success response whose body could not be mapped
// into a ReplyResult, e.g. a missing reply field.
type ProtocolError struct {
	Backend string
	Reason  string
	Err     error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: malformed upstream response: %s: %v", e.Backend, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: malformed upstream response: %s", e.Backend, e.Reason)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
