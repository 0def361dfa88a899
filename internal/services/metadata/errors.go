package metadata

import "fmt"

// StreamFetchError reports a stream that could not be retrieved: a transport
// failure, a non-2xx status or an undecodable body.
type StreamFetchError struct {
	Stream     string
	StatusCode int
	Err        error
}

func (e *StreamFetchError) Error() string {
	return fmt.Sprintf("fetch stream %s: %v", e.Stream, e.Err)
}

func (e *StreamFetchError) Unwrap() error { return e.Err }

// StreamDataMissingError reports a well-formed response that carried no data.
type StreamDataMissingError struct {
	Stream string
	Reason string
}

func (e *StreamDataMissingError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("stream %s: missing stream data (%s)", e.Stream, e.Reason)
	}
	return fmt.Sprintf("stream %s: missing stream data", e.Stream)
}
