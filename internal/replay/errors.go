package replay

import "fmt"

// TimestampParseError reports a record whose timestamp is not RFC 3339.
type TimestampParseError struct {
	ReplayID string
	Value    string
	Err      error
}

func (e *TimestampParseError) Error() string {
	return fmt.Sprintf("replay %s: parse timestamp %q: %v", e.ReplayID, e.Value, e.Err)
}

func (e *TimestampParseError) Unwrap() error { return e.Err }

// InvalidRecordError reports a record whose id cannot name a file.
type InvalidRecordError struct {
	ReplayID string
	Reason   string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("replay %q: %s", e.ReplayID, e.Reason)
}
