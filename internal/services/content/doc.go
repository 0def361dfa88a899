// Package content downloads replay payloads from the content service.
//
// The client makes exactly one request per call and never retries; the
// caller owns the rate-limit policy and decides what a *StatusError with
// RateLimited() means for the run.
package content
