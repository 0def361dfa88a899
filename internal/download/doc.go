// Package download drives replay downloads against the content service.
//
// Downloads run strictly one after another; the content service does not
// tolerate concurrent load. A 429 answer is the only recoverable failure: it
// engages a run-scoped Backoff that makes every later request wait a fixed
// delay. Any other failure aborts the remaining downloads.
package download
