// Package syncer runs one replay synchronization end to end.
//
// A run fetches every requested stream, reconciles the deduplicated replays
// against the target directory, downloads the missing ones one at a time and,
// when asked, removes replay files no stream lists anymore. The first fatal
// error stops the run; files written before it stay on disk and re-running is
// the recovery path.
//
// Runs against the same directory are serialized by a lock file under the
// state directory so two invocations never download into or prune the same
// directory at once.
package syncer
