// Package reconcile works out which replays are missing from a directory and
// which replay files there are no longer wanted.
//
// The canonical filename is the only join key between remote descriptors and
// local files, so reconciliation is a set difference over paths. The package
// creates the sync directory when absent but otherwise only reads.
package reconcile
