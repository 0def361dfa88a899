// Package replay models the replays ttrsync keeps on disk.
//
// A Descriptor is built once from each raw metadata Record and is never
// mutated afterwards. Its canonical filename doubles as the sync manifest:
// the timestamp prefix and extension encode enough of the descriptor that a
// later run can tell which replays are already present without any index file.
// Changing the filename format makes every existing file look missing, so the
// layout is fixed.
package replay
