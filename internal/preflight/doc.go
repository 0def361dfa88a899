// Package preflight provides readiness checks for the filesystem paths ttrsync
// writes to.
//
// The sync pipeline runs them after the target directory has been created and
// before any replay is downloaded, so a permission problem fails the run before
// the content service is contacted. The "config validate" command runs the
// same checks to report on a configuration without syncing.
package preflight
