package preflight

import (
	"errors"
	"fmt"
	"strings"

	"ttrsync/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// NotExist is set when the check failed only because the path is missing.
	NotExist bool
}

// RunAll executes the checks that apply to syncing into dir. The state
// directory is only checked when it already exists; the lock acquisition
// creates it otherwise.
func RunAll(cfg *config.Config, dir string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Sync directory", dir)}

	if stateDir := strings.TrimSpace(cfg.Paths.StateDir); stateDir != "" && exists(stateDir) {
		results = append(results, CheckDirectoryAccess("State directory", stateDir))
	}

	return results
}

// Err folds failed results into a single error, or returns nil when every
// check passed.
func Err(results []Result) error {
	var errs []error
	for _, r := range results {
		if !r.Passed {
			errs = append(errs, fmt.Errorf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("preflight failed: %w", errors.Join(errs...))
}
