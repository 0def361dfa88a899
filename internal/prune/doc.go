// Package prune removes replay files that no requested stream lists anymore.
package prune
