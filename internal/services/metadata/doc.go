// Package metadata is a thin client for the replay metadata service.
//
// It fetches one named stream per call and converts the JSON payload into
// replay.Record values. Callers are responsible for fan-out and for turning
// records into descriptors; see package fetch.
package metadata
