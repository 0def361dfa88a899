// Package fetch gathers replay descriptors from several metadata streams.
//
// Streams are requested concurrently with join-all semantics: every stream
// must succeed or the whole fetch fails. The merged list is deduplicated by
// full descriptor equality so a replay reported by two streams is synced once.
package fetch
