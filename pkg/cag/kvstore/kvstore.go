// Package kvstore abstracts the single external store GlobalMemory sits
// behind: read("global_memory")/write("global_memory", doc) in spec
// terms. Two backends are provided: a filesystem JSON document (default,
// single-process) and Redis (shared, multi-process).
package kvstore

import "context"

// Store is a minimal key-value abstraction: get raw bytes by key, put raw
// bytes by key. GlobalMemory marshals/unmarshals its document around it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}
