// Package nodestore defines the storage contract used by the spatial index that caches geographic
// query results: node and identifier types, the Storage interface implemented by every backend,
// the configuration property bag, shared error codes and logging/retry helpers.
//
// Concrete backends live in sub-packages: memory (in-process map), disk (paged flat file with a
// persisted page index), buffered (LRU write-back cache in front of disk) and the remote redis,
// cassandra and s3 stores. The factory package selects and builds a backend from Properties.
package nodestore

// Durability model
//
// Nothing written to a disk backed storage is durable until Flush (or Dispose) returns. Flush
// rewrites the whole page index file; a crash before that leaves the previous index, and pages
// allocated after it are simply unreferenced. A corrupt index file is not repaired page by page:
// the storage starts over empty unless an erasure coded copy of the index can be reconstructed.
