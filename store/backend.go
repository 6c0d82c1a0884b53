// Package store implements the persistence layer of a cask archive:
// content addresses, compression codecs, the deduplicating chunk store,
// the file index, and the transactional backends they run on.
//
// Two backends exist behind the same interface: a durable bbolt-backed
// one for production and an in-memory one for tests. Both provide
// single-writer/multi-reader transactions with atomic commit, so a file
// record is never visible unless every chunk it references is.
package store

// Backend is durable, transactional storage behind the chunk store and
// file index.
type Backend interface {
	// Begin starts a transaction. At most one writable transaction is
	// in progress at a time; read-only transactions see the last
	// committed state and do not block on an in-progress writer.
	Begin(writable bool) (Tx, error)

	// Close releases the backend. In-progress transactions must be
	// finished first.
	Close() error
}

// Tx is one transaction over the backend's three namespaces: chunks
// (address → compressed bytes), files (name → encoded record), and meta
// (archive configuration). Values are raw; compression and record
// encoding live above this interface.
//
// Every transaction must be finished with exactly one call to Commit
// or Rollback.
type Tx interface {
	// GetChunk returns the stored value for addr, reporting presence
	// separately so absence is not an error at this layer.
	GetChunk(addr Address) (value []byte, ok bool, err error)

	// PutChunk stores value under addr, overwriting silently. The
	// dedup short-circuit lives in ChunkStore, not here.
	PutChunk(addr Address, value []byte) error

	// HasChunk reports whether addr is present.
	HasChunk(addr Address) (bool, error)

	// ChunkCount returns the number of stored chunks, including
	// uncommitted writes of this transaction.
	ChunkCount() (int, error)

	// GetFile returns the encoded record for name.
	GetFile(name string) (value []byte, ok bool, err error)

	// PutFile stores the encoded record for name, replacing any
	// existing one.
	PutFile(name string, value []byte) error

	// FileNames returns every archived name, in unspecified order.
	FileNames() ([]string, error)

	// GetMeta returns the metadata value for key.
	GetMeta(key string) (value []byte, ok bool, err error)

	// PutMeta stores the metadata value for key.
	PutMeta(key string, value []byte) error

	// Commit atomically makes every write of this transaction durable
	// and visible. On a read-only transaction it simply releases it.
	Commit() error

	// Rollback discards every write and releases the transaction.
	Rollback() error
}
